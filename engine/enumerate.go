package engine

// Legal-play enumeration. Given a hand and optionally the shape to beat,
// Enumerate produces every distinct playable combination, using one
// deterministic kicker choice per core so the search stays bounded.
//
// Policy: four-of-a-kind values are never split into smaller sets — they
// appear only as bombs or four-with-two cores. This keeps bombs intact and
// bounds the candidate count without losing any followable core.

// handGroups is the per-value view of a hand used by the enumerator:
// cards grouped by gameplay value, each group sorted for determinism.
type handGroups struct {
	byValue [ValueBigJoker + 1][]Card
	counts  valueCounts
}

func groupHand(hand []Card) handGroups {
	var g handGroups
	sorted := make([]Card, len(hand))
	copy(sorted, hand)
	SortCards(sorted)
	for _, c := range sorted {
		v := c.Value()
		g.byValue[v] = append(g.byValue[v], c)
		g.counts[v]++
	}
	return g
}

// take returns k cards of the given value (the lowest suits first).
func (g *handGroups) take(v uint8, k int) []Card {
	return g.byValue[v][:k]
}

// splittable reports whether value v may contribute up to want cards to a
// non-bomb shape. Four-of-a-kind values are reserved for bombs.
func (g *handGroups) splittable(v uint8, want uint8) bool {
	return g.counts[v] >= want && g.counts[v] < 4
}

// Enumerate returns every legal play from hand against toBeat. A zero
// toBeat (ShapeNone) means the hand is leading and every constructible
// shape qualifies. An empty result means the hand must pass; it is never
// an error.
func Enumerate(hand []Card, toBeat Shape) [][]Card {
	if len(hand) == 0 {
		return nil
	}
	g := groupHand(hand)

	if toBeat.Type == ShapeNone {
		return enumerateLead(&g)
	}

	// Re-classify every candidate as the final gate: kicker selection can
	// in rare hands merge into a different (legal but non-following) shape,
	// e.g. singles kickers extending an airplane run.
	var out [][]Card
	for _, combo := range enumerateFollow(&g, toBeat) {
		if Classify(combo).Beats(toBeat) {
			out = append(out, combo)
		}
	}
	return out
}

func enumerateLead(g *handGroups) [][]Card {
	var out [][]Card
	out = append(out, enumSameRank(g, 1, 0)...)
	out = append(out, enumSameRank(g, 2, 0)...)
	out = append(out, enumSameRank(g, 3, 0)...)
	out = append(out, enumTripleKickers(g, ShapeTripleSingle, 0)...)
	out = append(out, enumTripleKickers(g, ShapeTriplePair, 0)...)
	for length := uint8(5); length <= 12; length++ {
		out = append(out, enumStraights(g, length, 0)...)
	}
	for ranks := uint8(3); ranks <= 10; ranks++ {
		out = append(out, enumPairStraights(g, ranks, 0)...)
	}
	out = append(out, enumAirplanes(g, ShapeAirplane, 0, 0)...)
	out = append(out, enumAirplanes(g, ShapeAirplaneSingles, 0, 0)...)
	out = append(out, enumAirplanes(g, ShapeAirplanePairs, 0, 0)...)
	out = append(out, enumFourTwo(g, ShapeFourTwoSingles, 0)...)
	out = append(out, enumFourTwo(g, ShapeFourTwoPairs, 0)...)
	out = append(out, enumBombs(g, 0)...)
	out = append(out, enumRocket(g)...)
	return out
}

func enumerateFollow(g *handGroups, toBeat Shape) [][]Card {
	var out [][]Card
	switch toBeat.Type {
	case ShapeSingle:
		out = enumSameRank(g, 1, toBeat.Primary)
	case ShapePair:
		out = enumSameRank(g, 2, toBeat.Primary)
	case ShapeTriple:
		out = enumSameRank(g, 3, toBeat.Primary)
	case ShapeTripleSingle:
		out = enumTripleKickers(g, ShapeTripleSingle, toBeat.Primary)
	case ShapeTriplePair:
		out = enumTripleKickers(g, ShapeTriplePair, toBeat.Primary)
	case ShapeStraight:
		out = enumStraights(g, toBeat.NumCards, toBeat.Primary)
	case ShapePairStraight:
		out = enumPairStraights(g, toBeat.NumCards/2, toBeat.Primary)
	case ShapeAirplane, ShapeAirplaneSingles, ShapeAirplanePairs:
		k := toBeat.NumCards / airplaneCardsPerTriple(toBeat.Type)
		out = enumAirplanes(g, toBeat.Type, k, toBeat.Primary)
	case ShapeFourTwoSingles, ShapeFourTwoPairs:
		out = enumFourTwo(g, toBeat.Type, toBeat.Primary)
	case ShapeBomb:
		// Only higher bombs; handled below.
	case ShapeRocket:
		return nil
	}

	// Bombs beat everything but higher bombs and the rocket.
	minBomb := uint8(0)
	if toBeat.Type == ShapeBomb {
		minBomb = toBeat.Primary
	}
	out = append(out, enumBombs(g, minBomb)...)
	out = append(out, enumRocket(g)...)
	return out
}

// enumSameRank yields singles, pairs, or triples with value above min.
func enumSameRank(g *handGroups, size uint8, min uint8) [][]Card {
	var out [][]Card
	for v := min + 1; v <= ValueBigJoker; v++ {
		if g.splittable(v, size) {
			out = append(out, g.take(v, int(size)))
		}
	}
	return out
}

func enumBombs(g *handGroups, min uint8) [][]Card {
	var out [][]Card
	for v := min + 1; v <= ValueTwo; v++ {
		if g.counts[v] == 4 {
			out = append(out, g.take(v, 4))
		}
	}
	return out
}

func enumRocket(g *handGroups) [][]Card {
	if g.counts[ValueSmallJoker] == 1 && g.counts[ValueBigJoker] == 1 {
		return [][]Card{{g.byValue[ValueSmallJoker][0], g.byValue[ValueBigJoker][0]}}
	}
	return nil
}

// kickers picks want kicker units (singles or pairs) deterministically:
// lowest values first, skipping the excluded core values. Returns nil when
// the hand cannot supply them.
func kickers(g *handGroups, want int, pairSize uint8, excluded func(uint8) bool) []Card {
	var picked []Card
	for v := uint8(ValueThree); v <= ValueBigJoker && want > 0; v++ {
		if excluded(v) || !g.splittable(v, pairSize) {
			continue
		}
		if pairSize == 1 {
			// Singles may take up to two cards from one value; three would
			// fold into the core as an extra triple.
			n := int(g.counts[v])
			if n > 2 {
				n = 2
			}
			if n > want {
				n = want
			}
			picked = append(picked, g.take(v, n)...)
			want -= n
		} else {
			picked = append(picked, g.take(v, 2)...)
			want--
		}
	}
	if want > 0 {
		return nil
	}
	return picked
}

func enumTripleKickers(g *handGroups, shape ShapeType, min uint8) [][]Card {
	kickSize := uint8(1)
	if shape == ShapeTriplePair {
		kickSize = 2
	}
	var out [][]Card
	for v := min + 1; v <= ValueTwo; v++ {
		if !g.splittable(v, 3) {
			continue
		}
		core := v
		kick := kickers(g, 1, kickSize, func(x uint8) bool { return x == core })
		if kick == nil {
			continue
		}
		combo := append(append([]Card{}, g.take(v, 3)...), kick...)
		out = append(out, combo)
	}
	return out
}

// enumStraights yields every straight window of exactly length cards with
// primary value above min.
func enumStraights(g *handGroups, length uint8, min uint8) [][]Card {
	var out [][]Card
	if length < 5 || length > 12 {
		return nil
	}
	for lo := uint8(ValueThree); lo+length-1 <= MaxStraightValue; lo++ {
		primary := lo + length - 1
		if primary <= min {
			continue
		}
		ok := true
		for v := lo; v <= primary; v++ {
			if !g.splittable(v, 1) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		run := make([]Card, 0, length)
		for v := lo; v <= primary; v++ {
			run = append(run, g.byValue[v][0])
		}
		out = append(out, run)
	}
	return out
}

func enumPairStraights(g *handGroups, ranks uint8, min uint8) [][]Card {
	var out [][]Card
	if ranks < 3 || ranks > 10 {
		return nil
	}
	for lo := uint8(ValueThree); lo+ranks-1 <= MaxStraightValue; lo++ {
		primary := lo + ranks - 1
		if primary <= min {
			continue
		}
		ok := true
		for v := lo; v <= primary; v++ {
			if !g.splittable(v, 2) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		run := make([]Card, 0, ranks*2)
		for v := lo; v <= primary; v++ {
			run = append(run, g.take(v, 2)...)
		}
		out = append(out, run)
	}
	return out
}

// enumAirplanes yields airplane-family plays. wantTriples == 0 means any
// run length ≥2 (leading); otherwise the run length must match the shape
// being followed.
func enumAirplanes(g *handGroups, shape ShapeType, wantTriples uint8, min uint8) [][]Card {
	var out [][]Card
	kickSize := uint8(0)
	switch shape {
	case ShapeAirplaneSingles:
		kickSize = 1
	case ShapeAirplanePairs:
		kickSize = 2
	}
	for lo := uint8(ValueThree); lo+1 <= MaxStraightValue; lo++ {
		maxRun := uint8(0)
		for v := lo; v <= MaxStraightValue && g.splittable(v, 3); v++ {
			maxRun++
		}
		for k := uint8(2); k <= maxRun; k++ {
			if wantTriples != 0 && k != wantTriples {
				continue
			}
			primary := lo + k - 1
			if primary <= min {
				continue
			}
			combo := make([]Card, 0, int(k)*3)
			for v := lo; v <= primary; v++ {
				combo = append(combo, g.take(v, 3)...)
			}
			if kickSize > 0 {
				hi := primary
				kick := kickers(g, int(k), kickSize, func(x uint8) bool { return x >= lo && x <= hi })
				if kick == nil {
					continue
				}
				combo = append(combo, kick...)
			}
			out = append(out, combo)
		}
	}
	return out
}

func enumFourTwo(g *handGroups, shape ShapeType, min uint8) [][]Card {
	kickSize := uint8(1)
	if shape == ShapeFourTwoPairs {
		kickSize = 2
	}
	var out [][]Card
	for v := min + 1; v <= ValueTwo; v++ {
		if g.counts[v] != 4 {
			continue
		}
		core := v
		kick := kickers(g, 2, kickSize, func(x uint8) bool { return x == core })
		if kick == nil {
			continue
		}
		combo := append(append([]Card{}, g.take(v, 4)...), kick...)
		out = append(out, combo)
	}
	return out
}

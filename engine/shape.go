package engine

// ShapeType enumerates the canonical Dou Dizhu hand shapes.
type ShapeType uint8

const (
	ShapeNone ShapeType = iota // not a legal shape
	ShapeSingle
	ShapePair
	ShapeTriple
	ShapeTripleSingle // triple with one single kicker
	ShapeTriplePair   // triple with one pair kicker
	ShapeStraight     // ≥5 consecutive singles, 3..A
	ShapePairStraight // ≥3 consecutive pairs, 3..A
	ShapeAirplane     // ≥2 consecutive triples, no kickers
	ShapeAirplaneSingles
	ShapeAirplanePairs
	ShapeFourTwoSingles // quad plus two singles
	ShapeFourTwoPairs   // quad plus two pairs
	ShapeBomb           // four of a kind
	ShapeRocket         // both jokers
)

var shapeNames = [...]string{
	"none", "single", "pair", "triple", "triple_single", "triple_pair",
	"straight", "pair_straight", "airplane", "airplane_singles",
	"airplane_pairs", "four_two_singles", "four_two_pairs", "bomb", "rocket",
}

func (t ShapeType) String() string {
	if int(t) < len(shapeNames) {
		return shapeNames[t]
	}
	return "unknown"
}

// Shape is the classification result for a card set. It is derived, never
// stored: recompute from the cards whenever needed.
//
// Primary is the comparison key (the shape's core value); NumCards makes
// length part of the comparison key for runs, so straights of different
// lengths never compare.
type Shape struct {
	Type     ShapeType
	Primary  uint8
	NumCards uint8
}

// valueCounts indexes card multiplicity by gameplay value (3..17).
type valueCounts [ValueBigJoker + 1]uint8

func countValues(cards []Card) valueCounts {
	var counts valueCounts
	for _, c := range cards {
		counts[c.Value()]++
	}
	return counts
}

// Classify decides which canonical shape the card set forms, or ShapeNone.
// Matchers run in priority order; the shapes are mutually exclusive by
// construction, so the first match wins.
func Classify(cards []Card) Shape {
	n := len(cards)
	if n == 0 || n > MaxHandSize {
		return Shape{}
	}
	counts := countValues(cards)

	type matcher func(counts valueCounts, n int) Shape
	for _, match := range [...]matcher{
		matchRocket,
		matchBomb,
		matchSameRank,
		matchTripleKicker,
		matchStraight,
		matchPairStraight,
		matchAirplane,
		matchFourTwo,
	} {
		if s := match(counts, n); s.Type != ShapeNone {
			return s
		}
	}
	return Shape{}
}

// Beats reports whether s outranks other. Rocket beats everything; a bomb
// beats any non-bomb; otherwise shapes compare only when type and card
// count both match.
func (s Shape) Beats(other Shape) bool {
	if s.Type == ShapeNone {
		return false
	}
	if s.Type == ShapeRocket {
		return other.Type != ShapeRocket
	}
	if other.Type == ShapeRocket {
		return false
	}
	if s.Type == ShapeBomb {
		if other.Type == ShapeBomb {
			return s.Primary > other.Primary
		}
		return true
	}
	if other.Type == ShapeBomb {
		return false
	}
	return s.Type == other.Type && s.NumCards == other.NumCards && s.Primary > other.Primary
}

// IsBombOrRocket reports whether playing the shape doubles the table
// multiplier.
func (s Shape) IsBombOrRocket() bool {
	return s.Type == ShapeBomb || s.Type == ShapeRocket
}

// ---------------------------------------------------------------------------
// Matchers. Each inspects the value-count table independently and returns
// ShapeNone when the cards are not its shape.
// ---------------------------------------------------------------------------

func matchRocket(counts valueCounts, n int) Shape {
	if n == 2 && counts[ValueSmallJoker] == 1 && counts[ValueBigJoker] == 1 {
		return Shape{Type: ShapeRocket, Primary: ValueBigJoker, NumCards: 2}
	}
	return Shape{}
}

func matchBomb(counts valueCounts, n int) Shape {
	if n != 4 {
		return Shape{}
	}
	for v := uint8(ValueThree); v <= ValueTwo; v++ {
		if counts[v] == 4 {
			return Shape{Type: ShapeBomb, Primary: v, NumCards: 4}
		}
	}
	return Shape{}
}

// matchSameRank covers single, pair, and triple. Two jokers never reach
// here as a pair: their values differ, and rocket matched first anyway.
func matchSameRank(counts valueCounts, n int) Shape {
	if n < 1 || n > 3 {
		return Shape{}
	}
	types := [4]ShapeType{ShapeNone, ShapeSingle, ShapePair, ShapeTriple}
	for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
		if int(counts[v]) == n {
			return Shape{Type: types[n], Primary: v, NumCards: uint8(n)}
		}
	}
	return Shape{}
}

func matchTripleKicker(counts valueCounts, n int) Shape {
	if n != 4 && n != 5 {
		return Shape{}
	}
	var triple, pair uint8
	for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
		switch counts[v] {
		case 0:
		case 1:
			if n != 4 {
				return Shape{}
			}
		case 2:
			if n != 5 {
				return Shape{}
			}
			pair = v
		case 3:
			if triple != 0 {
				return Shape{}
			}
			triple = v
		default:
			return Shape{}
		}
	}
	if triple == 0 {
		return Shape{}
	}
	if n == 4 {
		return Shape{Type: ShapeTripleSingle, Primary: triple, NumCards: 4}
	}
	if pair == 0 {
		return Shape{}
	}
	return Shape{Type: ShapeTriplePair, Primary: triple, NumCards: 5}
}

// runLength returns the length of the consecutive run of values starting
// at lo where every value has at least want copies, confined to 3..A.
func runLength(counts valueCounts, lo, want uint8) uint8 {
	var length uint8
	for v := lo; v <= MaxStraightValue && counts[v] >= want; v++ {
		length++
	}
	return length
}

func matchStraight(counts valueCounts, n int) Shape {
	if n < 5 {
		return Shape{}
	}
	var lo uint8
	for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
		if counts[v] == 0 {
			continue
		}
		if counts[v] != 1 || v > MaxStraightValue {
			return Shape{}
		}
		if lo == 0 {
			lo = v
		}
	}
	if runLength(counts, lo, 1) != uint8(n) {
		return Shape{}
	}
	return Shape{Type: ShapeStraight, Primary: lo + uint8(n) - 1, NumCards: uint8(n)}
}

func matchPairStraight(counts valueCounts, n int) Shape {
	if n < 6 || n%2 != 0 {
		return Shape{}
	}
	var lo uint8
	for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
		if counts[v] == 0 {
			continue
		}
		if counts[v] != 2 || v > MaxStraightValue {
			return Shape{}
		}
		if lo == 0 {
			lo = v
		}
	}
	ranks := uint8(n / 2)
	if runLength(counts, lo, 2) != ranks {
		return Shape{}
	}
	return Shape{Type: ShapePairStraight, Primary: lo + ranks - 1, NumCards: uint8(n)}
}

// matchAirplane covers the airplane family: k ≥ 2 consecutive triples with
// no kickers, one single per triple, or one pair per triple (never mixed).
// When several runs fit, the longest and then highest one wins.
func matchAirplane(counts valueCounts, n int) Shape {
	if n < 6 {
		return Shape{}
	}
	best := Shape{}
	for lo := uint8(ValueThree); lo <= MaxStraightValue; lo++ {
		maxRun := runLength(counts, lo, 3)
		for k := maxRun; k >= 2; k-- {
			s := tryAirplaneRun(counts, n, lo, k)
			if s.Type == ShapeNone {
				continue
			}
			if best.Type == ShapeNone || k > (best.NumCards/airplaneCardsPerTriple(best.Type)) ||
				(k == best.NumCards/airplaneCardsPerTriple(best.Type) && s.Primary > best.Primary) {
				best = s
			}
		}
	}
	return best
}

func airplaneCardsPerTriple(t ShapeType) uint8 {
	switch t {
	case ShapeAirplaneSingles:
		return 4
	case ShapeAirplanePairs:
		return 5
	default:
		return 3
	}
}

// tryAirplaneRun checks whether the run [lo, lo+k) of triples plus the
// leftover cards forms one of the three airplane variants.
func tryAirplaneRun(counts valueCounts, n int, lo, k uint8) Shape {
	primary := lo + k - 1
	core := int(k) * 3
	extra := n - core
	switch extra {
	case 0:
		return Shape{Type: ShapeAirplane, Primary: primary, NumCards: uint8(n)}
	case int(k):
		// One single kicker per triple; any leftover cards qualify.
		return Shape{Type: ShapeAirplaneSingles, Primary: primary, NumCards: uint8(n)}
	case int(k) * 2:
		// One pair kicker per triple; every leftover value must split
		// evenly into pairs.
		for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
			left := counts[v]
			if v >= lo && v <= primary {
				left -= 3
			}
			if left%2 != 0 {
				return Shape{}
			}
		}
		return Shape{Type: ShapeAirplanePairs, Primary: primary, NumCards: uint8(n)}
	default:
		return Shape{}
	}
}

func matchFourTwo(counts valueCounts, n int) Shape {
	if n != 6 && n != 8 {
		return Shape{}
	}
	var quad uint8
	for v := uint8(ValueThree); v <= ValueTwo; v++ {
		if counts[v] == 4 {
			quad = v
			break
		}
	}
	if quad == 0 {
		return Shape{}
	}
	if n == 6 {
		// Quad plus any two leftover cards.
		return Shape{Type: ShapeFourTwoSingles, Primary: quad, NumCards: 6}
	}
	// Quad plus exactly two distinct pairs.
	pairs := 0
	for v := uint8(ValueThree); v <= ValueBigJoker; v++ {
		if v == quad {
			continue
		}
		switch counts[v] {
		case 0:
		case 2:
			pairs++
		default:
			return Shape{}
		}
	}
	if pairs != 2 {
		return Shape{}
	}
	return Shape{Type: ShapeFourTwoPairs, Primary: quad, NumCards: 8}
}

package engine

import "testing"

// TestCardValues verifies the packed encoding round-trips suit/rank and
// that gameplay values span exactly 3..17.
func TestCardValues(t *testing.T) {
	c := NewCard(SuitSpades, RankThree)
	if c.Suit() != SuitSpades || c.Rank() != RankThree {
		t.Fatalf("NewCard round-trip failed: suit=%d rank=%d", c.Suit(), c.Rank())
	}
	if c.Value() != ValueThree {
		t.Errorf("Three value = %d, want %d", c.Value(), ValueThree)
	}
	if v := NewCard(SuitHearts, RankTwo).Value(); v != ValueTwo {
		t.Errorf("Two value = %d, want %d", v, ValueTwo)
	}
	if v := NewCard(SuitHearts, RankAce).Value(); v != 14 {
		t.Errorf("Ace value = %d, want 14", v)
	}
	if v := NewCard(SuitSmallJoker, RankJoker).Value(); v != ValueSmallJoker {
		t.Errorf("small joker value = %d, want %d", v, ValueSmallJoker)
	}
	if v := NewCard(SuitBigJoker, RankJoker).Value(); v != ValueBigJoker {
		t.Errorf("big joker value = %d, want %d", v, ValueBigJoker)
	}
}

// TestDeckUniverse verifies NewTable builds exactly the 54 distinct cards.
func TestDeckUniverse(t *testing.T) {
	tbl := NewTable(42)
	if tbl.DeckLen != DeckSize {
		t.Fatalf("DeckLen = %d, want %d", tbl.DeckLen, DeckSize)
	}
	seen := make(map[Card]bool)
	jokers := 0
	for i := 0; i < DeckSize; i++ {
		c := tbl.Deck[i]
		if seen[c] {
			t.Errorf("duplicate card %v at index %d", c, i)
		}
		seen[c] = true
		if c.IsJoker() {
			jokers++
		}
	}
	if len(seen) != DeckSize {
		t.Errorf("got %d unique cards, want %d", len(seen), DeckSize)
	}
	if jokers != 2 {
		t.Errorf("jokers = %d, want 2", jokers)
	}
}

// TestDealCounts verifies the 17/17/17+3 split with no card lost or
// duplicated (full-deck conservation).
func TestDealCounts(t *testing.T) {
	tbl := NewTable(7)
	tbl.Deal()

	seen := make(map[Card]bool)
	for s := 0; s < NumSeats; s++ {
		if tbl.Players[s].HandLen != DealtPerSeat {
			t.Fatalf("seat %d HandLen = %d, want %d", s, tbl.Players[s].HandLen, DealtPerSeat)
		}
		for _, c := range tbl.Players[s].Cards() {
			if seen[c] {
				t.Errorf("card %v dealt twice", c)
			}
			seen[c] = true
		}
	}
	for _, c := range tbl.Reserved {
		if seen[c] {
			t.Errorf("reserved card %v also dealt", c)
		}
		seen[c] = true
	}
	if len(seen) != DeckSize {
		t.Errorf("dealt %d unique cards, want %d", len(seen), DeckSize)
	}
	if got := tbl.TotalCards(); got != DeckSize {
		t.Errorf("TotalCards() = %d, want %d", got, DeckSize)
	}
}

// TestDealDeterministic verifies identical seeds produce identical deals.
func TestDealDeterministic(t *testing.T) {
	a := NewTable(99)
	a.Deal()
	b := NewTable(99)
	b.Deal()

	if a.FirstBidder != b.FirstBidder {
		t.Errorf("FirstBidder: %d vs %d", a.FirstBidder, b.FirstBidder)
	}
	for s := 0; s < NumSeats; s++ {
		ca, cb := a.Players[s].Cards(), b.Players[s].Cards()
		for i := range ca {
			if ca[i] != cb[i] {
				t.Fatalf("seat %d card %d: %v vs %v", s, i, ca[i], cb[i])
			}
		}
	}
}

// TestDealDifferentSeeds verifies different seeds shuffle differently.
func TestDealDifferentSeeds(t *testing.T) {
	a := NewTable(1)
	a.Deal()
	b := NewTable(2)
	b.Deal()

	same := true
	for s := 0; s < NumSeats && same; s++ {
		ca, cb := a.Players[s].Cards(), b.Players[s].Cards()
		for i := range ca {
			if ca[i] != cb[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("seeds 1 and 2 produced identical deals (RNG not working)")
	}
}

// TestSeatRelative verifies the single seat translation function.
func TestSeatRelative(t *testing.T) {
	cases := []struct {
		abs, viewer Seat
		want        uint8
	}{
		{0, 0, 0}, {1, 0, 1}, {2, 0, 2},
		{0, 1, 2}, {1, 1, 0}, {2, 1, 1},
		{0, 2, 1}, {1, 2, 2}, {2, 2, 0},
	}
	for _, c := range cases {
		if got := c.abs.Relative(c.viewer); got != c.want {
			t.Errorf("Seat(%d).Relative(%d) = %d, want %d", c.abs, c.viewer, got, c.want)
		}
	}
}

// TestSortCards verifies value ordering with suit as tiebreak only.
func TestSortCards(t *testing.T) {
	cards := []Card{
		NewCard(SuitBigJoker, RankJoker),
		NewCard(SuitHearts, RankThree),
		NewCard(SuitSpades, RankTwo),
		NewCard(SuitSpades, RankThree),
	}
	SortCards(cards)
	wantValues := []uint8{3, 3, 15, 17}
	for i, c := range cards {
		if c.Value() != wantValues[i] {
			t.Fatalf("sorted[%d] = %v (value %d), want value %d", i, c, c.Value(), wantValues[i])
		}
	}
	if cards[0].Suit() != SuitSpades {
		t.Errorf("equal values should tiebreak by suit, got %v first", cards[0])
	}
}

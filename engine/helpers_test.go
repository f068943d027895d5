package engine

import "testing"

// mk builds a card set from gameplay values (3..17), assigning suits
// round-robin per value so repeated values become distinct cards. Values
// 16 and 17 are the jokers.
func mk(t *testing.T, values ...uint8) []Card {
	t.Helper()
	var perValue [ValueBigJoker + 1]uint8
	out := make([]Card, 0, len(values))
	for _, v := range values {
		switch {
		case v == ValueSmallJoker:
			out = append(out, NewCard(SuitSmallJoker, RankJoker))
		case v == ValueBigJoker:
			out = append(out, NewCard(SuitBigJoker, RankJoker))
		case v >= ValueThree && v <= ValueTwo:
			suit := perValue[v]
			if suit > SuitDiamonds {
				t.Fatalf("more than four cards of value %d requested", v)
			}
			perValue[v]++
			out = append(out, NewCard(suit, v-3))
		default:
			t.Fatalf("bad card value %d", v)
		}
	}
	return out
}

// wantShape asserts Classify(cards) result fields.
func wantShape(t *testing.T, cards []Card, typ ShapeType, primary uint8) {
	t.Helper()
	s := Classify(cards)
	if s.Type != typ {
		t.Fatalf("Classify(%v).Type = %s, want %s", cards, s.Type, typ)
	}
	if s.Primary != primary {
		t.Fatalf("Classify(%v).Primary = %d, want %d", cards, s.Primary, primary)
	}
	if int(s.NumCards) != len(cards) {
		t.Fatalf("Classify(%v).NumCards = %d, want %d", cards, s.NumCards, len(cards))
	}
}

// wantNone asserts the cards form no legal shape.
func wantNone(t *testing.T, cards []Card) {
	t.Helper()
	if s := Classify(cards); s.Type != ShapeNone {
		t.Fatalf("Classify(%v) = %s, want none", cards, s.Type)
	}
}

// Package engine implements the Dou Dizhu (Fight the Landlord) rules.
//
// This package is a self-contained, zero-dependency game engine: card and
// deck modeling, hand-shape classification, exhaustive legal-move
// enumeration, and the bidding/playing state machine. The service layer
// (internal/game) adapts it for real-time multiplayer play.
package engine

// Suit constants — packed into upper 4 bits of Card.
const (
	SuitSpades   uint8 = 0
	SuitHearts   uint8 = 1
	SuitClubs    uint8 = 2
	SuitDiamonds uint8 = 3
	SuitSmallJoker uint8 = 4
	SuitBigJoker   uint8 = 5
)

// Rank constants — packed into lower 4 bits of Card.
// Ranks are ordered by Dou Dizhu strength: Three is the weakest natural
// card and Two the strongest; jokers sit above everything.
const (
	RankThree uint8 = 0
	RankFour  uint8 = 1
	RankFive  uint8 = 2
	RankSix   uint8 = 3
	RankSeven uint8 = 4
	RankEight uint8 = 5
	RankNine  uint8 = 6
	RankTen   uint8 = 7
	RankJack  uint8 = 8
	RankQueen uint8 = 9
	RankKing  uint8 = 10
	RankAce   uint8 = 11
	RankTwo   uint8 = 12
	RankJoker uint8 = 13
)

// Gameplay comparison values. Cards compare by value only; suit is a
// display tiebreak and never affects legality.
const (
	ValueThree      = 3
	ValueTwo        = 15
	ValueSmallJoker = 16
	ValueBigJoker   = 17

	// MaxStraightValue is the highest value usable inside a straight,
	// pair straight, or airplane core (the Ace). Twos and jokers are
	// excluded from runs.
	MaxStraightValue = 14
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
// The packed byte doubles as the card's wire identifier.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Value returns the gameplay comparison value:
//   - Three–Ace (ranks 0–11) → 3–14
//   - Two (rank 12) → 15
//   - small joker → 16, big joker → 17
func (c Card) Value() uint8 {
	r := c.Rank()
	if r == RankJoker {
		if c.Suit() == SuitBigJoker {
			return ValueBigJoker
		}
		return ValueSmallJoker
	}
	return r + 3
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool { return c.Rank() == RankJoker }

var rankNames = [14]string{
	"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2", "Joker",
}

var suitNames = [6]string{"♠", "♥", "♣", "♦", "j", "J"}

// String renders the card for logs and test failures, e.g. "♠K" or "J" for
// the big joker.
func (c Card) String() string {
	if c == EmptyCard {
		return "--"
	}
	if c.IsJoker() {
		if c.Suit() == SuitBigJoker {
			return "BJ"
		}
		return "SJ"
	}
	return suitNames[c.Suit()] + rankNames[c.Rank()]
}

const (
	// NumSeats is the fixed number of seats at a Dou Dizhu table.
	NumSeats = 3
	// DeckSize is the full 54-card universe: 13 ranks × 4 suits + 2 jokers.
	DeckSize = 54
	// DealtPerSeat cards go to each seat; ReservedCount stay face down for
	// the landlord.
	DealtPerSeat  = 17
	ReservedCount = 3
	// MaxHandSize is the landlord's hand after claiming the reserved cards.
	MaxHandSize = DealtPerSeat + ReservedCount
)

// Seat is an absolute table seat index (0..2). All engine and protocol
// state uses absolute seats; viewer-relative translation happens in
// exactly one place, Relative.
type Seat uint8

// Next returns the seat to the right in turn order.
func (s Seat) Next() Seat { return (s + 1) % NumSeats }

// Relative translates an absolute seat into the viewer's frame:
// 0 = the viewer, 1 = left opponent, 2 = right opponent.
func (s Seat) Relative(viewer Seat) uint8 {
	return uint8((s - viewer + NumSeats) % NumSeats)
}

// NoSeat marks an unassigned seat slot (no landlord yet, no last play).
const NoSeat int8 = -1

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (t *TableState) nextRand() uint64 {
	x := t.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	t.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (t *TableState) randN(n uint64) uint64 {
	return t.nextRand() % n
}

// buildDeck fills the table's deck with the 54-card universe in canonical
// order. Deal shuffles it.
func (t *TableState) buildDeck() {
	idx := 0
	for suit := uint8(0); suit < 4; suit++ {
		for rank := RankThree; rank <= RankTwo; rank++ {
			t.Deck[idx] = NewCard(suit, rank)
			idx++
		}
	}
	t.Deck[52] = NewCard(SuitSmallJoker, RankJoker)
	t.Deck[53] = NewCard(SuitBigJoker, RankJoker)
	t.DeckLen = DeckSize
}

// SortCards orders cards ascending by value, suit as a stable tiebreak.
// Used for display and deterministic enumeration; legality never depends
// on suit.
func SortCards(cards []Card) {
	// Insertion sort: hands are at most 20 cards.
	for i := 1; i < len(cards); i++ {
		c := cards[i]
		j := i - 1
		for j >= 0 && cardLess(c, cards[j]) {
			cards[j+1] = cards[j]
			j--
		}
		cards[j+1] = c
	}
}

func cardLess(a, b Card) bool {
	if a.Value() != b.Value() {
		return a.Value() < b.Value()
	}
	return a.Suit() < b.Suit()
}

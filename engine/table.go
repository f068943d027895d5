package engine

import "fmt"

// Phase is the lifecycle stage of a deal.
type Phase uint8

const (
	PhaseBidding Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseBidding:
		return "bidding"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// MaxBid is the bidding cap; reaching it finalizes bidding immediately.
const MaxBid = 3

// PlayerState holds one seat's hand.
type PlayerState struct {
	Hand    [MaxHandSize]Card
	HandLen uint8
}

// Cards returns the hand as a sorted slice copy.
func (p *PlayerState) Cards() []Card {
	out := make([]Card, p.HandLen)
	copy(out, p.Hand[:p.HandLen])
	SortCards(out)
	return out
}

// PlayRecord is one completed play: who played what, classified.
type PlayRecord struct {
	Seat     Seat
	Cards    [MaxHandSize]Card
	NumCards uint8
	Shape    Shape
}

// CardSlice returns the played cards as a slice copy.
func (r *PlayRecord) CardSlice() []Card {
	out := make([]Card, r.NumCards)
	copy(out, r.Cards[:r.NumCards])
	return out
}

// TableState is the complete, self-contained state of one deal. It is a
// flat value type: plain struct copies give
// snapshots, and every transition validates fully before mutating, so a
// rejected action leaves the state untouched.
type TableState struct {
	Phase   Phase
	Players [NumSeats]PlayerState

	Deck    [DeckSize]Card
	DeckLen uint8

	Reserved        [ReservedCount]Card
	ReservedClaimed bool

	Played    [DeckSize]Card
	PlayedLen uint8

	Landlord int8 // NoSeat until bidding finalizes
	Current  Seat

	LastPlay          PlayRecord // Shape.Type == ShapeNone on a fresh trick
	ConsecutivePasses uint8

	// Multiplier doubles on every bomb or rocket; it never resets within
	// a deal.
	Multiplier uint32

	// Bidding sub-state.
	FirstBidder   Seat
	HighestBid    uint8
	HighestBidder int8
	BidActions    uint8
	Redeals       uint8

	// Result.
	Winner    int8
	Aborted   bool
	AbortSeat int8

	RNG uint64
}

// BidResult reports what an accepted bid action caused.
type BidResult struct {
	Raised    bool // the seat bid (raised by one) rather than declined
	Finalized bool // bidding ended; Landlord is assigned
	Redealt   bool // nobody bid; the table reshuffled and bidding restarted
}

// NewTable initializes a table with the given seed. Call Deal to shuffle
// and enter the bidding phase.
func NewTable(seed uint64) TableState {
	var t TableState
	t.RNG = seed
	if t.RNG == 0 {
		t.RNG = 1 // xorshift can't start at 0
	}
	t.Landlord = NoSeat
	t.HighestBidder = NoSeat
	t.Winner = NoSeat
	t.AbortSeat = NoSeat
	t.buildDeck()
	return t
}

// Deal shuffles and distributes 17 cards to each seat, leaving 3 reserved
// for the landlord, then opens bidding with a random first bidder.
func (t *TableState) Deal() {
	// Fisher-Yates shuffle.
	for i := int(t.DeckLen) - 1; i > 0; i-- {
		j := int(t.randN(uint64(i + 1)))
		t.Deck[i], t.Deck[j] = t.Deck[j], t.Deck[i]
	}

	for s := 0; s < NumSeats; s++ {
		t.Players[s] = PlayerState{}
		for c := 0; c < DealtPerSeat; c++ {
			t.DeckLen--
			t.Players[s].Hand[c] = t.Deck[t.DeckLen]
			t.Players[s].HandLen++
		}
	}
	for r := 0; r < ReservedCount; r++ {
		t.DeckLen--
		t.Reserved[r] = t.Deck[t.DeckLen]
	}

	t.Phase = PhaseBidding
	t.ReservedClaimed = false
	t.PlayedLen = 0
	t.Landlord = NoSeat
	t.HighestBid = 0
	t.HighestBidder = NoSeat
	t.BidActions = 0
	t.Multiplier = 1
	t.ConsecutivePasses = 0
	t.LastPlay = PlayRecord{}
	t.Winner = NoSeat
	t.Aborted = false
	t.AbortSeat = NoSeat

	t.FirstBidder = Seat(t.randN(NumSeats))
	t.Current = t.FirstBidder
}

// ApplyBid processes one bidding action for seat: want=true raises the
// highest bid by exactly one (capped at MaxBid), want=false declines.
// Bidding finalizes when the bid reaches MaxBid or after three actions;
// if nobody bid, the table redeals and bidding restarts.
func (t *TableState) ApplyBid(seat Seat, want bool) (BidResult, error) {
	if t.Phase != PhaseBidding {
		return BidResult{}, fmt.Errorf("%w: phase is %s", ErrWrongPhase, t.Phase)
	}
	if seat != t.Current {
		return BidResult{}, fmt.Errorf("%w: seat %d acted on seat %d's turn", ErrNotYourTurn, seat, t.Current)
	}

	res := BidResult{Raised: want}
	if want {
		t.HighestBid++
		t.HighestBidder = int8(seat)
	}
	t.BidActions++

	if t.HighestBid >= MaxBid || t.BidActions >= NumSeats {
		if t.HighestBidder == NoSeat {
			// Nobody wanted the deal: reshuffle rather than play without
			// a landlord.
			t.Redeals++
			t.buildDeck()
			t.Deal()
			res.Redealt = true
			return res, nil
		}
		t.finalizeBidding()
		res.Finalized = true
		return res, nil
	}

	t.Current = t.Current.Next()
	return res, nil
}

// finalizeBidding assigns the landlord, hands over the reserved cards, and
// enters the playing phase with the landlord leading.
func (t *TableState) finalizeBidding() {
	landlord := Seat(t.HighestBidder)
	t.Landlord = int8(landlord)
	p := &t.Players[landlord]
	for _, c := range t.Reserved {
		p.Hand[p.HandLen] = c
		p.HandLen++
	}
	t.ReservedClaimed = true
	t.Phase = PhasePlaying
	t.Current = landlord
	t.LastPlay = PlayRecord{}
	t.ConsecutivePasses = 0
}

// MustBeat returns the shape the current seat has to outrank, or a zero
// Shape when the seat is leading a fresh trick.
func (t *TableState) MustBeat() Shape {
	if t.LastPlay.Shape.Type == ShapeNone || t.LastPlay.Seat == t.Current {
		return Shape{}
	}
	return t.LastPlay.Shape
}

// ApplyPlay validates and applies a play for seat. On any rejection the
// state is unchanged and the error wraps one of the sentinel taxonomy
// errors.
func (t *TableState) ApplyPlay(seat Seat, cards []Card) error {
	if t.Phase != PhasePlaying {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, t.Phase)
	}
	if seat != t.Current {
		return fmt.Errorf("%w: seat %d acted on seat %d's turn", ErrNotYourTurn, seat, t.Current)
	}
	if len(cards) == 0 {
		return fmt.Errorf("%w: empty play", ErrIllegalShape)
	}
	if !t.holdsAll(seat, cards) {
		return fmt.Errorf("%w: seat %d", ErrCardsNotHeld, seat)
	}
	shape := Classify(cards)
	if shape.Type == ShapeNone {
		return fmt.Errorf("%w: %d cards", ErrIllegalShape, len(cards))
	}
	if mustBeat := t.MustBeat(); mustBeat.Type != ShapeNone && !shape.Beats(mustBeat) {
		return fmt.Errorf("%w: %s(%d) vs %s(%d)", ErrCannotBeat,
			shape.Type, shape.Primary, mustBeat.Type, mustBeat.Primary)
	}

	t.removeCards(seat, cards)
	for _, c := range cards {
		t.Played[t.PlayedLen] = c
		t.PlayedLen++
	}

	t.LastPlay = PlayRecord{Seat: seat, NumCards: uint8(len(cards)), Shape: shape}
	copy(t.LastPlay.Cards[:], cards)
	t.ConsecutivePasses = 0
	if shape.IsBombOrRocket() {
		t.Multiplier *= 2
	}

	if t.Players[seat].HandLen == 0 {
		t.Phase = PhaseFinished
		t.Winner = int8(seat)
		return nil
	}
	t.Current = t.Current.Next()
	return nil
}

// ApplyPass validates and applies a pass. Passing is illegal when leading.
// The second consecutive pass clears the trick so the original player
// leads freely.
func (t *TableState) ApplyPass(seat Seat) error {
	if t.Phase != PhasePlaying {
		return fmt.Errorf("%w: phase is %s", ErrWrongPhase, t.Phase)
	}
	if seat != t.Current {
		return fmt.Errorf("%w: seat %d acted on seat %d's turn", ErrNotYourTurn, seat, t.Current)
	}
	if t.MustBeat().Type == ShapeNone {
		return fmt.Errorf("%w: seat %d", ErrIllegalPass, seat)
	}

	t.ConsecutivePasses++
	t.Current = t.Current.Next()
	if t.ConsecutivePasses >= NumSeats-1 {
		// Both opponents passed: the trick is over and the last player
		// (now current) leads a new one.
		t.LastPlay = PlayRecord{}
		t.ConsecutivePasses = 0
	}
	return nil
}

// Abort ends the deal immediately (peer disconnection). No winner is
// declared.
func (t *TableState) Abort(seat Seat) {
	if t.Phase == PhaseFinished {
		return
	}
	t.Phase = PhaseFinished
	t.Aborted = true
	t.AbortSeat = int8(seat)
}

// LandlordWon reports whether the finished deal went to the landlord.
func (t *TableState) LandlordWon() bool {
	return t.Winner != NoSeat && t.Winner == t.Landlord
}

// holdsAll reports whether seat's hand contains every submitted card,
// respecting multiplicity of identical packed bytes (which cannot occur in
// a legal deal, but guards double-submission).
func (t *TableState) holdsAll(seat Seat, cards []Card) bool {
	var used [MaxHandSize]bool
	p := &t.Players[seat]
	for _, c := range cards {
		found := false
		for i := uint8(0); i < p.HandLen; i++ {
			if !used[i] && p.Hand[i] == c {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (t *TableState) removeCards(seat Seat, cards []Card) {
	p := &t.Players[seat]
	for _, c := range cards {
		for i := uint8(0); i < p.HandLen; i++ {
			if p.Hand[i] == c {
				p.HandLen--
				p.Hand[i] = p.Hand[p.HandLen]
				break
			}
		}
	}
}

// TotalCards counts every card the table can account for: hands, the
// unclaimed reserve, the played pile, and the undealt deck. It must equal
// DeckSize at all times; anything else is an engine bug that tests fail
// loudly on.
func (t *TableState) TotalCards() int {
	total := int(t.DeckLen) + int(t.PlayedLen)
	for s := 0; s < NumSeats; s++ {
		total += int(t.Players[s].HandLen)
	}
	// The reserve exists as a separate pile only once dealt (DeckLen == 0)
	// and until the landlord claims it.
	if !t.ReservedClaimed && t.DeckLen == 0 {
		total += ReservedCount
	}
	return total
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of TableState for replay tests.
type Snapshot TableState

// Save returns a snapshot of the current table state.
func (t *TableState) Save() Snapshot { return Snapshot(*t) }

// Restore replaces the table state with the given snapshot.
func (t *TableState) Restore(s Snapshot) { *t = TableState(s) }

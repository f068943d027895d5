package engine

import (
	"errors"
	"testing"
)

// setHand overwrites a seat's hand for scripted scenarios.
func setHand(t *testing.T, tbl *TableState, seat Seat, values ...uint8) {
	t.Helper()
	cards := mk(t, values...)
	p := &tbl.Players[seat]
	*p = PlayerState{}
	for _, c := range cards {
		p.Hand[p.HandLen] = c
		p.HandLen++
	}
}

// playTable returns a minimal table already in the playing phase with seat 0
// as landlord on lead. Hands are set by the caller.
func playTable(t *testing.T) TableState {
	t.Helper()
	tbl := NewTable(1)
	tbl.Phase = PhasePlaying
	tbl.Landlord = 0
	tbl.Current = 0
	tbl.ReservedClaimed = true
	tbl.DeckLen = 0
	tbl.Multiplier = 1
	return tbl
}

func TestBiddingFinalizesOnMaxBid(t *testing.T) {
	tbl := NewTable(5)
	tbl.Deal()

	first := tbl.FirstBidder
	for i := 0; i < NumSeats; i++ {
		res, err := tbl.ApplyBid(tbl.Current, true)
		if err != nil {
			t.Fatalf("bid %d: %v", i, err)
		}
		if i < NumSeats-1 && res.Finalized {
			t.Fatalf("finalized after %d bids, HighestBid=%d", i+1, tbl.HighestBid)
		}
		if i == NumSeats-1 && !res.Finalized {
			t.Fatal("three raises must reach MaxBid and finalize")
		}
	}
	// The last raiser is the landlord.
	want := first.Next().Next()
	if tbl.Landlord != int8(want) {
		t.Errorf("Landlord = %d, want %d", tbl.Landlord, want)
	}
	if tbl.Phase != PhasePlaying {
		t.Errorf("Phase = %s, want playing", tbl.Phase)
	}
	if tbl.Current != want {
		t.Errorf("Current = %d, landlord must lead", tbl.Current)
	}
	if got := tbl.Players[want].HandLen; got != MaxHandSize {
		t.Errorf("landlord HandLen = %d, want %d", got, MaxHandSize)
	}
	if got := tbl.TotalCards(); got != DeckSize {
		t.Errorf("TotalCards() = %d after finalize, want %d", got, DeckSize)
	}
}

// TestBiddingSingleRaise: one seat bids, the
// other two decline, and the lone bidder becomes landlord.
func TestBiddingSingleRaise(t *testing.T) {
	tbl := NewTable(11)
	tbl.Deal()

	bidder := tbl.Current
	if _, err := tbl.ApplyBid(tbl.Current, true); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.ApplyBid(tbl.Current, false); err != nil {
		t.Fatal(err)
	}
	res, err := tbl.ApplyBid(tbl.Current, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Finalized || res.Redealt {
		t.Fatalf("res = %+v, want finalized", res)
	}
	if tbl.Landlord != int8(bidder) {
		t.Errorf("Landlord = %d, want %d", tbl.Landlord, bidder)
	}
	if tbl.HighestBid != 1 {
		t.Errorf("HighestBid = %d, want 1", tbl.HighestBid)
	}
}

func TestBiddingNobodyBidsRedeals(t *testing.T) {
	tbl := NewTable(21)
	tbl.Deal()

	before := tbl.Players[0].Cards()
	var res BidResult
	var err error
	for i := 0; i < NumSeats; i++ {
		res, err = tbl.ApplyBid(tbl.Current, false)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !res.Redealt {
		t.Fatal("three declines must redeal")
	}
	if tbl.Redeals != 1 {
		t.Errorf("Redeals = %d, want 1", tbl.Redeals)
	}
	if tbl.Phase != PhaseBidding {
		t.Errorf("Phase = %s, want bidding again", tbl.Phase)
	}
	if tbl.Landlord != NoSeat || tbl.HighestBidder != NoSeat || tbl.BidActions != 0 {
		t.Errorf("bidding sub-state not reset: %d %d %d", tbl.Landlord, tbl.HighestBidder, tbl.BidActions)
	}
	after := tbl.Players[0].Cards()
	same := len(before) == len(after)
	for i := 0; same && i < len(before); i++ {
		same = before[i] == after[i]
	}
	if same {
		t.Error("redeal produced an identical hand (not reshuffled)")
	}
	if got := tbl.TotalCards(); got != DeckSize {
		t.Errorf("TotalCards() = %d after redeal, want %d", got, DeckSize)
	}
}

func TestBidOutOfTurn(t *testing.T) {
	tbl := NewTable(31)
	tbl.Deal()

	snap := tbl.Save()
	if _, err := tbl.ApplyBid(tbl.Current.Next(), true); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if tbl != TableState(snap) {
		t.Error("rejected bid mutated state")
	}
}

func TestPlayValidation(t *testing.T) {
	tbl := playTable(t)
	setHand(t, &tbl, 0, 3, 3, 5, 9)
	setHand(t, &tbl, 1, 4, 6, 7)
	setHand(t, &tbl, 2, 10, 11, 12)

	snap := tbl.Save()

	// Not holding the cards.
	if err := tbl.ApplyPlay(0, mk(t, 14)); !errors.Is(err, ErrCardsNotHeld) {
		t.Errorf("err = %v, want ErrCardsNotHeld", err)
	}
	// Unclassifiable set.
	if err := tbl.ApplyPlay(0, mk(t, 3, 5)); !errors.Is(err, ErrIllegalShape) {
		t.Errorf("err = %v, want ErrIllegalShape", err)
	}
	// Out of turn.
	if err := tbl.ApplyPlay(1, mk(t, 4)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("err = %v, want ErrNotYourTurn", err)
	}
	// Pass while leading.
	if err := tbl.ApplyPass(0); !errors.Is(err, ErrIllegalPass) {
		t.Errorf("err = %v, want ErrIllegalPass", err)
	}
	if tbl != TableState(snap) {
		t.Fatal("rejected actions mutated state")
	}

	// Legal lead, then an insufficient follow.
	if err := tbl.ApplyPlay(0, mk(t, 9)); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPlay(1, mk(t, 4)); !errors.Is(err, ErrCannotBeat) {
		t.Errorf("err = %v, want ErrCannotBeat", err)
	}
	if err := tbl.ApplyPlay(1, mk(t, 4, 6)); !errors.Is(err, ErrIllegalShape) {
		t.Errorf("pair of different ranks: err = %v, want ErrIllegalShape", err)
	}
}

// TestTwoPassesResetTrick: after both
// opponents pass, the original player leads a fresh trick and may open
// with any shape, including a lower single.
func TestTwoPassesResetTrick(t *testing.T) {
	tbl := playTable(t)
	setHand(t, &tbl, 0, 3, 12)
	setHand(t, &tbl, 1, 4, 6, 7)
	setHand(t, &tbl, 2, 5, 10, 11)

	if err := tbl.ApplyPlay(0, mk(t, 12)); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPass(1); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPass(2); err != nil {
		t.Fatal(err)
	}

	if tbl.Current != 0 {
		t.Fatalf("Current = %d, want the trick winner back on lead", tbl.Current)
	}
	if got := tbl.MustBeat(); got.Type != ShapeNone {
		t.Fatalf("MustBeat = %s, want none on a fresh trick", got.Type)
	}
	// Free lead: a three, lower than the queen just played.
	if err := tbl.ApplyPlay(0, mk(t, 3)); err != nil {
		t.Fatalf("fresh lead rejected: %v", err)
	}
	// Seat 0 is out of cards now.
	if tbl.Phase != PhaseFinished || tbl.Winner != 0 {
		t.Errorf("Phase=%s Winner=%d, want finished/0", tbl.Phase, tbl.Winner)
	}
}

func TestMultiplierDoubles(t *testing.T) {
	tbl := playTable(t)
	setHand(t, &tbl, 0, 6, 6, 6, 6, 3)
	setHand(t, &tbl, 1, 16, 17, 4)
	setHand(t, &tbl, 2, 10, 11, 12)

	if err := tbl.ApplyPlay(0, mk(t, 6, 6, 6, 6)); err != nil {
		t.Fatal(err)
	}
	if tbl.Multiplier != 2 {
		t.Errorf("Multiplier = %d after bomb, want 2", tbl.Multiplier)
	}
	if err := tbl.ApplyPlay(1, mk(t, 16, 17)); err != nil {
		t.Fatal(err)
	}
	if tbl.Multiplier != 4 {
		t.Errorf("Multiplier = %d after rocket, want 4", tbl.Multiplier)
	}
	// Passes and ordinary plays leave it alone.
	if err := tbl.ApplyPass(2); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPass(0); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPlay(1, mk(t, 4)); err != nil {
		t.Fatal(err)
	}
	if tbl.Multiplier != 4 {
		t.Errorf("Multiplier = %d, want unchanged 4", tbl.Multiplier)
	}
}

func TestCardConservationThroughPlay(t *testing.T) {
	tbl := playTable(t)
	setHand(t, &tbl, 0, 3, 3, 5, 9, 12)
	setHand(t, &tbl, 1, 4, 6, 7, 10, 13)
	setHand(t, &tbl, 2, 5, 8, 11, 14, 15)
	// Only the scripted 15 cards exist on this table.
	wantTotal := 15

	check := func(step string) {
		t.Helper()
		if got := tbl.TotalCards(); got != wantTotal {
			t.Fatalf("%s: TotalCards() = %d, want %d", step, got, wantTotal)
		}
	}
	check("start")
	if err := tbl.ApplyPlay(0, mk(t, 3, 3)); err != nil {
		t.Fatal(err)
	}
	check("after pair")
	if err := tbl.ApplyPass(1); err != nil {
		t.Fatal(err)
	}
	check("after pass")
	if err := tbl.ApplyPass(2); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPlay(0, mk(t, 12)); err != nil {
		t.Fatal(err)
	}
	check("after single")
	if tbl.PlayedLen != 3 {
		t.Errorf("PlayedLen = %d, want 3", tbl.PlayedLen)
	}
}

func TestLastPlayTracking(t *testing.T) {
	tbl := playTable(t)
	setHand(t, &tbl, 0, 5, 9)
	setHand(t, &tbl, 1, 7, 10)
	setHand(t, &tbl, 2, 8, 11)

	if err := tbl.ApplyPlay(0, mk(t, 5)); err != nil {
		t.Fatal(err)
	}
	if tbl.LastPlay.Seat != 0 || tbl.LastPlay.Shape.Primary != 5 {
		t.Errorf("LastPlay = %+v", tbl.LastPlay)
	}
	if err := tbl.ApplyPlay(1, mk(t, 7)); err != nil {
		t.Fatal(err)
	}
	if got := tbl.MustBeat(); got.Primary != 7 {
		t.Errorf("MustBeat().Primary = %d, want 7", got.Primary)
	}
	// LastPlay cycling back to the current seat means a free lead.
	if err := tbl.ApplyPass(2); err != nil {
		t.Fatal(err)
	}
	if err := tbl.ApplyPass(0); err != nil {
		t.Fatal(err)
	}
	if tbl.Current != 1 {
		t.Fatalf("Current = %d, want 1", tbl.Current)
	}
	if got := tbl.MustBeat(); got.Type != ShapeNone {
		t.Errorf("MustBeat = %s, want none", got.Type)
	}
}

func TestAbort(t *testing.T) {
	tbl := NewTable(3)
	tbl.Deal()
	tbl.Abort(1)
	if tbl.Phase != PhaseFinished || !tbl.Aborted || tbl.AbortSeat != 1 {
		t.Errorf("abort state: phase=%s aborted=%v seat=%d", tbl.Phase, tbl.Aborted, tbl.AbortSeat)
	}
	if tbl.Winner != NoSeat {
		t.Errorf("Winner = %d, want NoSeat", tbl.Winner)
	}
	if tbl.LandlordWon() {
		t.Error("aborted deal must not report a landlord win")
	}
	// No further actions accepted.
	if _, err := tbl.ApplyBid(tbl.Current, true); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("err = %v, want ErrWrongPhase", err)
	}
}

func TestSaveRestore(t *testing.T) {
	tbl := NewTable(55)
	tbl.Deal()
	snap := tbl.Save()

	for tbl.Phase == PhaseBidding {
		if _, err := tbl.ApplyBid(tbl.Current, true); err != nil {
			t.Fatal(err)
		}
	}
	if tbl == TableState(snap) {
		t.Fatal("state did not change after bidding")
	}
	tbl.Restore(snap)
	if tbl != TableState(snap) {
		t.Fatal("Restore did not reproduce the snapshot")
	}
	if tbl.Phase != PhaseBidding {
		t.Errorf("Phase = %s, want bidding", tbl.Phase)
	}
}

// internal/game/sync.go
package game

import (
	"github.com/google/uuid"

	"github.com/qiuyin/doudizhu/engine"
)

// ViewSeat represents one seat's state as visible to a specific viewer.
// Opponents expose hand sizes only; card identities stay server-side.
type ViewSeat struct {
	Seat          uint8     `json:"seat"`
	PlayerID      uuid.UUID `json:"playerId"`
	Username      string    `json:"username"`
	HandSize      int       `json:"handSize"`
	Connected     bool      `json:"connected"`
	IsBot         bool      `json:"isBot"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	// RevealedHand is populated only for the viewer's own seat.
	RevealedHand []int `json:"revealedHand,omitempty"`
}

// ViewLastPlay is the play the current seat has to beat, fully public.
type ViewLastPlay struct {
	Seat     uint8  `json:"seat"`
	Cards    []int  `json:"cards"`
	Shape    string `json:"shape"`
	Primary  uint8  `json:"primary"`
	NumCards uint8  `json:"numCards"`
}

// ViewState represents the whole table, obfuscated for a specific viewer.
type ViewState struct {
	RoomID      uuid.UUID     `json:"roomId"`
	Phase       string        `json:"phase"`
	MySeat      uint8         `json:"mySeat"`
	CurrentSeat uint8         `json:"currentSeat"`
	Landlord    int           `json:"landlord"` // -1 until bidding finalizes.
	HighestBid  uint8         `json:"highestBid"`
	Multiplier  uint32        `json:"multiplier"`
	LastPlay    *ViewLastPlay `json:"lastPlay,omitempty"` // nil on a fresh trick.
	// Reserved cards are public once the landlord claims them.
	Reserved []int      `json:"reserved,omitempty"`
	Seats    []ViewSeat `json:"seats"`
	Winner   int        `json:"winner"` // -1 while the deal runs.
	Aborted  bool       `json:"aborted"`
}

// cardIDs converts cards to their packed byte wire IDs.
func cardIDs(cards []engine.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = int(c)
	}
	return out
}

// BuildView generates a snapshot of the table state tailored to the
// perspective of the given seat. Assumes the room lock is HELD by the
// caller.
func (r *Room) BuildView(viewer engine.Seat) ViewState {
	t := &r.Table
	view := ViewState{
		RoomID:      r.ID,
		Phase:       t.Phase.String(),
		MySeat:      uint8(viewer),
		CurrentSeat: uint8(t.Current),
		Landlord:    int(t.Landlord),
		HighestBid:  t.HighestBid,
		Multiplier:  t.Multiplier,
		Winner:      int(t.Winner),
		Aborted:     t.Aborted,
	}

	if t.LastPlay.Shape.Type != engine.ShapeNone {
		view.LastPlay = &ViewLastPlay{
			Seat:     uint8(t.LastPlay.Seat),
			Cards:    cardIDs(t.LastPlay.CardSlice()),
			Shape:    t.LastPlay.Shape.Type.String(),
			Primary:  t.LastPlay.Shape.Primary,
			NumCards: t.LastPlay.Shape.NumCards,
		}
	}

	if t.ReservedClaimed {
		view.Reserved = cardIDs(t.Reserved[:])
	}

	view.Seats = make([]ViewSeat, engine.NumSeats)
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		p := r.Players[s]
		vs := ViewSeat{
			Seat:          uint8(s),
			HandSize:      int(t.Players[s].HandLen),
			IsCurrentTurn: t.Phase != engine.PhaseFinished && t.Current == s,
		}
		if p != nil {
			vs.PlayerID = p.ID
			vs.Connected = p.Connected
			vs.IsBot = p.IsBot
			if p.User != nil {
				vs.Username = p.User.Username
			}
		}
		if s == viewer {
			vs.RevealedHand = cardIDs(t.Players[s].Cards())
		}
		view.Seats[s] = vs
	}
	return view
}

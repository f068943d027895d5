// internal/game/events.go
package game

import "github.com/google/uuid"

// RoomEventType represents the type of a room-related event sent via
// WebSockets.
type RoomEventType string

// Constants defining the various RoomEvent types used for WebSocket
// communication.
const (
	EventWaiting      RoomEventType = "waiting"       // Public: matchmaking queue size changed.
	EventGameStart    RoomEventType = "game_start"    // Private: deal started; carries the viewer's seat and hand.
	EventBidUpdate    RoomEventType = "bid_update"    // Public: a seat bid or declined.
	EventBidFinalized RoomEventType = "bid_finalized" // Public: landlord assigned, reserved cards revealed.
	EventRedeal       RoomEventType = "redeal"        // Public: nobody bid; table reshuffled.
	EventPlayUpdate   RoomEventType = "play_update"   // Public: a seat played cards.
	EventPassUpdate   RoomEventType = "pass_update"   // Public: a seat passed.
	EventError        RoomEventType = "error"         // Private: rejected action, sender only.
	EventGameOver     RoomEventType = "game_over"     // Public: deal finished (win or abort), includes results.
	EventPlayerLeft   RoomEventType = "player_left"   // Public: a seat disconnected mid-deal.
)

// EventSeat identifies a seat within a RoomEvent payload. Seats are always
// absolute; clients translate to their own frame using mySeat from
// game_start.
type EventSeat struct {
	Seat uint8     `json:"seat"`
	ID   uuid.UUID `json:"id,omitempty"`
}

// RoomEvent is the standard structure for broadcasting room state changes
// and actions. Cards travel as their packed byte IDs.
type RoomEvent struct {
	Type RoomEventType `json:"type"`
	Seat *EventSeat    `json:"seat,omitempty"` // The seat initiating the event.

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.

	State *ViewState `json:"state,omitempty"` // Full per-viewer state for sync events.
}

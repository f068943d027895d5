// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User holds the identity attached to a connection after token verification.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player represents one participant at a table: a human behind a websocket
// connection, or an AI-backed seat with a nil Conn.
type Player struct {
	ID        uuid.UUID       // Unique identifier for this player.
	User      *User           // Identity info; synthetic for AI seats.
	Conn      *websocket.Conn // nil for AI seats and after disconnect.
	Connected bool            // Is the websocket currently attached?
	IsBot     bool            // AI-backed seat, driven by the room.
}

// GameAction is a decoded client->server message routed to a room.
type GameAction struct {
	ActionType string                 `json:"action"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

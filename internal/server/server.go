// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qiuyin/doudizhu/internal/auth"
	"github.com/qiuyin/doudizhu/internal/config"
	"github.com/qiuyin/doudizhu/internal/game"
	"github.com/qiuyin/doudizhu/internal/models"
)

// writeTimeout bounds a single websocket write so one stuck client cannot
// stall a room broadcast.
const writeTimeout = 5 * time.Second

// Server is the websocket front: it authenticates connections, runs the
// matchmaking queue, and routes messages into rooms.
type Server struct {
	cfg config.Config

	mu         sync.Mutex
	queue      []*models.Player
	rooms      map[uuid.UUID]*game.Room
	playerRoom map[uuid.UUID]*game.Room
}

// New builds a Server from config.
func New(cfg config.Config) *Server {
	return &Server{
		cfg:        cfg,
		rooms:      make(map[uuid.UUID]*game.Room),
		playerRoom: make(map[uuid.UUID]*game.Room),
	}
}

// Handler returns the HTTP handler exposing the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// handleWS upgrades the connection, verifies the join token, and either
// queues the player or starts a solo table against AI seats.
func (s *Server) handleWS(w http.ResponseWriter, req *http.Request) {
	playerID, username, err := s.authenticate(req)
	if err != nil {
		logrus.WithError(err).Warn("ws: rejected connection")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, req, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws: accept failed")
		return
	}

	p := &models.Player{
		ID:        playerID,
		User:      &models.User{ID: playerID, Username: username},
		Conn:      conn,
		Connected: true,
	}
	logrus.WithFields(logrus.Fields{"player": playerID, "username": username}).Info("ws: player connected")

	solo := req.URL.Query().Get("mode") == "solo"
	if solo && s.cfg.SoloFillBots {
		s.startSoloRoom(p)
	} else {
		s.enqueue(p)
	}

	s.readPump(req.Context(), p)
}

// authenticate verifies the join token from the query string. With no
// JWT secret configured the server runs open: any connection gets a fresh
// identity (local development).
func (s *Server) authenticate(req *http.Request) (uuid.UUID, string, error) {
	if s.cfg.JWTSecret == "" {
		name := req.URL.Query().Get("username")
		if name == "" {
			name = "guest"
		}
		return uuid.New(), name, nil
	}
	token := req.URL.Query().Get("token")
	if token == "" {
		return uuid.Nil, "", auth.ErrInvalidToken
	}
	return auth.VerifyToken(s.cfg.JWTSecret, token)
}

// enqueue adds a player to the matchmaking queue, tells everyone waiting
// the new count, and starts a room once three are queued.
func (s *Server) enqueue(p *models.Player) {
	s.mu.Lock()
	s.queue = append(s.queue, p)
	waiting := make([]*models.Player, len(s.queue))
	copy(waiting, s.queue)

	var seated []*models.Player
	if len(s.queue) >= 3 {
		seated = s.queue[:3]
		s.queue = s.queue[3:]
	}
	s.mu.Unlock()

	ev := game.RoomEvent{
		Type:    game.EventWaiting,
		Payload: map[string]interface{}{"count": len(waiting)},
	}
	for _, waiter := range waiting {
		s.writeEvent(waiter, ev)
	}

	if seated != nil {
		s.startRoom(seated)
	}
}

// dequeue removes a disconnected player from the matchmaking queue.
func (s *Server) dequeue(playerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.queue {
		if p.ID == playerID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// startSoloRoom seats one human with AI opponents and starts immediately.
func (s *Server) startSoloRoom(p *models.Player) {
	s.startRoom([]*models.Player{p})
}

// startRoom wires up a room for the given players, filling empty seats
// with AI, and begins the deal.
func (s *Server) startRoom(players []*models.Player) {
	r := game.NewRoom()
	r.TurnDuration = time.Duration(s.cfg.TurnTimerSec) * time.Second
	r.BotThinkMin = time.Duration(s.cfg.BotThinkMinMS) * time.Millisecond
	r.BotThinkMax = time.Duration(s.cfg.BotThinkMaxMS) * time.Millisecond

	r.BroadcastFn = func(ev game.RoomEvent) { s.broadcastToRoom(r, ev) }
	r.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.RoomEvent) {
		s.sendToRoomPlayer(r, playerID, ev)
	}
	r.OnRoomEnd = func(roomID uuid.UUID) { go s.teardownRoom(roomID) }

	r.Mu.Lock()
	for _, p := range players {
		if _, err := r.AddPlayer(p); err != nil {
			logrus.WithError(err).WithField("room", r.ID).Error("room: seat failed")
		}
	}
	r.FillBots()
	r.Mu.Unlock()

	s.mu.Lock()
	s.rooms[r.ID] = r
	for _, p := range players {
		s.playerRoom[p.ID] = r
	}
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"room": r.ID, "humans": len(players)}).Info("room: starting deal")
	r.Start()
}

// teardownRoom drops the room and its player mappings after a deal ends.
// Connections stay open; clients re-queue by sending join again.
func (s *Server) teardownRoom(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(s.rooms, roomID)
	for id, mapped := range s.playerRoom {
		if mapped == r {
			delete(s.playerRoom, id)
		}
	}
	logrus.WithField("room", roomID).Info("room: torn down")
}

// roomFor returns the room a player currently occupies.
func (s *Server) roomFor(playerID uuid.UUID) *game.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerRoom[playerID]
}

// readPump decodes client messages and dispatches them until the
// connection drops.
func (s *Server) readPump(ctx context.Context, p *models.Player) {
	defer s.handleClose(p)

	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, p.Conn, &action); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return
			}
			logrus.WithError(err).WithField("player", p.ID).Debug("ws: read failed")
			return
		}

		switch action.ActionType {
		case "join":
			// Re-queue after a finished deal.
			if s.roomFor(p.ID) == nil {
				s.enqueue(p)
			}
		case "bid", "play", "pass":
			r := s.roomFor(p.ID)
			if r == nil {
				s.writeEvent(p, game.RoomEvent{
					Type:    game.EventError,
					Payload: map[string]interface{}{"message": "not seated at a table"},
				})
				continue
			}
			r.HandleAction(p.ID, action)
		default:
			s.writeEvent(p, game.RoomEvent{
				Type:    game.EventError,
				Payload: map[string]interface{}{"message": "unknown action type"},
			})
		}
	}
}

// handleClose tears down queue and room membership when a connection ends.
func (s *Server) handleClose(p *models.Player) {
	s.dequeue(p.ID)
	if r := s.roomFor(p.ID); r != nil {
		r.HandleDisconnect(p.ID)
	}
	if p.Conn != nil {
		p.Conn.Close(websocket.StatusNormalClosure, "bye")
	}
	logrus.WithField("player", p.ID).Info("ws: player disconnected")
}

// broadcastToRoom fans an event out to every connected human in the room.
// Invoked with the room lock held, which serializes writes per room.
func (s *Server) broadcastToRoom(r *game.Room, ev game.RoomEvent) {
	for _, p := range r.Players {
		if p != nil && p.Connected && p.Conn != nil {
			s.writeEvent(p, ev)
		}
	}
}

// sendToRoomPlayer sends an event to a single seated player.
func (s *Server) sendToRoomPlayer(r *game.Room, playerID uuid.UUID, ev game.RoomEvent) {
	for _, p := range r.Players {
		if p != nil && p.ID == playerID {
			if p.Connected && p.Conn != nil {
				s.writeEvent(p, ev)
			}
			return
		}
	}
}

// writeEvent serializes one event to one connection with a bounded write.
func (s *Server) writeEvent(p *models.Player, ev game.RoomEvent) {
	if p.Conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, p.Conn, ev); err != nil {
		logrus.WithError(err).WithField("player", p.ID).Debug("ws: write failed")
	}
}

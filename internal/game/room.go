// internal/game/room.go
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qiuyin/doudizhu/engine"
	"github.com/qiuyin/doudizhu/engine/agent"
	"github.com/qiuyin/doudizhu/internal/cache"
	"github.com/qiuyin/doudizhu/internal/database"
	"github.com/qiuyin/doudizhu/internal/models"
)

// OnRoomEndFunc defines the signature for a callback executed when a deal
// ends, win or abort. The server uses it to tear the room down.
type OnRoomEndFunc func(roomID uuid.UUID)

// Room represents the state and logic for a single three-seat table. It is
// a single-writer actor: every input — websocket messages, turn timers, AI
// thinking timers — funnels through Mu before touching the table state.
type Room struct {
	ID uuid.UUID // Unique identifier for this room.

	Players [engine.NumSeats]*models.Player // Seat -> player; nil until seated.

	Table engine.TableState // The authoritative game state.
	Bot   *agent.Agent      // Decision maker for AI seats and timeouts.

	// Turn Management
	TurnID       int           // Increments on every accepted action, guards stale timers.
	TurnDuration time.Duration // Per-turn timeout; 0 disables the timer.
	turnTimer    *time.Timer   // Active timer for the current turn.
	botTimer     *time.Timer   // Pending AI thinking delay.
	BotThinkMin  time.Duration // Bounds for the AI thinking delay.
	BotThinkMax  time.Duration

	// Lifecycle State
	Started bool // Has the deal been dealt?
	Over    bool // Has the deal finished (win or abort)?

	actionIndex int    // Sequential index for logging actions via historian.
	rng         uint64 // Thinking-delay jitter.

	// consecutiveTimeouts counts turns expired with no human action in
	// between. Two full silent rounds abort the table instead of redealing
	// forever.
	consecutiveTimeouts int

	Mu sync.Mutex // Mutex protecting concurrent access to room state.

	// Communication Callbacks
	BroadcastFn         func(ev RoomEvent)                     // Sends an event to all connected players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev RoomEvent) // Sends an event to a single player.
	OnRoomEnd           OnRoomEndFunc                          // Callback executed when the deal finishes.
}

// NewRoom creates a new room instance with default settings. The table is
// initialized during Start.
func NewRoom() *Room {
	id, _ := uuid.NewRandom()
	seed := uint64(time.Now().UnixNano())
	return &Room{
		ID:           id,
		Bot:          agent.New(seed),
		TurnDuration: 30 * time.Second,
		BotThinkMin:  600 * time.Millisecond,
		BotThinkMax:  1800 * time.Millisecond,
		rng:          seed | 1,
	}
}

func (r *Room) nextRand() uint64 {
	x := r.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.rng = x
	return x
}

// botThinkDelay returns a jittered thinking delay inside the configured
// bounds. Assumes lock is held by caller.
func (r *Room) botThinkDelay() time.Duration {
	if r.BotThinkMax <= r.BotThinkMin {
		return r.BotThinkMin
	}
	span := uint64(r.BotThinkMax - r.BotThinkMin)
	return r.BotThinkMin + time.Duration(r.nextRand()%span)
}

// AddPlayer seats a player in the first empty slot. Returns the assigned
// seat. Assumes lock is held by caller.
func (r *Room) AddPlayer(p *models.Player) (engine.Seat, error) {
	if r.Started {
		return 0, fmt.Errorf("room %s: deal already in progress", r.ID)
	}
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		if r.Players[s] == nil {
			r.Players[s] = p
			r.logAction(p.ID, "player_add", map[string]interface{}{"seat": uint8(s), "bot": p.IsBot})
			return s, nil
		}
	}
	return 0, fmt.Errorf("room %s: table full", r.ID)
}

// FillBots seats AI players in every remaining empty slot (solo mode).
// Assumes lock is held by caller.
func (r *Room) FillBots() {
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		if r.Players[s] != nil {
			continue
		}
		id, _ := uuid.NewRandom()
		r.Players[s] = &models.Player{
			ID:    id,
			User:  &models.User{ID: id, Username: fmt.Sprintf("Bot-%d", s)},
			IsBot: true,
		}
		r.logAction(id, "player_add", map[string]interface{}{"seat": uint8(s), "bot": true})
	}
}

// Start shuffles, deals, and opens bidding. Every seated player receives a
// private game_start carrying their seat and hand.
func (r *Room) Start() {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Started || r.Over {
		log.Printf("Room %s: Start called in invalid state (Started:%v, Over:%v).", r.ID, r.Started, r.Over)
		return
	}
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		if r.Players[s] == nil {
			log.Printf("Room %s: Start called with empty seat %d.", r.ID, s)
			return
		}
	}

	r.Table = engine.NewTable(uint64(time.Now().UnixNano()))
	r.Table.Deal()
	r.Started = true
	r.logAction(uuid.Nil, "deal_start", map[string]interface{}{"firstBidder": uint8(r.Table.FirstBidder)})
	log.Printf("Room %s: Deal started, seat %d bids first.", r.ID, r.Table.FirstBidder)

	r.sendGameStartToAll()
	r.onStateAdvanced()
}

// sendGameStartToAll sends each seated human their private view of the
// fresh deal. Assumes lock is held by caller.
func (r *Room) sendGameStartToAll() {
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		p := r.Players[s]
		if p == nil || p.IsBot {
			continue
		}
		state := r.BuildView(s)
		r.fireEventToPlayer(p.ID, RoomEvent{
			Type:  EventGameStart,
			State: &state,
		})
	}
}

// HandleAction routes an incoming player action (bid, play, pass).
// Validates seat and state, then applies the corresponding transition.
func (r *Room) HandleAction(playerID uuid.UUID, action models.GameAction) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Over {
		log.Printf("Room %s: Action %s from %s ignored (deal over).", r.ID, action.ActionType, playerID)
		return
	}
	if !r.Started {
		log.Printf("Room %s: Action %s from %s ignored (deal not started).", r.ID, action.ActionType, playerID)
		return
	}
	seat, ok := r.seatOf(playerID)
	if !ok {
		log.Printf("Room %s: Action %s from unknown player %s ignored.", r.ID, action.ActionType, playerID)
		return
	}
	r.consecutiveTimeouts = 0

	switch action.ActionType {
	case "bid":
		want, _ := action.Payload["bid"].(bool)
		r.applyBid(seat, want)
	case "play":
		cards, err := parseCards(action.Payload)
		if err != nil {
			r.fireError(playerID, err)
			return
		}
		r.applyPlay(seat, cards)
	case "pass":
		r.applyPass(seat)
	default:
		log.Printf("Room %s: Unknown action type '%s' from player %s.", r.ID, action.ActionType, playerID)
		r.fireError(playerID, fmt.Errorf("unknown action type %q", action.ActionType))
	}
}

// parseCards extracts card IDs (packed bytes) from a play payload.
func parseCards(payload map[string]interface{}) ([]engine.Card, error) {
	raw, ok := payload["cards"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("play payload missing cards")
	}
	cards := make([]engine.Card, len(raw))
	for i, v := range raw {
		n, ok := v.(float64)
		if !ok || n < 0 || n > 255 || n != float64(int(n)) {
			return nil, fmt.Errorf("bad card id at index %d", i)
		}
		cards[i] = engine.Card(n)
	}
	return cards, nil
}

// applyBid applies one bidding action and broadcasts the result.
// Assumes lock is held by caller.
func (r *Room) applyBid(seat engine.Seat, want bool) {
	res, err := r.Table.ApplyBid(seat, want)
	if err != nil {
		r.fireErrorToSeat(seat, err)
		return
	}
	r.logAction(r.playerIDAt(seat), "bid", map[string]interface{}{
		"bid": want, "highestBid": r.Table.HighestBid,
	})

	if res.Redealt {
		log.Printf("Room %s: Nobody bid, redealing (redeal #%d).", r.ID, r.Table.Redeals)
		r.fireEvent(RoomEvent{
			Type:    EventRedeal,
			Payload: map[string]interface{}{"redeals": int(r.Table.Redeals), "firstBidder": uint8(r.Table.FirstBidder)},
		})
		r.sendGameStartToAll()
		r.onStateAdvanced()
		return
	}

	r.fireEvent(RoomEvent{
		Type: EventBidUpdate,
		Seat: &EventSeat{Seat: uint8(seat), ID: r.playerIDAt(seat)},
		Payload: map[string]interface{}{
			"bid":        want,
			"highestBid": r.Table.HighestBid,
			"next":       uint8(r.Table.Current),
		},
	})

	if res.Finalized {
		log.Printf("Room %s: Bidding finalized, seat %d is landlord at bid %d.", r.ID, r.Table.Landlord, r.Table.HighestBid)
		r.fireEvent(RoomEvent{
			Type: EventBidFinalized,
			Payload: map[string]interface{}{
				"landlord":   int(r.Table.Landlord),
				"reserved":   cardIDs(r.Table.Reserved[:]),
				"highestBid": r.Table.HighestBid,
				"next":       uint8(r.Table.Current),
			},
		})
	}
	r.onStateAdvanced()
}

// applyPlay applies a card play and broadcasts the result. Assumes lock is
// held by caller.
func (r *Room) applyPlay(seat engine.Seat, cards []engine.Card) {
	if err := r.Table.ApplyPlay(seat, cards); err != nil {
		r.fireErrorToSeat(seat, err)
		return
	}
	shape := r.Table.LastPlay.Shape
	r.logAction(r.playerIDAt(seat), "play", map[string]interface{}{
		"cards": cardIDs(cards), "shape": shape.Type.String(),
	})
	r.fireEvent(RoomEvent{
		Type: EventPlayUpdate,
		Seat: &EventSeat{Seat: uint8(seat), ID: r.playerIDAt(seat)},
		Payload: map[string]interface{}{
			"cards":      cardIDs(cards),
			"shape":      shape.Type.String(),
			"primary":    shape.Primary,
			"handSize":   int(r.Table.Players[seat].HandLen),
			"multiplier": r.Table.Multiplier,
			"next":       uint8(r.Table.Current),
		},
	})

	if r.Table.Phase == engine.PhaseFinished {
		r.endDeal()
		return
	}
	r.onStateAdvanced()
}

// applyPass applies a pass and broadcasts the result. Assumes lock is held
// by caller.
func (r *Room) applyPass(seat engine.Seat) {
	if err := r.Table.ApplyPass(seat); err != nil {
		r.fireErrorToSeat(seat, err)
		return
	}
	trickReset := r.Table.LastPlay.Shape.Type == engine.ShapeNone
	r.logAction(r.playerIDAt(seat), "pass", map[string]interface{}{"trickReset": trickReset})
	r.fireEvent(RoomEvent{
		Type: EventPassUpdate,
		Seat: &EventSeat{Seat: uint8(seat), ID: r.playerIDAt(seat)},
		Payload: map[string]interface{}{
			"trickReset": trickReset,
			"next":       uint8(r.Table.Current),
		},
	})
	r.onStateAdvanced()
}

// onStateAdvanced runs after every accepted transition: bumps the turn
// guard, restarts the turn timer, and schedules the AI seat if one is up.
// Assumes lock is held by caller.
func (r *Room) onStateAdvanced() {
	r.TurnID++
	if r.Over || r.Table.Phase == engine.PhaseFinished {
		return
	}
	r.scheduleTurnTimer()

	current := r.Table.Current
	if p := r.Players[current]; p != nil && p.IsBot {
		r.scheduleBotMove(current)
	}
}

// scheduleTurnTimer arms the per-turn timeout for the current seat.
// Assumes lock is held by caller.
func (r *Room) scheduleTurnTimer() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	if r.TurnDuration <= 0 || r.Over || !r.Started {
		return
	}

	expectedTurnID := r.TurnID
	capturedSeat := r.Table.Current

	r.turnTimer = time.AfterFunc(r.TurnDuration, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()

		if r.Over || !r.Started || r.TurnID != expectedTurnID {
			return
		}
		log.Printf("Room %s, Turn %d: Timer fired for seat %d.", r.ID, r.TurnID, capturedSeat)
		r.handleTimeout(capturedSeat)
	})
}

// handleTimeout plays for a seat whose turn expired: a declined bid during
// bidding, an automatic pass when following, or the agent's choice when the
// seat must lead. Assumes lock is held by caller.
func (r *Room) handleTimeout(seat engine.Seat) {
	r.logAction(r.playerIDAt(seat), "timeout", map[string]interface{}{"turn": r.TurnID})

	r.consecutiveTimeouts++
	if r.consecutiveTimeouts >= 2*engine.NumSeats {
		log.Printf("Room %s: %d consecutive timeouts, aborting table.", r.ID, r.consecutiveTimeouts)
		r.Table.Abort(seat)
		r.endDeal()
		return
	}

	switch r.Table.Phase {
	case engine.PhaseBidding:
		r.applyBid(seat, false)
	case engine.PhasePlaying:
		if r.Table.MustBeat().Type != engine.ShapeNone {
			r.applyPass(seat)
			return
		}
		// Leading: a pass is illegal, so the agent picks for them.
		cards := r.Bot.DecidePlay(r.Table.Players[seat].Cards(), engine.Shape{})
		if cards == nil {
			// Cannot happen for a non-empty hand; abort rather than stall.
			log.Printf("Room %s: No lead available for seat %d on timeout.", r.ID, seat)
			r.Table.Abort(seat)
			r.endDeal()
			return
		}
		r.applyPlay(seat, cards)
	}
}

// scheduleBotMove arms the AI thinking delay for the given seat.
// Assumes lock is held by caller.
func (r *Room) scheduleBotMove(seat engine.Seat) {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	expectedTurnID := r.TurnID

	r.botTimer = time.AfterFunc(r.botThinkDelay(), func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()

		if r.Over || !r.Started || r.TurnID != expectedTurnID || r.Table.Current != seat {
			return
		}
		r.doBotMove(seat)
	})
}

// doBotMove drives one full AI turn through the same apply path human
// actions use. Assumes lock is held by caller.
func (r *Room) doBotMove(seat engine.Seat) {
	switch r.Table.Phase {
	case engine.PhaseBidding:
		want := r.Bot.DecideBid(r.Table.Players[seat].Cards(), r.Table.HighestBid,
			r.Table.HighestBidder != engine.NoSeat)
		r.applyBid(seat, want)
	case engine.PhasePlaying:
		cards := r.Bot.DecidePlay(r.Table.Players[seat].Cards(), r.Table.MustBeat())
		if cards == nil {
			r.applyPass(seat)
			return
		}
		r.applyPlay(seat, cards)
	}
}

// HandleDisconnect marks a player as disconnected. A disconnect during an
// active deal is terminal: the table aborts and everyone is notified.
func (r *Room) HandleDisconnect(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	seat, ok := r.seatOf(playerID)
	if !ok {
		log.Printf("Room %s: Disconnected player %s not found.", r.ID, playerID)
		return
	}
	p := r.Players[seat]
	if !p.Connected && p.Conn == nil {
		return // Already handled.
	}
	p.Connected = false
	p.Conn = nil
	r.logAction(playerID, "player_disconnect", map[string]interface{}{"seat": uint8(seat)})
	log.Printf("Room %s: Player %s (seat %d) disconnected.", r.ID, playerID, seat)

	if !r.Started || r.Over {
		return
	}

	r.fireEvent(RoomEvent{
		Type: EventPlayerLeft,
		Seat: &EventSeat{Seat: uint8(seat), ID: playerID},
	})
	r.Table.Abort(seat)
	r.endDeal()
}

// endDeal finalizes the deal, broadcasts results, persists them, and
// triggers the OnRoomEnd callback. Assumes lock is held by caller.
func (r *Room) endDeal() {
	if r.Over {
		return
	}
	r.Over = true

	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}

	t := &r.Table
	scores := r.computeScores()
	payload := map[string]interface{}{
		"winner":      int(t.Winner),
		"landlord":    int(t.Landlord),
		"landlordWon": t.LandlordWon(),
		"multiplier":  t.Multiplier,
		"aborted":     t.Aborted,
		"scores":      scores,
	}
	if t.Aborted {
		payload["abortSeat"] = int(t.AbortSeat)
	}
	r.logAction(uuid.Nil, string(EventGameOver), payload)
	r.fireEvent(RoomEvent{Type: EventGameOver, Payload: payload})
	log.Printf("Room %s: Deal over. Winner=%d LandlordWon=%v Multiplier=%d Aborted=%v",
		r.ID, t.Winner, t.LandlordWon(), t.Multiplier, t.Aborted)

	r.persistDealResult(scores)

	if r.OnRoomEnd != nil {
		r.OnRoomEnd(r.ID)
	}
}

// computeScores settles the deal: stake = highest bid x multiplier, the
// landlord wins or pays double. An aborted deal settles at zero.
// Assumes lock is held by caller.
func (r *Room) computeScores() []int {
	scores := make([]int, engine.NumSeats)
	t := &r.Table
	if t.Aborted || t.Winner == engine.NoSeat || t.Landlord == engine.NoSeat {
		return scores
	}
	stake := int(t.HighestBid) * int(t.Multiplier)
	sign := 1
	if !t.LandlordWon() {
		sign = -1
	}
	for s := 0; s < engine.NumSeats; s++ {
		if int8(s) == t.Landlord {
			scores[s] = 2 * stake * sign
		} else {
			scores[s] = -stake * sign
		}
	}
	return scores
}

// persistDealResult writes the final state to the database asynchronously.
// Assumes lock is held by caller.
func (r *Room) persistDealResult(scores []int) {
	t := &r.Table
	type seatState struct {
		PlayerID string `json:"playerId"`
		Bot      bool   `json:"bot"`
		Hand     []int  `json:"hand"`
		Score    int    `json:"score"`
	}
	seats := make([]seatState, engine.NumSeats)
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		st := seatState{Hand: cardIDs(t.Players[s].Cards()), Score: scores[s]}
		if p := r.Players[s]; p != nil {
			st.PlayerID = p.ID.String()
			st.Bot = p.IsBot
		}
		seats[s] = st
	}
	res := database.DealResult{
		RoomID:      r.ID,
		Landlord:    int(t.Landlord),
		Winner:      int(t.Winner),
		LandlordWon: t.LandlordWon(),
		Aborted:     t.Aborted,
		Multiplier:  t.Multiplier,
		Snapshot: map[string]interface{}{
			"seats":  seats,
			"played": cardIDs(t.Played[:t.PlayedLen]),
		},
	}
	if database.DB != nil {
		go database.StoreDealResult(context.Background(), res)
	}
}

// seatOf finds the seat a player occupies. Assumes lock is held by caller.
func (r *Room) seatOf(playerID uuid.UUID) (engine.Seat, bool) {
	for s := engine.Seat(0); s < engine.NumSeats; s++ {
		if r.Players[s] != nil && r.Players[s].ID == playerID {
			return s, true
		}
	}
	return 0, false
}

// playerIDAt returns the UUID seated at seat, or Nil. Assumes lock is held
// by caller.
func (r *Room) playerIDAt(seat engine.Seat) uuid.UUID {
	if p := r.Players[seat]; p != nil {
		return p.ID
	}
	return uuid.Nil
}

// fireEvent broadcasts an event to all connected players via the
// BroadcastFn callback. Assumes lock is held by caller.
func (r *Room) fireEvent(ev RoomEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	} else {
		log.Printf("Warning: Room %s: BroadcastFn is nil, cannot broadcast event type %s.", r.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a specific player via the
// BroadcastToPlayerFn callback. Assumes lock is held by caller.
func (r *Room) fireEventToPlayer(playerID uuid.UUID, ev RoomEvent) {
	if r.BroadcastToPlayerFn == nil {
		log.Printf("Warning: Room %s: BroadcastToPlayerFn is nil, cannot send event type %s.", r.ID, ev.Type)
		return
	}
	r.BroadcastToPlayerFn(playerID, ev)
}

// fireError sends a rejected-action notice to the offending player only.
// Assumes lock is held by caller.
func (r *Room) fireError(playerID uuid.UUID, err error) {
	r.fireEventToPlayer(playerID, RoomEvent{
		Type:    EventError,
		Payload: map[string]interface{}{"message": err.Error()},
	})
}

// fireErrorToSeat routes an engine rejection to whoever sits at the seat.
// Bot rejections only get logged; they indicate a room bug, not a client
// one. Assumes lock is held by caller.
func (r *Room) fireErrorToSeat(seat engine.Seat, err error) {
	p := r.Players[seat]
	if p == nil || p.IsBot {
		log.Printf("Room %s: Rejected action for seat %d: %v", r.ID, seat, err)
		return
	}
	r.fireError(p.ID, err)
}

// logAction sends action details to the historian service via the Redis
// queue. Increments the internal action index for ordering. Assumes lock is
// held by caller.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.DealActionRecord{
		RoomID:        r.ID,
		ActionIndex:   r.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	go func(rec cache.DealActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishDealAction(ctx, rec); err != nil {
			log.Printf("Error: Room %s: Failed publishing action %d ('%s') to Redis: %v", r.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

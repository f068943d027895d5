// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil when the historian is disabled; rooms
// check before publishing.
var Rdb *redis.Client

// actionQueueKey is the list the historian consumer drains.
const actionQueueKey = "ddz:action_queue"

// Init connects the shared client. An empty addr leaves Rdb nil (historian
// disabled).
func Init(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// DealActionRecord is one room action queued for the historian: every bid,
// play, pass, timeout, and lifecycle event, in order.
type DealActionRecord struct {
	RoomID        uuid.UUID              `json:"roomId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorID       uuid.UUID              `json:"actorId"` // Nil for room-level events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

// PublishDealAction pushes one record onto the historian queue.
func PublishDealAction(ctx context.Context, rec DealActionRecord) error {
	if Rdb == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal action %d: %w", rec.ActionIndex, err)
	}
	if err := Rdb.LPush(ctx, actionQueueKey, raw).Err(); err != nil {
		return fmt.Errorf("cache: push action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

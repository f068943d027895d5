// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when persistence is disabled; rooms
// check before writing.
var DB *pgxpool.Pool

// Connect opens the pool and ensures the schema exists. An empty dsn leaves
// DB nil (persistence disabled).
func Connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("database: ping: %w", err)
	}
	DB = pool
	return ensureSchema(ctx)
}

func ensureSchema(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deals (
			room_id      UUID NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			landlord     SMALLINT NOT NULL,
			winner       SMALLINT NOT NULL,
			landlord_won BOOLEAN NOT NULL,
			aborted      BOOLEAN NOT NULL,
			multiplier   INTEGER NOT NULL,
			snapshot     JSONB NOT NULL,
			PRIMARY KEY (room_id, finished_at)
		)`)
	if err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return nil
}

// DealResult is the persisted summary of one finished deal.
type DealResult struct {
	RoomID     uuid.UUID   `json:"roomId"`
	Landlord   int         `json:"landlord"`
	Winner     int         `json:"winner"` // -1 on abort.
	LandlordWon bool       `json:"landlordWon"`
	Aborted    bool        `json:"aborted"`
	Multiplier uint32      `json:"multiplier"`
	Snapshot   interface{} `json:"snapshot"` // Final per-seat hands and play history.
}

// StoreDealResult writes one finished deal. Intended to run asynchronously;
// failures are logged, never surfaced to the room.
func StoreDealResult(ctx context.Context, res DealResult) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(res.Snapshot)
	if err != nil {
		logrus.WithError(err).WithField("room", res.RoomID).Error("database: marshal deal snapshot")
		return
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO deals (room_id, landlord, winner, landlord_won, aborted, multiplier, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.RoomID, res.Landlord, res.Winner, res.LandlordWon, res.Aborted, res.Multiplier, raw)
	if err != nil {
		logrus.WithError(err).WithField("room", res.RoomID).Error("database: store deal result")
	}
}

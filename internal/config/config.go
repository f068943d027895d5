// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting the server reads from the environment.
type Config struct {
	ListenAddr  string // host:port for the websocket server.
	JWTSecret   string // HMAC secret for join tokens.
	DatabaseURL string // Postgres DSN; empty disables persistence.
	RedisAddr   string // Redis host:port; empty disables the action historian.

	TurnTimerSec  int  // Per-turn timeout; 0 disables the timer.
	SoloFillBots  bool // Fill empty seats with AI when a client requests solo.
	BotThinkMinMS int  // Lower bound of the AI thinking delay.
	BotThinkMaxMS int  // Upper bound of the AI thinking delay.
}

// Load reads .env (if present) and the process environment into a Config.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("config: failed to read .env file")
	}

	return Config{
		ListenAddr:    getString("LISTEN_ADDR", ":8080"),
		JWTSecret:     getString("JWT_SECRET", ""),
		DatabaseURL:   getString("DATABASE_URL", ""),
		RedisAddr:     getString("REDIS_ADDR", ""),
		TurnTimerSec:  getInt("TURN_TIMER_SEC", 30),
		SoloFillBots:  getBool("SOLO_FILL_BOTS", true),
		BotThinkMinMS: getInt("BOT_THINK_MIN_MS", 600),
		BotThinkMaxMS: getInt("BOT_THINK_MAX_MS", 1800),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warnf("config: bad integer, using default %d", def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warnf("config: bad boolean, using default %v", def)
		return def
	}
	return b
}

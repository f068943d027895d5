// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qiuyin/doudizhu/internal/cache"
	"github.com/qiuyin/doudizhu/internal/config"
	"github.com/qiuyin/doudizhu/internal/database"
	"github.com/qiuyin/doudizhu/internal/server"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	ctx := context.Background()

	if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if database.DB == nil {
		logrus.Warn("DATABASE_URL not set; deal persistence disabled")
	}

	if err := cache.Init(ctx, cfg.RedisAddr); err != nil {
		logrus.WithError(err).Fatal("redis connection failed")
	}
	if cache.Rdb == nil {
		logrus.Warn("REDIS_ADDR not set; action historian disabled")
	}

	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET not set; running open (guest identities)")
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(cfg).Handler(),
	}

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
	if database.DB != nil {
		database.DB.Close()
	}
	if cache.Rdb != nil {
		_ = cache.Rdb.Close()
	}
}

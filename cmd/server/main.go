package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veridoc/internal/auth"
	sessionstore "veridoc/internal/auth/store/session"
	"veridoc/internal/console"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	"veridoc/internal/platform/metrics"
	platformredis "veridoc/internal/platform/redis"
	"veridoc/internal/session"
	httpapi "veridoc/internal/transport/http"
	"veridoc/internal/upstream"
	"veridoc/internal/verify"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var store sessionstore.Store = sessionstore.NewInMemoryStore()
	if redisClient != nil {
		store = sessionstore.NewRedisStore(redisClient.Client)
		log.Info("session store backed by redis")
	}

	m := metrics.New()
	client := upstream.New(cfg.UpstreamBaseURL, &http.Client{Timeout: cfg.UpstreamTimeout})

	factory := func(authCtx *auth.Context) *verify.Service {
		return verify.New(client, authCtx, log, m)
	}
	sessions := session.NewManager(store, cfg.SessionTTL, factory, log)
	consoleSvc := console.New(client, log, m)

	var health func(ctx context.Context) error
	if redisClient != nil {
		health = redisClient.Health
	}

	handler := httpapi.NewHandler(sessions, consoleSvc, log, health)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler))

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

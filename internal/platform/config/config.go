package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr            string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	SessionTTL      time.Duration
	RedisURL        string
}

// FromEnv builds a Server config from environment variables. The upstream URL
// is the only hard requirement; everything else has a dev-friendly default.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            envOr("VERIDOC_ADDR", ":8080"),
		UpstreamBaseURL: os.Getenv("VERIDOC_UPSTREAM_URL"),
		UpstreamTimeout: envDuration("VERIDOC_UPSTREAM_TIMEOUT", 30*time.Second),
		SessionTTL:      envDuration("VERIDOC_SESSION_TTL", 30*time.Minute),
		RedisURL:        os.Getenv("VERIDOC_REDIS_URL"),
	}

	if cfg.UpstreamBaseURL == "" {
		return Server{}, fmt.Errorf("VERIDOC_UPSTREAM_URL is required")
	}
	if !govalidator.IsURL(cfg.UpstreamBaseURL) {
		return Server{}, fmt.Errorf("VERIDOC_UPSTREAM_URL %q is not a valid URL", cfg.UpstreamBaseURL)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

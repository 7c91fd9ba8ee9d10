package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresDSN selects the durable submission store when set; the
	// in-memory store is used otherwise.
	PostgresDSN string

	// RedisURL enables the cross-instance broadcast bridge when set.
	RedisURL string

	// HeartbeatInterval is how often the hub pings each channel; a channel
	// that misses a pong within the read deadline is unsubscribed.
	HeartbeatInterval time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FIELDCHECK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	heartbeat := 30 * time.Second
	if raw := os.Getenv("FIELDCHECK_HEARTBEAT_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			heartbeat = parsed
		}
	}

	return Server{
		Addr:              addr,
		PostgresDSN:       os.Getenv("FIELDCHECK_POSTGRES_DSN"),
		RedisURL:          os.Getenv("FIELDCHECK_REDIS_URL"),
		HeartbeatInterval: heartbeat,
		ShutdownTimeout:   10 * time.Second,
	}
}

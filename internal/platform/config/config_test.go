package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"FIELDCHECK_ADDR", "FIELDCHECK_POSTGRES_DSN", "FIELDCHECK_REDIS_URL", "FIELDCHECK_HEARTBEAT_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FIELDCHECK_ADDR", ":9090")
	t.Setenv("FIELDCHECK_POSTGRES_DSN", "postgres://u:p@localhost/fieldcheck?sslmode=disable")
	t.Setenv("FIELDCHECK_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FIELDCHECK_HEARTBEAT_INTERVAL", "5s")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://u:p@localhost/fieldcheck?sslmode=disable", cfg.PostgresDSN)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
}

func TestFromEnv_BadHeartbeatFallsBack(t *testing.T) {
	for _, raw := range []string{"nonsense", "-5s", "0"} {
		t.Setenv("FIELDCHECK_HEARTBEAT_INTERVAL", raw)
		assert.Equal(t, 30*time.Second, FromEnv().HeartbeatInterval, "raw %q", raw)
	}
}

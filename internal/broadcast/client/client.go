// Package client implements the applicant/reviewer side of a session channel:
// a WebSocket connection that reconnects with exponential backoff and hands
// decoded events to its owner.
package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"fieldcheck/internal/broadcast"
	"fieldcheck/pkg/domain"
)

// Reconnect policy: first retry after 1s, then ×1.8 per consecutive failure,
// capped at 10s, reset to 1s on every successful open. Bounds reconnection
// storms while keeping recovery latency low initially.
const (
	defaultInitialBackoff = 1000 * time.Millisecond
	defaultMaxBackoff     = 10000 * time.Millisecond
	defaultMultiplier     = 1.8
)

// Config configures a channel. Zero values fall back to the defaults above.
type Config struct {
	// URL of the channel endpoint, e.g. ws://host:8080/ws.
	URL string

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	// OnEvent receives every decoded frame. Required.
	OnEvent func(broadcast.Event)

	// OnConnectionChange, when set, reports transitions between connected
	// and reconnecting. Never treat a disconnect as fatal; the channel
	// recovers on its own.
	OnConnectionChange func(connected bool)
}

func (c Config) withDefaults() Config {
	out := c
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = defaultInitialBackoff
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = defaultMaxBackoff
	}
	if out.Multiplier <= 1 {
		out.Multiplier = defaultMultiplier
	}
	return out
}

// Channel is one long-lived client connection with automatic reconnect.
type Channel struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer
}

func New(cfg Config, logger *slog.Logger) *Channel {
	return &Channel{
		cfg:    cfg.withDefaults(),
		logger: logger,
		dialer: websocket.DefaultDialer,
	}
}

// Run connects and keeps the channel alive until ctx is cancelled. Every
// unexpected close triggers a reconnect after the current backoff delay; the
// delay timer itself is cancelled by ctx, so teardown leaves no dangling
// reconnect loop. The only returned error is ctx.Err().
func (c *Channel) Run(ctx context.Context) error {
	backoff := c.cfg.InitialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			c.logger.Debug("channel dial failed", "url", c.cfg.URL, "error", err)
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = nextDelay(backoff, c.cfg)
			continue
		}

		backoff = c.cfg.InitialBackoff
		c.notifyConnection(true)

		c.readLoop(ctx, conn)
		_ = conn.Close()
		c.notifyConnection(false)

		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff = nextDelay(backoff, c.cfg)
	}
}

// readLoop consumes frames until the connection dies or ctx is cancelled.
// Malformed frames are logged and swallowed; a channel never dies on a bad
// frame.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the pending read when the owner tears the channel down.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := broadcast.Decode(data)
		if err != nil {
			c.logger.Warn("ignoring malformed frame", "error", err)
			continue
		}
		c.cfg.OnEvent(ev)
	}
}

func (c *Channel) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Channel) notifyConnection(connected bool) {
	if c.cfg.OnConnectionChange != nil {
		c.cfg.OnConnectionChange(connected)
	}
}

// nextDelay advances the backoff: multiply, cap at the maximum.
func nextDelay(current time.Duration, cfg Config) time.Duration {
	next := time.Duration(float64(current) * cfg.Multiplier)
	if next > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return next
}

// SubmissionFilter wraps an event callback so it only sees decision events
// for one tracked submission. Filtering is the channel owner's concern: the
// hub sends every event to every channel.
func SubmissionFilter(id domain.SubmissionID, next func(broadcast.Event)) func(broadcast.Event) {
	return func(ev broadcast.Event) {
		if ev.Type != broadcast.EventSubmissionVerified && ev.Type != broadcast.EventSubmissionRejected {
			return
		}
		payload, ok := ev.Payload.(broadcast.StatusPayload)
		if !ok || payload.ID != id {
			return
		}
		next(ev)
	}
}

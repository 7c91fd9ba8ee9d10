package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel the bridge uses unless
// configured otherwise.
const DefaultRedisChannel = "fieldcheck.events"

// RedisBridge fans events out across service instances. Publish goes through
// Redis pub/sub; every instance (including the publisher's own) receives the
// frame in its Run loop and forwards it to its local hub. Delivery stays
// at-most-once: Redis pub/sub holds nothing for absent subscribers.
type RedisBridge struct {
	rdb     *redis.Client
	hub     *Hub
	logger  *slog.Logger
	channel string
}

func NewRedisBridge(rdb *redis.Client, hub *Hub, logger *slog.Logger, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBridge{rdb: rdb, hub: hub, logger: logger, channel: channel}
}

// Publish sends the event to the Redis channel. Local sessions receive it
// when the Run loop gets it back, same as sessions on every other instance.
func (b *RedisBridge) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the Redis channel and forwards frames into the local hub
// until the context is cancelled. Frames that fail to decode are logged and
// dropped; the loop never dies on a bad frame.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}
			ev, err := Decode([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping undecodable bridge frame", "error", err)
				continue
			}
			b.hub.PublishRaw([]byte(msg.Payload), ev.Type)
		}
	}
}

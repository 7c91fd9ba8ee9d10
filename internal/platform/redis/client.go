package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fieldcheck/pkg/platform/sentinel"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from a URL.
// Returns nil if the URL is empty (Redis not configured).
func New(url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", sentinel.ErrUnavailable, err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy. Failures wrap
// sentinel.ErrUnavailable so callers can classify them without inspecting
// go-redis error strings.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

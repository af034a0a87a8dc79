// Package mredis wraps a redis connection, grounded on the teacher's
// common/mredis.
package mredis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// Connection is a hub dealing with the redis connection used by the rate
// limiter.
type Connection struct {
	Addr      string
	Password  string
	DB        int
	Logger    mlog.Logger
	Client    *redis.Client
	Connected bool
}

// Connect opens the client and confirms liveness with a PING.
func (c *Connection) Connect(ctx context.Context) error {
	c.Logger.Info("connecting to redis...")

	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	c.Client = client
	c.Connected = true

	c.Logger.Info("connected to redis")

	return nil
}

// GetClient returns the client, connecting lazily if needed.
func (c *Connection) GetClient(ctx context.Context) (*redis.Client, error) {
	if c.Client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.Client, nil
}

// Close releases the connection.
func (c *Connection) Close() error {
	if c.Client == nil {
		return nil
	}

	return c.Client.Close()
}

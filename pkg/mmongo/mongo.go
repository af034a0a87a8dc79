// Package mmongo wraps a mongo connection used by the attempt metadata
// store, following the same Connect/GetClient shape as mpostgres/mredis.
package mmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// Connection is a hub dealing with the mongo connection.
type Connection struct {
	URI        string
	Database   string
	Logger     mlog.Logger
	client     *mongo.Client
	Connected  bool
}

// Connect opens the client and confirms liveness.
func (c *Connection) Connect(ctx context.Context) error {
	c.Logger.Info("connecting to mongo...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	c.client = client
	c.Connected = true

	c.Logger.Info("connected to mongo")

	return nil
}

// DB returns the configured database handle, connecting lazily.
func (c *Connection) DB(ctx context.Context) (*mongo.Database, error) {
	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client.Database(c.Database), nil
}

// Close disconnects the client.
func (c *Connection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	return c.client.Disconnect(ctx)
}

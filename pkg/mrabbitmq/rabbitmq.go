// Package mrabbitmq wraps a RabbitMQ connection and channel, used by the
// withdrawal.completed event publisher.
package mrabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// Connection is a hub dealing with the rabbitmq connection and channel.
type Connection struct {
	URI      string
	Exchange string
	Logger   mlog.Logger

	conn      *amqp.Connection
	channel   *amqp.Channel
	Connected bool
}

// Connect opens the connection and channel, and declares the topic
// exchange events are published to.
func (c *Connection) Connect() error {
	c.Logger.Info("connecting to rabbitmq...")

	conn, err := amqp.Dial(c.URI)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = ch
	c.Connected = true

	c.Logger.Info("connected to rabbitmq")

	return nil
}

// GetChannel returns the channel, connecting lazily if needed.
func (c *Connection) GetChannel() (*amqp.Channel, error) {
	if c.channel == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return c.channel, nil
}

// Close releases the channel and connection.
func (c *Connection) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

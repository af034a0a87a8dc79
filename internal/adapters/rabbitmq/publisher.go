// Package rabbitmq publishes the withdrawal.completed event described in
// SPEC_FULL.md §4.7 for the external balance-mutation system to consume.
package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mlog"
	"github.com/cashbridge/tokenvault/pkg/mrabbitmq"
)

const routingKeyWithdrawalCompleted = "withdrawal.completed"

// eventBody is the wire shape of WithdrawalCompleted.
type eventBody struct {
	TokenID       string    `json:"tokenId"`
	AccountID     string    `json:"accountId"`
	TransactionID string    `json:"transactionId"`
	Amount        int64     `json:"amount"`
	RedeemedAt    time.Time `json:"redeemedAt"`
}

// Publisher implements ports.EventPublisher over a RabbitMQ topic exchange.
type Publisher struct {
	conn   *mrabbitmq.Connection
	logger mlog.Logger
}

// New returns a Publisher bound to conn.
func New(conn *mrabbitmq.Connection, logger mlog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// PublishWithdrawalCompleted publishes event after a successful redemption
// commit. Per SPEC_FULL.md §4.7 this is an at-least-once notification, not
// a 2PC participant: a publish failure is logged at ERROR and never rolls
// back or fails the already-committed redemption.
func (p *Publisher) PublishWithdrawalCompleted(ctx context.Context, event ports.WithdrawalCompleted) error {
	channel, err := p.conn.GetChannel()
	if err != nil {
		p.logger.Errorf("withdrawal.completed publish: get channel: %v", err)
		return nil
	}

	body, err := json.Marshal(eventBody{
		TokenID:       event.TokenID.String(),
		AccountID:     event.AccountID.String(),
		TransactionID: event.TransactionID.String(),
		Amount:        event.Amount,
		RedeemedAt:    event.RedeemedAt,
	})
	if err != nil {
		p.logger.Errorf("withdrawal.completed publish: marshal: %v", err)
		return nil
	}

	err = channel.PublishWithContext(ctx, p.conn.Exchange, routingKeyWithdrawalCompleted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.logger.Errorf("withdrawal.completed publish: %v", err)
		return nil
	}

	return nil
}

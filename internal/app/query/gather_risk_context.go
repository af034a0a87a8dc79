// Package query holds read-only use cases that never mutate token,
// ledger, or attempt state: the Risk Context Gatherer of spec.md §4.4.
package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashbridge/tokenvault/internal/domain/risk"
	"github.com/cashbridge/tokenvault/internal/ports"
)

const (
	velocityWindow = 10 * time.Minute
	failureWindow  = 24 * time.Hour
)

// RiskContextGatherer assembles a risk.Context snapshot from historical
// signals, per spec.md §4.4. It never locks rows and is not required to be
// transactionally consistent with the redeem transaction that follows it.
type RiskContextGatherer struct {
	Tokens   ports.TokenRepository
	Ledger   ports.LedgerRepository
	Attempts ports.AttemptRepository
}

// Gather produces the context for accountId evaluating a redemption of
// currentAmount from currentIP.
func (g *RiskContextGatherer) Gather(ctx context.Context, accountID uuid.UUID, currentAmount float64, currentIP string) (risk.Context, error) {
	now := time.Now().UTC()

	velocity, err := g.Tokens.CountCreatedSince(ctx, accountID, now.Add(-velocityWindow))
	if err != nil {
		return risk.Context{}, err
	}

	avgAmount, _, err := g.Ledger.AverageSuccessfulAmount(ctx, accountID)
	if err != nil {
		return risk.Context{}, err
	}

	failed, err := g.Attempts.CountFailedSince(ctx, accountID, now.Add(-failureWindow))
	if err != nil {
		return risk.Context{}, err
	}

	lastIP, _, err := g.Attempts.LastSuccessfulIP(ctx, accountID)
	if err != nil {
		return risk.Context{}, err
	}

	return risk.Context{
		Velocity10m:       velocity,
		AvgAmount:         avgAmount,
		FailedAttempts24h: failed,
		LastIP:            lastIP,
		CurrentAmount:     currentAmount,
		CurrentIP:         currentIP,
	}, nil
}

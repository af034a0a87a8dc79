// Package attempt holds the redemption evidence entity.
package attempt

import (
	"time"

	"github.com/google/uuid"
)

// Result enumerates every terminal outcome a redemption attempt can record.
// EXPIRED and USED are kept distinct here for forensics even though the
// HTTP boundary fuses them into a single EXPIRED_OR_USED response (see
// DESIGN.md, Open Question 1).
type Result string

const (
	ResultSuccess        Result = "SUCCESS"
	ResultInvalid        Result = "INVALID"
	ResultUsed           Result = "USED"
	ResultExpired        Result = "EXPIRED"
	ResultRejectedByRisk Result = "REJECTED_BY_RISK"
	ResultChallenged     Result = "CHALLENGED"
)

// Attempt is an immutable evidence row: every terminal redemption outcome
// writes exactly one of these, never updated afterward.
type Attempt struct {
	ID        uuid.UUID
	TokenID   *uuid.UUID // nil when no stored token matched the presented one
	AgentID   string
	Result    Result
	Reasons   []string
	Metadata  map[string]any
	CreatedAt time.Time
}

// New builds an Attempt ready for persistence.
func New(id uuid.UUID, tokenID *uuid.UUID, agentID string, result Result, reasons []string, metadata map[string]any, at time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		TokenID:   tokenID,
		AgentID:   agentID,
		Result:    result,
		Reasons:   reasons,
		Metadata:  metadata,
		CreatedAt: at,
	}
}

package command

import (
	"context"

	"github.com/cashbridge/tokenvault/internal/app/query"
	domainattempt "github.com/cashbridge/tokenvault/internal/domain/attempt"
	"github.com/cashbridge/tokenvault/internal/domain/risk"
	"github.com/cashbridge/tokenvault/pkg/apperr"
	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// RedeemOrchestrator sits between Match and RedeemMatched, running the Risk
// Engine evaluation spec.md §4.2.2 describes as belonging to "outer layers"
// rather than to the redeem transaction itself.
type RedeemOrchestrator struct {
	Redeem  *RedeemUseCase
	Context *query.RiskContextGatherer
	Logger  mlog.Logger
}

// Handle runs the full mint-agnostic redeem flow: match, gather risk
// context, decide, and either stop with an attempt row recording the
// decision or proceed to the transactional redeem.
func (o *RedeemOrchestrator) Handle(ctx context.Context, in RedeemInput, currentIP string) (*RedeemResult, error) {
	matched, err := o.Redeem.Match(ctx, in)
	if err != nil {
		return nil, err
	}

	riskCtx, err := o.Context.Gather(ctx, matched.AccountID, float64(matched.Amount), currentIP)
	if err != nil {
		return nil, apperr.ValidateInternalError(err)
	}

	verdict := risk.Evaluate(riskCtx)

	switch verdict.Decision {
	case risk.DecisionReject:
		o.Logger.Security("redemption rejected by risk", "reasons", verdict.Reasons)
		o.Redeem.RecordRiskOutcome(ctx, matched, in, domainattempt.ResultRejectedByRisk, verdict.Reasons)

		return nil, apperr.ValidateBusinessError(apperr.ErrRiskRejected, "token", verdict.Reasons)
	case risk.DecisionChallenge:
		o.Logger.Security("redemption challenged by risk", "reasons", verdict.Reasons)
		o.Redeem.RecordRiskOutcome(ctx, matched, in, domainattempt.ResultChallenged, verdict.Reasons)

		return nil, apperr.ValidateBusinessError(apperr.ErrRiskChallenged, "token", verdict.Reasons)
	}

	return o.Redeem.RedeemMatched(ctx, matched, in)
}

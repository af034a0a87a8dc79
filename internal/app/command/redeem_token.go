package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainattempt "github.com/cashbridge/tokenvault/internal/domain/attempt"
	domainledger "github.com/cashbridge/tokenvault/internal/domain/ledger"
	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
	"github.com/cashbridge/tokenvault/pkg/mlog"
)

// RedeemOutcome is the fused, protocol-level result vocabulary spec.md §9
// adopts at the boundary. The underlying attempt row keeps the finer-grained
// forensic result (see internal/domain/attempt.Result).
type RedeemOutcome string

const (
	OutcomeSuccess       RedeemOutcome = "SUCCESS"
	OutcomeInvalid       RedeemOutcome = "INVALID"
	OutcomeExpiredOrUsed RedeemOutcome = "EXPIRED_OR_USED"
)

// errTokenAlreadyUsed and errTokenAlreadyExpired distinguish, inside the
// redeem transaction, which terminal state stopped the redemption. Both
// still surface to the caller as the single apperr.ErrTokenUsedOrExpired
// sentinel; the distinction only decides which attempt.Result gets recorded.
var (
	errTokenAlreadyUsed    = errors.New("token already used")
	errTokenAlreadyExpired = errors.New("token already expired")
)

// RedeemUseCase implements redeem from spec.md §4.2.2.
type RedeemUseCase struct {
	Tokens     ports.TokenRepository
	Ledger     ports.LedgerRepository
	Attempts   ports.AttemptRepository
	Metadata   ports.MetadataRepository
	Events     ports.EventPublisher
	UnitOfWork ports.UnitOfWork
	Pepper     string
	Logger     mlog.Logger
}

// RedeemInput is the validated request to redeem a token.
type RedeemInput struct {
	FullToken string
	AgentID   string
	Metadata  map[string]any
}

// RedeemResult is returned on SUCCESS.
type RedeemResult struct {
	Outcome       RedeemOutcome
	TokenID       uuid.UUID
	TransactionID uuid.UUID
	attemptID     uuid.UUID
}

// Match runs spec.md §4.2.2 steps 1–3: parse, candidate scan by prefix, and
// constant-time hash comparison. It performs no mutation. A caller that
// wants risk evaluation between matching and the transactional redeem (the
// "outer layers" spec.md §4.2.2 describes REJECTED_BY_RISK/CHALLENGED as
// belonging to) should call Match, run its own risk decision, and only then
// call RedeemMatched. On a failed match it records the INVALID attempt
// itself, since there is no matched token for a later caller to attach it to.
func (uc *RedeemUseCase) Match(ctx context.Context, in RedeemInput) (*domaintoken.Token, error) {
	prefix, _, ok := domaintoken.ParseFull(in.FullToken)
	if !ok {
		return nil, apperr.ValidateBusinessError(apperr.ErrTokenMalformed, "token")
	}

	now := time.Now().UTC()

	candidates, err := uc.Tokens.FindActiveCandidatesByPrefix(ctx, prefix, now)
	if err != nil {
		return nil, apperr.ValidateInternalError(err)
	}

	for _, c := range candidates {
		if domaintoken.Verify(uc.Pepper, in.FullToken, c.Salt, c.TokenHash) {
			return c, nil
		}
	}

	uc.recordAttempt(ctx, nil, in, domainattempt.ResultInvalid)

	return nil, apperr.ValidateBusinessError(apperr.ErrTokenNotFound, "token")
}

// Redeem matches fullToken and, if found, immediately redeems it with no
// risk evaluation in between. Used directly by callers that do not need a
// risk decision gate (and by tests); the HTTP edge instead goes through
// RedeemOrchestrator, which calls Match, evaluates risk, and then calls
// RedeemMatched.
func (uc *RedeemUseCase) Redeem(ctx context.Context, in RedeemInput) (*RedeemResult, error) {
	matched, err := uc.Match(ctx, in)
	if err != nil {
		return nil, err
	}

	return uc.RedeemMatched(ctx, matched, in)
}

// RedeemMatched runs spec.md §4.2.2 steps 4–8 against an already-matched
// token, inside a single transaction at isolation ≥ REPEATABLE READ.
func (uc *RedeemUseCase) RedeemMatched(ctx context.Context, matched *domaintoken.Token, in RedeemInput) (*RedeemResult, error) {
	var result *RedeemResult

	txErr := uc.UnitOfWork.WithinTx(ctx, func(tx ports.Tx) error {
		locked, err := uc.Tokens.LockForRedemption(ctx, tx, matched.ID)
		if err != nil {
			return err
		}

		if locked == nil {
			return errTokenAlreadyUsed
		}

		redeemNow := time.Now().UTC()

		if !locked.IsRedeemable(redeemNow) {
			if locked.Status == domaintoken.StatusActive {
				_ = uc.Tokens.MarkExpired(ctx, tx, locked.ID)
				return errTokenAlreadyExpired
			}

			if locked.Status == domaintoken.StatusExpired {
				return errTokenAlreadyExpired
			}

			return errTokenAlreadyUsed
		}

		affected, err := uc.Tokens.MarkUsedIfActive(ctx, tx, locked.ID, redeemNow)
		if err != nil {
			return err
		}

		if affected == 0 {
			return errTokenAlreadyUsed
		}

		txnID := uuid.New()
		txn := domainledger.NewWithdrawal(txnID, locked.AccountID, locked.ID, locked.Amount, redeemNow)

		if err := uc.Ledger.Insert(ctx, tx, txn); err != nil {
			return err
		}

		a := domainattempt.New(uuid.New(), &locked.ID, in.AgentID, domainattempt.ResultSuccess, nil, in.Metadata, redeemNow)
		if err := uc.Attempts.Insert(ctx, tx, a); err != nil {
			return err
		}

		result = &RedeemResult{
			Outcome:       OutcomeSuccess,
			TokenID:       locked.ID,
			TransactionID: txnID,
			attemptID:     a.ID,
		}

		return nil
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, errTokenAlreadyExpired):
			uc.recordAttempt(ctx, &matched.ID, in, domainattempt.ResultExpired)
			return nil, apperr.ValidateBusinessError(apperr.ErrTokenUsedOrExpired, "token")
		case errors.Is(txErr, errTokenAlreadyUsed):
			uc.recordAttempt(ctx, &matched.ID, in, domainattempt.ResultUsed)
			return nil, apperr.ValidateBusinessError(apperr.ErrTokenUsedOrExpired, "token")
		default:
			return nil, apperr.ValidateInternalError(txErr)
		}
	}

	uc.saveMetadataFor(ctx, result.attemptID, in.Metadata)
	uc.publishEvent(ctx, matched, result)
	uc.Logger.Business("redemption succeeded", "tokenId", result.TokenID.String())

	return result, nil
}

// RecordRiskOutcome writes a standalone attempt row for a token that matched
// but was stopped by the risk engine before the transactional redeem ran.
func (uc *RedeemUseCase) RecordRiskOutcome(ctx context.Context, matched *domaintoken.Token, in RedeemInput, result domainattempt.Result, reasons []string) {
	a := domainattempt.New(uuid.New(), &matched.ID, in.AgentID, result, reasons, in.Metadata, time.Now().UTC())

	if err := uc.Attempts.Insert(ctx, nil, a); err != nil {
		uc.Logger.Errorf("failed to record attempt: %v", err)
	}

	uc.saveMetadataFor(ctx, a.ID, in.Metadata)
}

// recordAttempt writes a standalone (non-transactional) attempt row for
// outcomes that do not commit a redemption: unmatched hashes and
// terminal-state observations. Malformed tokens are rejected by Match
// before any attempt is recorded.
func (uc *RedeemUseCase) recordAttempt(ctx context.Context, tokenID *uuid.UUID, in RedeemInput, result domainattempt.Result) {
	a := domainattempt.New(uuid.New(), tokenID, in.AgentID, result, nil, in.Metadata, time.Now().UTC())

	if err := uc.Attempts.Insert(ctx, nil, a); err != nil {
		uc.Logger.Errorf("failed to record attempt: %v", err)
	}

	uc.saveMetadataFor(ctx, a.ID, in.Metadata)
}

func (uc *RedeemUseCase) saveMetadataFor(ctx context.Context, attemptID uuid.UUID, metadata map[string]any) {
	if uc.Metadata == nil {
		return
	}

	if err := uc.Metadata.SaveAttemptMetadata(ctx, attemptID, metadata); err != nil {
		uc.Logger.Errorf("failed to save attempt metadata: %v", err)
	}
}

func (uc *RedeemUseCase) publishEvent(ctx context.Context, matched *domaintoken.Token, result *RedeemResult) {
	if uc.Events == nil {
		return
	}

	event := ports.WithdrawalCompleted{
		TokenID:       result.TokenID,
		AccountID:     matched.AccountID,
		TransactionID: result.TransactionID,
		Amount:        matched.Amount,
		RedeemedAt:    time.Now().UTC(),
	}

	if err := uc.Events.PublishWithdrawalCompleted(ctx, event); err != nil {
		uc.Logger.Errorf("failed to publish withdrawal.completed: %v", err)
	}
}

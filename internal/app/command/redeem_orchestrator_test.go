package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cashbridge/tokenvault/internal/app/query"
	domainattempt "github.com/cashbridge/tokenvault/internal/domain/attempt"
	domainledger "github.com/cashbridge/tokenvault/internal/domain/ledger"
	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
)

type riskFixtureLedger struct {
	avg float64
	ok  bool
}

func (f *riskFixtureLedger) Insert(ctx context.Context, tx ports.Tx, txn *domainledger.Transaction) error {
	return nil
}

func (f *riskFixtureLedger) AverageSuccessfulAmount(ctx context.Context, accountID uuid.UUID) (float64, bool, error) {
	return f.avg, f.ok, nil
}

type riskFixtureAttempts struct {
	failed int
	lastIP string
	hasIP  bool
}

func (f *riskFixtureAttempts) Insert(ctx context.Context, tx ports.Tx, a *domainattempt.Attempt) error {
	return nil
}

func (f *riskFixtureAttempts) CountFailedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return f.failed, nil
}

func (f *riskFixtureAttempts) LastSuccessfulIP(ctx context.Context, accountID uuid.UUID) (string, bool, error) {
	return f.lastIP, f.hasIP, nil
}

func matchableTokenFixture(t *testing.T, full, prefix string) *domaintoken.Token {
	salt, err := domaintoken.DrawSalt()
	assert.NoError(t, err)

	tok := activeTokenFixture()
	tok.Salt = salt
	tok.Prefix = prefix
	tok.TokenHash = domaintoken.Hash("pepper", full, salt)

	return tok
}

func TestOrchestratorRejectsHighRiskRedemption(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := matchableTokenFixture(t, "ABCD-EFGH1234", "ABCD")

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "ABCD", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().CountCreatedSince(gomock.Any(), tok.AccountID, gomock.Any()).Return(5, nil)

	attempts := &fakeAttempts{}

	redeem := &RedeemUseCase{Tokens: tokens, Attempts: attempts, Pepper: "pepper", Logger: testLogger{}}
	gatherer := &query.RiskContextGatherer{
		Tokens:   tokens,
		Ledger:   &riskFixtureLedger{avg: 100, ok: true},
		Attempts: &riskFixtureAttempts{failed: 8, lastIP: "10.0.0.1", hasIP: true},
	}

	orchestrator := &RedeemOrchestrator{Redeem: redeem, Context: gatherer, Logger: testLogger{}}

	_, err := orchestrator.Handle(context.Background(), RedeemInput{FullToken: "ABCD-EFGH1234", AgentID: "agent-1"}, "10.0.0.2")

	assert.IsType(t, apperr.ForbiddenError{}, err)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultRejectedByRisk, attempts.inserted[0].Result)
}

func TestOrchestratorChallengesMediumRiskRedemption(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := matchableTokenFixture(t, "WXYZ-1234ABCD", "WXYZ")

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "WXYZ", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().CountCreatedSince(gomock.Any(), tok.AccountID, gomock.Any()).Return(0, nil)

	attempts := &fakeAttempts{}

	redeem := &RedeemUseCase{Tokens: tokens, Attempts: attempts, Pepper: "pepper", Logger: testLogger{}}
	gatherer := &query.RiskContextGatherer{
		Tokens:   tokens,
		Ledger:   &riskFixtureLedger{avg: 100, ok: true},
		Attempts: &riskFixtureAttempts{failed: 0, lastIP: "10.0.0.1", hasIP: true},
	}

	orchestrator := &RedeemOrchestrator{Redeem: redeem, Context: gatherer, Logger: testLogger{}}

	_, err := orchestrator.Handle(context.Background(), RedeemInput{FullToken: "WXYZ-1234ABCD", AgentID: "agent-1"}, "10.0.0.2")

	assert.IsType(t, apperr.ForbiddenError{}, err)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultChallenged, attempts.inserted[0].Result)
}

func TestOrchestratorProceedsToRedeemOnCleanContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := matchableTokenFixture(t, "CLEA-N1234567", "CLEA")

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "CLEA", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().CountCreatedSince(gomock.Any(), tok.AccountID, gomock.Any()).Return(0, nil)
	tokens.EXPECT().LockForRedemption(gomock.Any(), gomock.Any(), tok.ID).Return(tok, nil)
	tokens.EXPECT().MarkUsedIfActive(gomock.Any(), gomock.Any(), tok.ID, gomock.Any()).Return(int64(1), nil)

	redeem := &RedeemUseCase{
		Tokens:     tokens,
		Ledger:     &fakeLedger{},
		Attempts:   &fakeAttempts{},
		Metadata:   &fakeMetadata{},
		Events:     &fakeEvents{},
		UnitOfWork: fakeUnitOfWork{},
		Pepper:     "pepper",
		Logger:     testLogger{},
	}

	gatherer := &query.RiskContextGatherer{
		Tokens:   tokens,
		Ledger:   &riskFixtureLedger{avg: 0, ok: false},
		Attempts: &riskFixtureAttempts{failed: 0, lastIP: "", hasIP: false},
	}

	orchestrator := &RedeemOrchestrator{Redeem: redeem, Context: gatherer, Logger: testLogger{}}

	result, err := orchestrator.Handle(context.Background(), RedeemInput{FullToken: "CLEA-N1234567", AgentID: "agent-1"}, "10.0.0.2")

	assert.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
}

package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	domainattempt "github.com/cashbridge/tokenvault/internal/domain/attempt"
	domainledger "github.com/cashbridge/tokenvault/internal/domain/ledger"
	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
)

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	return fn(nil)
}

type fakeLedger struct {
	inserted []*domainledger.Transaction
	err      error
}

func (f *fakeLedger) Insert(ctx context.Context, tx ports.Tx, txn *domainledger.Transaction) error {
	if f.err != nil {
		return f.err
	}

	f.inserted = append(f.inserted, txn)

	return nil
}

func (f *fakeLedger) AverageSuccessfulAmount(ctx context.Context, accountID uuid.UUID) (float64, bool, error) {
	return 0, false, nil
}

type fakeAttempts struct {
	inserted []*domainattempt.Attempt
}

func (f *fakeAttempts) Insert(ctx context.Context, tx ports.Tx, a *domainattempt.Attempt) error {
	f.inserted = append(f.inserted, a)
	return nil
}

func (f *fakeAttempts) CountFailedSince(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	return 0, nil
}

func (f *fakeAttempts) LastSuccessfulIP(ctx context.Context, accountID uuid.UUID) (string, bool, error) {
	return "", false, nil
}

type fakeMetadata struct {
	saved int
}

func (f *fakeMetadata) SaveAttemptMetadata(ctx context.Context, attemptID uuid.UUID, metadata map[string]any) error {
	f.saved++
	return nil
}

type fakeEvents struct {
	published []ports.WithdrawalCompleted
}

func (f *fakeEvents) PublishWithdrawalCompleted(ctx context.Context, event ports.WithdrawalCompleted) error {
	f.published = append(f.published, event)
	return nil
}

func activeTokenFixture() *domaintoken.Token {
	return &domaintoken.Token{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Amount:    1000,
		Status:    domaintoken.StatusActive,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestRedeemMalformedTokenIsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := &RedeemUseCase{Tokens: ports.NewMockTokenRepository(ctrl), Pepper: "pepper", Logger: testLogger{}}

	_, err := uc.Redeem(context.Background(), RedeemInput{FullToken: "not-a-token", AgentID: "agent-1"})

	assert.IsType(t, apperr.ValidationError{}, err)
}

func TestRedeemNoMatchingCandidateRecordsInvalidAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	attempts := &fakeAttempts{}
	uc := &RedeemUseCase{Tokens: tokens, Attempts: attempts, Pepper: "pepper", Logger: testLogger{}}

	_, err := uc.Redeem(context.Background(), RedeemInput{FullToken: "ABCD-EFGH1234", AgentID: "agent-1"})

	assert.IsType(t, apperr.ValidationError{}, err)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultInvalid, attempts.inserted[0].Result)
	assert.Nil(t, attempts.inserted[0].TokenID)
}

func TestRedeemLockReturningNilIsUsedOrExpired(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := activeTokenFixture()
	salt, _ := domaintoken.DrawSalt()
	tok.Salt = salt
	tok.TokenHash = domaintoken.Hash("pepper", "ABCD-EFGH1234", salt)
	tok.Prefix = "ABCD"

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "ABCD", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().LockForRedemption(gomock.Any(), gomock.Any(), tok.ID).Return(nil, nil)

	attempts := &fakeAttempts{}
	uc := &RedeemUseCase{
		Tokens:     tokens,
		Attempts:   attempts,
		UnitOfWork: fakeUnitOfWork{},
		Pepper:     "pepper",
		Logger:     testLogger{},
	}

	_, err := uc.Redeem(context.Background(), RedeemInput{FullToken: "ABCD-EFGH1234", AgentID: "agent-1"})

	assert.IsType(t, apperr.EntityConflictError{}, err)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultUsed, attempts.inserted[0].Result)
}

func TestRedeemActivePastExpiryRecordsExpiredAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := activeTokenFixture()
	tok.ExpiresAt = time.Now().Add(-time.Minute)
	salt, _ := domaintoken.DrawSalt()
	tok.Salt = salt
	tok.TokenHash = domaintoken.Hash("pepper", "ABCD-EFGH1234", salt)
	tok.Prefix = "ABCD"

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "ABCD", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().LockForRedemption(gomock.Any(), gomock.Any(), tok.ID).Return(tok, nil)
	tokens.EXPECT().MarkExpired(gomock.Any(), gomock.Any(), tok.ID).Return(nil)

	attempts := &fakeAttempts{}
	uc := &RedeemUseCase{
		Tokens:     tokens,
		Attempts:   attempts,
		UnitOfWork: fakeUnitOfWork{},
		Pepper:     "pepper",
		Logger:     testLogger{},
	}

	_, err := uc.Redeem(context.Background(), RedeemInput{FullToken: "ABCD-EFGH1234", AgentID: "agent-1"})

	assert.IsType(t, apperr.EntityConflictError{}, err)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultExpired, attempts.inserted[0].Result)
}

func TestRedeemSuccessInsertsLedgerAttemptMetadataAndPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	tok := activeTokenFixture()
	salt, _ := domaintoken.DrawSalt()
	tok.Salt = salt
	tok.TokenHash = domaintoken.Hash("pepper", "ABCD-EFGH1234", salt)
	tok.Prefix = "ABCD"

	tokens := ports.NewMockTokenRepository(ctrl)
	tokens.EXPECT().FindActiveCandidatesByPrefix(gomock.Any(), "ABCD", gomock.Any()).Return([]*domaintoken.Token{tok}, nil)
	tokens.EXPECT().LockForRedemption(gomock.Any(), gomock.Any(), tok.ID).Return(tok, nil)
	tokens.EXPECT().MarkUsedIfActive(gomock.Any(), gomock.Any(), tok.ID, gomock.Any()).Return(int64(1), nil)

	ledger := &fakeLedger{}
	attempts := &fakeAttempts{}
	metadata := &fakeMetadata{}
	events := &fakeEvents{}

	uc := &RedeemUseCase{
		Tokens:     tokens,
		Ledger:     ledger,
		Attempts:   attempts,
		Metadata:   metadata,
		Events:     events,
		UnitOfWork: fakeUnitOfWork{},
		Pepper:     "pepper",
		Logger:     testLogger{},
	}

	result, err := uc.Redeem(context.Background(), RedeemInput{FullToken: "ABCD-EFGH1234", AgentID: "agent-1"})

	assert.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, tok.ID, result.TokenID)
	assert.Len(t, ledger.inserted, 1)
	assert.Len(t, attempts.inserted, 1)
	assert.Equal(t, domainattempt.ResultSuccess, attempts.inserted[0].Result)
	assert.Equal(t, 1, metadata.saved)
	assert.Len(t, events.published, 1)
	assert.Equal(t, tok.ID, events.published[0].TokenID)
}

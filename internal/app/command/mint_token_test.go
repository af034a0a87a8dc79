package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	domaintoken "github.com/cashbridge/tokenvault/internal/domain/token"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
)

func TestMintRejectsNonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := &MintUseCase{Tokens: ports.NewMockTokenRepository(ctrl), Pepper: "pepper", TTL: time.Minute, Logger: testLogger{}}

	_, err := uc.Mint(context.Background(), MintInput{AccountID: uuid.New(), Amount: 0})

	assert.Error(t, err)
	assert.IsType(t, apperr.ValidationError{}, err)
}

func TestMintSuccessReturnsPlaintextOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockTokenRepository(ctrl)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	uc := &MintUseCase{Tokens: repo, Pepper: "pepper", TTL: time.Minute, Logger: testLogger{}}

	out, err := uc.Mint(context.Background(), MintInput{AccountID: uuid.New(), Amount: 5000})

	assert.NoError(t, err)
	assert.True(t, domaintoken.Pattern.MatchString(out.Plaintext))
	assert.Equal(t, int64(5000), out.Amount)
	assert.True(t, out.ExpiresAt.After(time.Now()))
}

func TestMintRetriesOnHashCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockTokenRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(ports.ErrDuplicateTokenHash),
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
	)

	uc := &MintUseCase{Tokens: repo, Pepper: "pepper", TTL: time.Minute, Logger: testLogger{}}

	out, err := uc.Mint(context.Background(), MintInput{AccountID: uuid.New(), Amount: 100})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.Plaintext)
}

func TestMintExhaustsAfterRepeatedCollisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockTokenRepository(ctrl)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(ports.ErrDuplicateTokenHash).Times(maxMintAttempts)

	uc := &MintUseCase{Tokens: repo, Pepper: "pepper", TTL: time.Minute, Logger: testLogger{}}

	out, err := uc.Mint(context.Background(), MintInput{AccountID: uuid.New(), Amount: 100})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.IsType(t, apperr.InternalServerError{}, err)
}

func TestMintWrapsUnexpectedRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockTokenRepository(ctrl)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(assertError{"boom"})

	uc := &MintUseCase{Tokens: repo, Pepper: "pepper", TTL: time.Minute, Logger: testLogger{}}

	_, err := uc.Mint(context.Background(), MintInput{AccountID: uuid.New(), Amount: 100})

	assert.IsType(t, apperr.InternalServerError{}, err)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }

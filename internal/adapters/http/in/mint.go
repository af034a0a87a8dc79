// Package in holds the Fiber-facing HTTP handlers: the external interfaces
// described in spec.md §6.
package in

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cashbridge/tokenvault/internal/app/command"
	"github.com/cashbridge/tokenvault/pkg/apperr"
	commonHTTP "github.com/cashbridge/tokenvault/pkg/net/http"
)

// MintRequest is the POST /tokens request body.
type MintRequest struct {
	AccountID string `json:"accountId" validate:"required,uuid"`
	Amount    int64  `json:"amount" validate:"required,min=1"`
}

// MintResponseData is the data field of a successful mint response.
type MintResponseData struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenHandler serves the mint and redeem endpoints.
type TokenHandler struct {
	Mint   *command.MintUseCase
	Redeem *command.RedeemOrchestrator
}

// CreateToken handles POST /tokens.
func (h *TokenHandler) CreateToken(body any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	req := body.(*MintRequest)

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return commonHTTP.WithError(c, apperr.ValidateInternalError(err))
	}

	out, err := h.Mint.Mint(ctx, command.MintInput{
		AccountID: accountID,
		Amount:    req.Amount,
	})
	if err != nil {
		return commonHTTP.WithError(c, err)
	}

	return commonHTTP.Created(c, MintResponseData{
		ID:        out.ID,
		Token:     out.Plaintext,
		Amount:    out.Amount,
		ExpiresAt: out.ExpiresAt,
	})
}

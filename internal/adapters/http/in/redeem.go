package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cashbridge/tokenvault/internal/app/command"
	commonHTTP "github.com/cashbridge/tokenvault/pkg/net/http"
)

// RedeemRequest is the POST /tokens/redeem request body. AccountID is
// accepted for parity with spec.md §6's schema but is not trusted for
// authorization here: the token's own account_id is authoritative.
type RedeemRequest struct {
	Token     string         `json:"token" validate:"required"`
	AccountID string         `json:"accountId" validate:"required,uuid"`
	AgentID   string         `json:"agentId" validate:"required"`
	Metadata  map[string]any `json:"metadata" validate:"omitempty,dive,keys,keymax=100,endkeys,nonested"`
}

// RedeemResponseData is the data field of a successful redeem response.
type RedeemResponseData struct {
	TransactionID string `json:"transactionId"`
}

// RedeemToken handles POST /tokens/redeem.
func (h *TokenHandler) RedeemToken(body any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	req := body.(*RedeemRequest)

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	ip := commonHTTP.ClientIP(c)
	metadata["ip"] = ip

	out, err := h.Redeem.Handle(ctx, command.RedeemInput{
		FullToken: req.Token,
		AgentID:   req.AgentID,
		Metadata:  metadata,
	}, ip)
	if err != nil {
		return commonHTTP.WithError(c, err)
	}

	return commonHTTP.OK(c, RedeemResponseData{
		TransactionID: out.TransactionID.String(),
	}, "redemption successful")
}

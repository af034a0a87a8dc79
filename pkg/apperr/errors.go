// Package apperr is the error taxonomy for tokenvault: a set of typed error
// values carrying a stable code, title and message, plus the business-error
// sentinels they are dispatched from at the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Business error sentinels. Each is a stable, comparable value that domain
// and application code returns or wraps; ValidateBusinessError maps each to
// its typed, client-facing shape.
var (
	ErrTokenMalformed     = errors.New("TOK-001")
	ErrInvalidAmount      = errors.New("TOK-002")
	ErrTokenNotFound      = errors.New("TOK-003")
	ErrTokenUsedOrExpired = errors.New("TOK-004")
	ErrMintExhausted      = errors.New("TOK-005")
	ErrRiskRejected       = errors.New("TOK-006")
	ErrRiskChallenged     = errors.New("TOK-007")
	ErrRateLimited        = errors.New("TOK-008")
	ErrMissingFields      = errors.New("TOK-009")
	ErrUnexpectedFields   = errors.New("TOK-010")
)

// EntityNotFoundError records that a lookup by id found nothing.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	if e.EntityType != "" {
		return fmt.Sprintf("entity %s not found", e.EntityType)
	}

	return "entity not found"
}

func (e EntityNotFoundError) Unwrap() error { return e.Err }

// ValidationError records a single-message request validation failure.
type ValidationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error { return e.Err }

// EntityConflictError records a state conflict (token already used/expired,
// duplicate ledger row, etc).
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityConflictError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}

	return e.Message
}

func (e EntityConflictError) Unwrap() error { return e.Err }

// UnauthorizedError indicates a request that cannot be attributed to any
// authenticated caller. Not exercised by this service today (identity
// management is external) but kept so the HTTP dispatcher's switch stays
// total against every kind in spec.md §7.
type UnauthorizedError struct {
	Title   string
	Message string
	Code    string
}

func (e UnauthorizedError) Error() string { return e.Message }

// ForbiddenError indicates an authenticated-but-disallowed operation — used
// for risk REJECT and CHALLENGE decisions.
type ForbiddenError struct {
	Title   string
	Message string
	Code    string
	Reasons []string
}

func (e ForbiddenError) Error() string { return e.Message }

// UnprocessableOperationError indicates a structurally valid but
// semantically invalid request. No business sentinel maps to it.
type UnprocessableOperationError struct {
	Title   string
	Message string
	Code    string
	Reasons []string
}

func (e UnprocessableOperationError) Error() string { return e.Message }

// RateLimitedError carries the fields the limiter needs to set 429 headers.
type RateLimitedError struct {
	Title      string
	Message    string
	Code       string
	RetryAfter int
	Limit      int
	Reset      int64
}

func (e RateLimitedError) Error() string { return e.Message }

// InternalServerError is the catch-all for programmer/infrastructure
// faults. Its message is always the generic, client-safe string —
// spec.md §7 forbids leaking internal detail to clients.
type InternalServerError struct {
	Title   string
	Message string
	Code    string
	Err     error
}

func (e InternalServerError) Error() string { return e.Message }
func (e InternalServerError) Unwrap() error  { return e.Err }

// ValidateInternalError wraps any error as a generic InternalServerError,
// never leaking its original message to the client.
func ValidateInternalError(err error) error {
	return InternalServerError{
		Code:    "TOK-500",
		Title:   "Internal Server Error",
		Message: "The server encountered an unexpected error. Please try again later.",
		Err:     err,
	}
}

// ValidateBusinessError maps a business sentinel to its typed, client-facing
// error. entityType tags the failing resource on the kinds that carry it;
// args are read only by the risk sentinels, as the reason tags placed on
// the returned ForbiddenError. No message is formatted from args.
//
//nolint:gocyclo
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrTokenMalformed.Error(),
			Title:      "Malformed Token",
			Message:    "The token does not match the expected PREFIX-CORE format.",
		}
	case errors.Is(err, ErrInvalidAmount):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrInvalidAmount.Error(),
			Title:      "Invalid Amount",
			Message:    "Amount must be a positive integer.",
		}
	case errors.Is(err, ErrTokenNotFound):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrTokenNotFound.Error(),
			Title:      "Invalid Token",
			Message:    "No active token matches the presented credentials.",
		}
	case errors.Is(err, ErrTokenUsedOrExpired):
		return EntityConflictError{
			EntityType: entityType,
			Code:       ErrTokenUsedOrExpired.Error(),
			Title:      "Token Used Or Expired",
			Message:    "This token has already been redeemed or has expired.",
		}
	case errors.Is(err, ErrMintExhausted):
		return InternalServerError{
			Code:    ErrMintExhausted.Error(),
			Title:   "Mint Exhausted",
			Message: "Could not mint a unique token after multiple attempts.",
		}
	case errors.Is(err, ErrRiskRejected):
		return ForbiddenError{
			Code:    ErrRiskRejected.Error(),
			Title:   "Rejected By Risk",
			Message: "This redemption was declined by risk controls.",
			Reasons: toReasons(args),
		}
	case errors.Is(err, ErrRiskChallenged):
		return ForbiddenError{
			Code:    ErrRiskChallenged.Error(),
			Title:   "Challenged By Risk",
			Message: "This redemption requires additional verification.",
			Reasons: toReasons(args),
		}
	case errors.Is(err, ErrRateLimited):
		return RateLimitedError{
			Code:    ErrRateLimited.Error(),
			Title:   "Rate Limited",
			Message: "Too many requests. Please retry later.",
		}
	case errors.Is(err, ErrMissingFields):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrMissingFields.Error(),
			Title:      "Missing Fields in Request",
			Message:    "Your request is missing one or more required fields.",
		}
	case errors.Is(err, ErrUnexpectedFields):
		return ValidationError{
			EntityType: entityType,
			Code:       ErrUnexpectedFields.Error(),
			Title:      "Unexpected Fields in the Request",
			Message:    "The request body contains fields that are not allowed.",
		}
	default:
		return ValidateInternalError(err)
	}
}

func toReasons(args []any) []string {
	reasons := make([]string, 0, len(args))

	for _, a := range args {
		if r, ok := a.([]string); ok {
			return r
		}

		reasons = append(reasons, fmt.Sprint(a))
	}

	return reasons
}

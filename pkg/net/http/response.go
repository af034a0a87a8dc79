// Package http holds the fiber-facing HTTP edge helpers: response envelopes,
// the error dispatcher, body decoding/validation, and request correlation.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cashbridge/tokenvault/pkg/apperr"
)

// Envelope is the success response wrapper every 2xx handler returns.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorBody is the error response wrapper every non-2xx handler returns.
type ErrorBody struct {
	Error struct {
		Code       string   `json:"code,omitempty"`
		Message    string   `json:"message,omitempty"`
		StatusCode int      `json:"statusCode"`
		RequestID  string   `json:"requestId,omitempty"`
		Reasons    []string `json:"reasons,omitempty"`
	} `json:"error"`
}

// Created writes a 201 success envelope.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// OK writes a 200 success envelope.
func OK(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Message: message})
}

func writeError(c *fiber.Ctx, status int, code, message string, reasons []string) error {
	body := ErrorBody{}
	body.Error.Code = code
	body.Error.Message = message
	body.Error.StatusCode = status
	body.Error.RequestID = RequestID(c)
	body.Error.Reasons = reasons

	return c.Status(status).JSON(body)
}

// WithError dispatches a domain error to its HTTP representation, matching
// the kind-to-status mapping in spec.md §7. Non-operational (unrecognized)
// errors are rewritten to a generic 500 — internal messages are never sent
// to clients.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case apperr.EntityNotFoundError:
		return writeError(c, fiber.StatusNotFound, e.Code, e.Message, nil)
	case apperr.EntityConflictError:
		return writeError(c, fiber.StatusConflict, e.Code, e.Message, nil)
	case apperr.ValidationError:
		return writeError(c, fiber.StatusBadRequest, e.Code, e.Message, nil)
	case apperr.UnauthorizedError:
		return writeError(c, fiber.StatusUnauthorized, e.Code, e.Message, nil)
	case apperr.ForbiddenError:
		return writeError(c, fiber.StatusForbidden, e.Code, e.Message, e.Reasons)
	case apperr.UnprocessableOperationError:
		return writeError(c, fiber.StatusUnprocessableEntity, e.Code, e.Message, e.Reasons)
	case apperr.RateLimitedError:
		return writeError(c, fiber.StatusTooManyRequests, e.Code, e.Message, nil)
	case apperr.InternalServerError:
		return writeError(c, fiber.StatusInternalServerError, e.Code, e.Message, nil)
	default:
		ie := apperr.ValidateInternalError(err).(apperr.InternalServerError)
		return writeError(c, fiber.StatusInternalServerError, ie.Code, ie.Message, nil)
	}
}

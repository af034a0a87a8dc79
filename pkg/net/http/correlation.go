package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestIDHeader is the header a caller may supply to propagate its own
// correlation id; one is generated when absent.
const requestIDHeader = "X-Request-Id"

const requestIDLocalsKey = "request_id"

// WithCorrelationID assigns a request id to every inbound request, either
// propagated from the caller or freshly generated, and reflects it back on
// the response.
func WithCorrelationID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}

	c.Locals(requestIDLocalsKey, id)
	c.Set(requestIDHeader, id)

	return c.Next()
}

// RequestID retrieves the correlation id set by WithCorrelationID.
func RequestID(c *fiber.Ctx) string {
	if v, ok := c.Locals(requestIDLocalsKey).(string); ok {
		return v
	}

	return ""
}

// ClientIP returns the caller's IP, honoring Fiber's trusted-proxy
// X-Forwarded-For handling.
func ClientIP(c *fiber.Ctx) string {
	return c.IP()
}

package in

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	adapterredis "github.com/cashbridge/tokenvault/internal/adapters/redis"
	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/apperr"
	commonHTTP "github.com/cashbridge/tokenvault/pkg/net/http"
)

// KeyFunc derives a rate-limit bucket key from the request, per spec.md
// §4.5's key schemes.
type KeyFunc func(c *fiber.Ctx, route string) string

// ByIP keys the bucket by caller IP and route: rate_limit:{ip}:{route}.
func ByIP(c *fiber.Ctx, route string) string {
	return adapterredis.KeyForIP(commonHTTP.ClientIP(c), route)
}

// RateLimit builds a Fiber middleware enforcing limit requests per window
// against the key keyFn derives (e.g. ByIP), per spec.md §4.5. skipSuccessful
// releases the slot back when the downstream handler answers with a
// status below 400.
func RateLimit(limiter ports.RateLimiter, route string, limit int, window time.Duration, keyFn KeyFunc, skipSuccessful bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		key := keyFn(c, route)
		requestID := commonHTTP.RequestID(c)

		result, err := limiter.Allow(ctx, key, limit, window, requestID)
		if err != nil {
			return commonHTTP.WithError(c, apperr.ValidateInternalError(err))
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			c.Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			return commonHTTP.WithError(c, apperr.ValidateBusinessError(apperr.ErrRateLimited, "request"))
		}

		err = c.Next()

		if skipSuccessful && result.Remove != nil && c.Response().StatusCode() < fiber.StatusBadRequest {
			_ = result.Remove(ctx)
		}

		return err
	}
}

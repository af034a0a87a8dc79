package in

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/cashbridge/tokenvault/internal/ports"
	commonHTTP "github.com/cashbridge/tokenvault/pkg/net/http"
)

// RouterConfig carries the rate-limit policy applied to each route, per
// spec.md §4.5 and §6.
type RouterConfig struct {
	Limiter          ports.RateLimiter
	MintLimit        int
	MintWindow       time.Duration
	RedeemLimit      int
	RedeemWindow     time.Duration
	CORSAllowOrigins string
}

// NewRouter builds the Fiber app and registers every route described in
// spec.md §6.
func NewRouter(cfg RouterConfig, tokens *TokenHandler, health *HealthHandler) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	f.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	f.Use(commonHTTP.WithCorrelationID)

	f.Get("/health", health.Health)
	f.Get("/ready", health.Ready)

	f.Post("/tokens",
		RateLimit(cfg.Limiter, "POST /tokens", cfg.MintLimit, cfg.MintWindow, ByIP, false),
		commonHTTP.WithBody(new(MintRequest), tokens.CreateToken),
	)

	f.Post("/tokens/redeem",
		RateLimit(cfg.Limiter, "POST /tokens/redeem", cfg.RedeemLimit, cfg.RedeemWindow, ByIP, true),
		commonHTTP.WithBody(new(RedeemRequest), tokens.RedeemToken),
	)

	return f
}

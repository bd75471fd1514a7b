package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// Preset rate limit windows. Sensitive credential endpoints carry far
// tighter budgets than general traffic.
var (
	GeneralLimit        = LimitConfig{Identifier: "general", Max: 100, Window: 15 * time.Minute}
	LoginLimit          = LimitConfig{Identifier: "login", Max: 5, Window: 15 * time.Minute}
	RegisterLimit       = LimitConfig{Identifier: "register", Max: 10, Window: time.Hour}
	PasswordChangeLimit = LimitConfig{Identifier: "password-change", Max: 3, Window: time.Hour}
	PasswordResetLimit  = LimitConfig{Identifier: "password-reset", Max: 3, Window: time.Hour}
)

// LimitConfig describes one rate limit bucket keyed by client IP.
type LimitConfig struct {
	Identifier string
	Max        int
	Window     time.Duration
}

// RateLimit creates a per-IP rate limiter middleware for one bucket.
func RateLimit(cfg LimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", cfg.Identifier, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}

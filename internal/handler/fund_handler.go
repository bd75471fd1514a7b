package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// FundHandler wires the fund summary endpoint.
type FundHandler struct {
	service service.FundService
	logger  zerolog.Logger
}

// NewFundHandler constructs the handler.
func NewFundHandler(service service.FundService, logger zerolog.Logger) *FundHandler {
	return &FundHandler{
		service: service,
		logger:  logger.With().Str("component", "fund_handler").Logger(),
	}
}

// Register attaches the fund summary route.
func (h *FundHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
}

func (h *FundHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build fund summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build fund summary")
	}

	if summary.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "fund summary retrieved", summary)
}

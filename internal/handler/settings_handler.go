package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// SettingsHandler wires fund settings endpoints.
type SettingsHandler struct {
	service service.SettingsService
	audit   service.AuditRecorder
	logger  zerolog.Logger
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service service.SettingsService, audit service.AuditRecorder, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		audit:   audit,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register attaches settings routes. Reads need a bearer, the update is admin.
func (h *SettingsHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.get)
	router.Put("", adminOnly,
		middleware.Audited(h.audit, models.AuditActionSettingsUpdate, "settings", h.update))
}

func (h *SettingsHandler) get(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *SettingsHandler) update(c *fiber.Ctx) error {
	var payload dto.SettingsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	settings, err := h.service.Update(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update settings")
	}

	return utils.SendSuccess(c, "settings updated", settings)
}

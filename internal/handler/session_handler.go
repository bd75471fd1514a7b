package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// SessionHandler wires session management endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session routes. All require an authenticated caller.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	// Two path segments, so the literal route never collides with /:id.
	router.Delete("/actions/terminate-all", h.terminateAll)
	router.Delete("/:id", h.terminate)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	sessions, err := h.service.ListForUser(c.Context(), userIDFromContext(c), sessionIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sessions")
	}

	return utils.SendSuccess(c, "sessions retrieved", sessions)
}

func (h *SessionHandler) terminate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	err = h.service.Revoke(c.Context(), userIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrSessionForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "session belongs to another user")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to terminate session")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to terminate session")
		}
	}

	return utils.SendSuccess(c, "session terminated", nil)
}

func (h *SessionHandler) terminateAll(c *fiber.Ctx) error {
	err := h.service.RevokeOthers(c.Context(), userIDFromContext(c), sessionIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to terminate sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to terminate sessions")
	}

	return utils.SendSuccess(c, "other sessions terminated", nil)
}

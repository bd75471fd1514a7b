package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// AuditHandler wires audit trail query endpoints.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes. The full listing is admin only; /me scopes
// the trail to the caller.
func (h *AuditHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", adminOnly, h.list)
	router.Get("/me", h.listOwn)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID, err := parseQueryInt(c, "user_id")
	if err != nil || userID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}
	req.UserID = uint(userID)

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit entries")
	}

	return utils.SendSuccess(c, "audit entries retrieved", response)
}

func (h *AuditHandler) listOwn(c *fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	req.UserID = userIDFromContext(c)

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit entries")
	}

	return utils.SendSuccess(c, "audit entries retrieved", response)
}

func (h *AuditHandler) parseListRequest(c *fiber.Ctx) (dto.AuditListRequest, error) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return dto.AuditListRequest{}, err
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return dto.AuditListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid from date")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return dto.AuditListRequest{}, fiber.NewError(fiber.StatusBadRequest, "invalid to date")
	}

	return dto.AuditListRequest{
		Page:     page,
		PageSize: pageSize,
		Action:   strings.TrimSpace(c.Query("action")),
		Resource: strings.TrimSpace(c.Query("resource")),
		From:     from,
		To:       to,
	}, nil
}

package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// ExpenseHandler wires fund expense endpoints.
type ExpenseHandler struct {
	service service.ExpenseService
	fund    service.FundService
	audit   service.AuditRecorder
	logger  zerolog.Logger
}

// NewExpenseHandler constructs the handler.
func NewExpenseHandler(service service.ExpenseService, fund service.FundService, audit service.AuditRecorder, logger zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		service: service,
		fund:    fund,
		audit:   audit,
		logger:  logger.With().Str("component", "expense_handler").Logger(),
	}
}

// Register attaches expense routes. Reads need a bearer, writes need admin.
func (h *ExpenseHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", adminOnly,
		middleware.Audited(h.audit, models.AuditActionExpenseCreate, "expense", h.create))
	router.Patch("/:id", adminOnly,
		middleware.Audited(h.audit, models.AuditActionExpenseUpdate, "expense", h.update))
	router.Delete("/:id", adminOnly,
		middleware.Audited(h.audit, models.AuditActionExpenseDelete, "expense", h.delete))
}

func (h *ExpenseHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from date")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to date")
	}

	filter := repository.ExpenseFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
		From:     from,
		To:       to,
	}

	response, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list expenses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list expenses")
	}

	return utils.SendSuccess(c, "expenses retrieved", response)
}

func (h *ExpenseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	expense, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "expense not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch expense")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch expense")
	}

	return utils.SendSuccess(c, "expense retrieved", expense)
}

func (h *ExpenseHandler) create(c *fiber.Ctx) error {
	var payload dto.ExpenseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	expense, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to record expense")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record expense")
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "expense recorded", expense)
}

func (h *ExpenseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ExpenseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	expense, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpenseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "expense not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update expense")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update expense")
		}
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccess(c, "expense updated", expense)
}

func (h *ExpenseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "expense not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete expense")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete expense")
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccess(c, "expense deleted", nil)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// EventHandler wires fundraising event endpoints.
type EventHandler struct {
	service service.EventService
	fund    service.FundService
	audit   service.AuditRecorder
	logger  zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service service.EventService, fund service.FundService, audit service.AuditRecorder, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		fund:    fund,
		audit:   audit,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register attaches event routes. Reads need a bearer, writes need admin.
func (h *EventHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", adminOnly,
		middleware.Audited(h.audit, models.AuditActionEventCreate, "event", h.create))
	router.Patch("/:id", adminOnly,
		middleware.Audited(h.audit, models.AuditActionEventUpdate, "event", h.update))
	router.Post("/:id/payments", adminOnly,
		middleware.Audited(h.audit, models.AuditActionEventUpdate, "event", h.addPayment))
	router.Post("/:id/close", adminOnly,
		middleware.Audited(h.audit, models.AuditActionEventClose, "event", h.close))
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	events, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}

	return utils.SendSuccess(c, "events retrieved", events)
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	event, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch event")
	}

	return utils.SendSuccess(c, "event retrieved", event)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create event")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrEventClosed):
			return utils.SendError(c, fiber.StatusBadRequest, "event already closed")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update event")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update event")
		}
	}

	return utils.SendSuccess(c, "event updated", event)
}

func (h *EventHandler) addPayment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.EventPaymentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.AddPayment(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrEventClosed):
			return utils.SendError(c, fiber.StatusBadRequest, "event already closed")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record event payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record event payment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event payment recorded", event)
}

func (h *EventHandler) close(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	response, err := h.service.Close(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrEventClosed):
			return utils.SendError(c, fiber.StatusBadRequest, "event already closed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to close event")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to close event")
		}
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccess(c, "event closed", response)
}

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

// PaymentHandler wires dues payment endpoints.
type PaymentHandler struct {
	service service.PaymentService
	fund    service.FundService
	audit   service.AuditRecorder
	logger  zerolog.Logger
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service service.PaymentService, fund service.FundService, audit service.AuditRecorder, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		fund:    fund,
		audit:   audit,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register attaches payment routes. Reads need a bearer, writes need admin.
func (h *PaymentHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/summary/:period", h.periodSummary)
	router.Get("/:id", h.get)
	router.Post("", adminOnly,
		middleware.Audited(h.audit, models.AuditActionPaymentCreate, "payment", h.create))
	router.Patch("/:id", adminOnly,
		middleware.Audited(h.audit, models.AuditActionPaymentUpdate, "payment", h.update))
	router.Delete("/:id", adminOnly,
		middleware.Audited(h.audit, models.AuditActionPaymentDelete, "payment", h.delete))
	router.Post("/:id/proof", adminOnly,
		middleware.Audited(h.audit, models.AuditActionPaymentUpdate, "payment", h.uploadProof))
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.PaymentFilter{
		Page:     page,
		PageSize: pageSize,
		Period:   strings.TrimSpace(c.Query("period")),
		Status:   strings.TrimSpace(c.Query("status")),
	}

	studentID, err := parseQueryInt(c, "student_id")
	if err != nil || studentID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}
	if studentID > 0 {
		id := uint(studentID)
		filter.StudentID = &id
	}

	response, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	return utils.SendSuccess(c, "payments retrieved", response)
}

func (h *PaymentHandler) periodSummary(c *fiber.Ctx) error {
	period := strings.TrimSpace(c.Params("period"))
	if len(period) != 7 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid period, expected YYYY-MM")
	}

	summary, err := h.service.PeriodSummary(c.Context(), period)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build period summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build period summary")
	}

	return utils.SendSuccess(c, "period summary retrieved", summary)
}

func (h *PaymentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	payment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch payment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch payment")
	}

	return utils.SendSuccess(c, "payment retrieved", payment)
}

func (h *PaymentHandler) create(c *fiber.Ctx) error {
	var payload dto.PaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPeriodAlreadyPaid):
			return utils.SendError(c, fiber.StatusBadRequest, "period already paid for this student")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record payment")
		}
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment recorded", payment)
}

func (h *PaymentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.PaymentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update payment")
		}
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccess(c, "payment updated", payment)
}

func (h *PaymentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete payment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete payment")
	}

	h.fund.Invalidate(c.Context())

	return utils.SendSuccess(c, "payment deleted", nil)
}

func (h *PaymentHandler) uploadProof(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	response, err := h.service.UploadProof(c.Context(), id, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		case errors.Is(err, service.ErrProofTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "proof exceeds maximum allowed size")
		case errors.Is(err, service.ErrProofTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "proof file type not allowed")
		case errors.Is(err, service.ErrProofStorageUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "proof storage is not configured")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to store proof")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to store proof")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "proof stored", response)
}

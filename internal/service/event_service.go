package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

var (
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventClosed indicates a mutation was attempted on a closed event.
	ErrEventClosed = errors.New("event already closed")
)

// EventService manages fundraising events and their surplus reconciliation.
type EventService interface {
	Create(ctx context.Context, req dto.EventCreateRequest) (dto.EventResponse, error)
	Get(ctx context.Context, id uint) (dto.EventResponse, error)
	List(ctx context.Context) ([]dto.EventResponse, error)
	Update(ctx context.Context, id uint, req dto.EventUpdateRequest) (dto.EventResponse, error)
	AddPayment(ctx context.Context, eventID uint, req dto.EventPaymentRequest) (dto.EventResponse, error)
	Close(ctx context.Context, id uint) (dto.EventCloseResponse, error)
}

type eventService struct {
	repo     repository.EventRepository
	students repository.StudentRepository
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEventService constructs the fundraising event service.
func NewEventService(
	repo repository.EventRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) EventService {
	return &eventService{
		repo:     repo,
		students: students,
		validate: validate,
		logger:   logger.With().Str("component", "event_service").Logger(),
		now:      time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, req dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	event := models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		DueAmount:   req.DueAmount,
		Target:      req.Target,
		Status:      models.EventStatusOpen,
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		s.logger.Error().Err(err).Msg("failed to create event")
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event, 0), nil
}

func (s *eventService) Get(ctx context.Context, id uint) (dto.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}

	collected, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event, collected), nil
}

func (s *eventService) List(ctx context.Context) ([]dto.EventResponse, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		collected, err := s.repo.SumPayments(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewEventResponse(event, collected))
	}

	return responses, nil
}

func (s *eventService) Update(ctx context.Context, id uint, req dto.EventUpdateRequest) (dto.EventResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}
	if event.Status == models.EventStatusClosed {
		return dto.EventResponse{}, ErrEventClosed
	}

	if req.Name != nil {
		event.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.DueAmount != nil {
		event.DueAmount = *req.DueAmount
	}
	if req.Target != nil {
		event.Target = *req.Target
	}

	if err := s.repo.Update(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	collected, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event, collected), nil
}

func (s *eventService) AddPayment(ctx context.Context, eventID uint, req dto.EventPaymentRequest) (dto.EventResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}
	if event.Status == models.EventStatusClosed {
		return dto.EventResponse{}, ErrEventClosed
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrStudentNotFound
		}
		return dto.EventResponse{}, err
	}

	payment := models.EventPayment{
		EventID:   eventID,
		StudentID: req.StudentID,
		Amount:    req.Amount,
		PaidAt:    s.now(),
	}

	if err := s.repo.CreatePayment(ctx, &payment); err != nil {
		return dto.EventResponse{}, err
	}

	collected, err := s.repo.SumPayments(ctx, eventID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event, collected), nil
}

// Close settles an event. Collections above target move into the main fund
// as a single surplus payment; a second close is rejected, which keeps the
// transfer from being recorded twice.
func (s *eventService) Close(ctx context.Context, id uint) (dto.EventCloseResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventCloseResponse{}, ErrEventNotFound
		}
		return dto.EventCloseResponse{}, err
	}
	if event.Status == models.EventStatusClosed {
		return dto.EventCloseResponse{}, ErrEventClosed
	}

	collected, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return dto.EventCloseResponse{}, err
	}

	closedAt := s.now()
	event.Status = models.EventStatusClosed
	event.ClosedAt = &closedAt

	// The status flip and the transfer commit together. A partial close
	// would otherwise strand the surplus: re-closing is rejected, so a
	// closed event with no transfer row could never be reconciled.
	var transfer *models.Payment
	surplus := collected - event.Target
	if surplus > 0 {
		transfer = &models.Payment{
			Period:    closedAt.Format("2006-01"),
			Amount:    surplus,
			Status:    models.PaymentStatusPaid,
			Method:    models.PaymentMethodEventSurplus,
			Reference: newPaymentReference(),
			Note:      fmt.Sprintf("surplus from event %q", event.Name),
			PaidAt:    &closedAt,
		}
	}

	if err := s.repo.Close(ctx, &event, transfer); err != nil {
		s.logger.Error().Err(err).Uint("event_id", id).Msg("failed to close event")
		return dto.EventCloseResponse{}, err
	}

	response := dto.EventCloseResponse{
		Event: dto.NewEventResponse(event, collected),
	}
	if transfer != nil {
		response.Surplus = surplus
		response.Transfer = &transfer.ID
		s.logger.Info().
			Uint("event_id", id).
			Int64("surplus", surplus).
			Uint("payment_id", transfer.ID).
			Msg("event surplus reconciled into fund")
	}

	return response, nil
}

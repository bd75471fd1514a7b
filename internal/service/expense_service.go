package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

// ErrExpenseNotFound indicates the requested expense does not exist.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseService records outgoing spends from the fund.
type ExpenseService interface {
	Create(ctx context.Context, recordedBy uint, req dto.ExpenseCreateRequest) (dto.ExpenseResponse, error)
	Get(ctx context.Context, id uint) (dto.ExpenseResponse, error)
	List(ctx context.Context, filter repository.ExpenseFilter) (dto.ExpenseListResponse, error)
	Update(ctx context.Context, id uint, req dto.ExpenseUpdateRequest) (dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uint) error
}

type expenseService struct {
	repo     repository.ExpenseRepository
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExpenseService constructs the expense service.
func NewExpenseService(repo repository.ExpenseRepository, validate *validator.Validate, logger zerolog.Logger) ExpenseService {
	return &expenseService{
		repo:     repo,
		validate: validate,
		logger:   logger.With().Str("component", "expense_service").Logger(),
		now:      time.Now,
	}
}

func (s *expenseService) Create(ctx context.Context, recordedBy uint, req dto.ExpenseCreateRequest) (dto.ExpenseResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ExpenseResponse{}, err
	}

	spentAt := s.now()
	if req.SpentAt != nil {
		spentAt = *req.SpentAt
	}

	expense := models.Expense{
		Title:      strings.TrimSpace(req.Title),
		Amount:     req.Amount,
		Category:   strings.TrimSpace(req.Category),
		Note:       strings.TrimSpace(req.Note),
		SpentAt:    spentAt,
		RecordedBy: recordedBy,
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		s.logger.Error().Err(err).Msg("failed to record expense")
		return dto.ExpenseResponse{}, err
	}

	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) Get(ctx context.Context, id uint) (dto.ExpenseResponse, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExpenseResponse{}, ErrExpenseNotFound
		}
		return dto.ExpenseResponse{}, err
	}

	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) List(ctx context.Context, filter repository.ExpenseFilter) (dto.ExpenseListResponse, error) {
	expenses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ExpenseListResponse{}, err
	}

	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		items = append(items, dto.NewExpenseResponse(expense))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(filter.Page, 1),
		PageSize:   filter.PageSize,
		TotalItems: total,
	}
	if filter.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(filter.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ExpenseListResponse{Items: items, Pagination: pagination}, nil
}

func (s *expenseService) Update(ctx context.Context, id uint, req dto.ExpenseUpdateRequest) (dto.ExpenseResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ExpenseResponse{}, err
	}

	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExpenseResponse{}, ErrExpenseNotFound
		}
		return dto.ExpenseResponse{}, err
	}

	if req.Title != nil {
		expense.Title = strings.TrimSpace(*req.Title)
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		expense.Category = strings.TrimSpace(*req.Category)
	}
	if req.Note != nil {
		expense.Note = strings.TrimSpace(*req.Note)
	}
	if req.SpentAt != nil {
		expense.SpentAt = *req.SpentAt
	}

	if err := s.repo.Update(ctx, &expense); err != nil {
		return dto.ExpenseResponse{}, err
	}

	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

// SettingsService manages the single fund configuration row.
type SettingsService interface {
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, req dto.SettingsUpdateRequest) (dto.SettingsResponse, error)
}

type settingsService struct {
	repo     repository.SettingRepository
	validate *validator.Validate
	logger   zerolog.Logger
	policy   *bluemonday.Policy
}

// NewSettingsService constructs the settings service. The reminder template
// is operator-supplied text, so it passes through a strict sanitizer before
// it is stored.
func NewSettingsService(repo repository.SettingRepository, validate *validator.Validate, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:     repo,
		validate: validate,
		logger:   logger.With().Str("component", "settings_service").Logger(),
		policy:   bluemonday.StrictPolicy(),
	}
}

func (s *settingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	return dto.NewSettingsResponse(setting), nil
}

func (s *settingsService) Update(ctx context.Context, req dto.SettingsUpdateRequest) (dto.SettingsResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SettingsResponse{}, err
	}

	setting, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	if req.DuesAmount != nil {
		setting.DuesAmount = *req.DuesAmount
	}
	if req.ReminderEnabled != nil {
		setting.ReminderEnabled = *req.ReminderEnabled
	}
	if req.ReminderStartDate != nil {
		setting.ReminderStartDate = req.ReminderStartDate
	}
	if req.ReminderGraceDays != nil {
		setting.ReminderGraceDays = *req.ReminderGraceDays
	}
	if req.ReminderTemplate != nil {
		setting.ReminderTemplate = strings.TrimSpace(s.policy.Sanitize(*req.ReminderTemplate))
	}

	if err := s.repo.Update(ctx, &setting); err != nil {
		s.logger.Error().Err(err).Msg("failed to update settings")
		return dto.SettingsResponse{}, err
	}

	return dto.NewSettingsResponse(setting), nil
}

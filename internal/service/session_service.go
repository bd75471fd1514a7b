package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

var (
	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionForbidden indicates the session belongs to another user.
	ErrSessionForbidden = errors.New("session belongs to another user")
)

// SessionService manages the lifecycle of login sessions.
type SessionService interface {
	Open(ctx context.Context, userID uint, token string, expiresAt time.Time, userAgent, ip string) (models.Session, error)
	ListForUser(ctx context.Context, userID uint, currentSessionID uint) ([]dto.SessionResponse, error)
	Revoke(ctx context.Context, userID uint, sessionID uint) error
	RevokeByToken(ctx context.Context, token string) error
	RevokeOthers(ctx context.Context, userID uint, currentSessionID uint) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo   repository.SessionRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewSessionService constructs the session service.
func NewSessionService(repo repository.SessionRepository, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		logger: logger.With().Str("component", "session_service").Logger(),
		now:    time.Now,
	}
}

func (s *sessionService) Open(ctx context.Context, userID uint, token string, expiresAt time.Time, userAgent, ip string) (models.Session, error) {
	client := utils.ParseUserAgent(userAgent)

	session := models.Session{
		UserID:       userID,
		Token:        token,
		Device:       client.Device,
		Browser:      client.Browser,
		OS:           client.OS,
		IPAddress:    ip,
		LastActivity: s.now(),
		ExpiresAt:    expiresAt,
		Active:       true,
	}

	if err := s.repo.Create(ctx, &session); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to create session")
		return models.Session{}, err
	}

	return session, nil
}

func (s *sessionService) ListForUser(ctx context.Context, userID uint, currentSessionID uint) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, dto.NewSessionResponse(session, session.ID == currentSessionID))
	}

	return responses, nil
}

func (s *sessionService) Revoke(ctx context.Context, userID uint, sessionID uint) error {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if session.UserID != userID {
		return ErrSessionForbidden
	}

	return s.repo.Deactivate(ctx, sessionID)
}

func (s *sessionService) RevokeByToken(ctx context.Context, token string) error {
	return s.repo.DeactivateByToken(ctx, token)
}

func (s *sessionService) RevokeOthers(ctx context.Context, userID uint, currentSessionID uint) error {
	return s.repo.DeactivateAllExcept(ctx, userID, currentSessionID)
}

func (s *sessionService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to delete expired sessions")
		return 0, err
	}

	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("expired sessions deleted")
	}

	return removed, nil
}

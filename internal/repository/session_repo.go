package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// SessionRepository persists login sessions. Logical invalidation (Active
// flag) and physical TTL deletion are independent operations.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uint) (models.Session, error)
	GetByToken(ctx context.Context, token string) (models.Session, error)
	ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Session, error)
	Deactivate(ctx context.Context, id uint) error
	DeactivateByToken(ctx context.Context, token string) error
	DeactivateAllExcept(ctx context.Context, userID uint, keepID uint) error
	TouchActivity(ctx context.Context, id uint, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Order("last_activity DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("active", false).Error
}

func (r *sessionRepository) DeactivateByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("token = ?", token).
		Update("active", false).Error
}

func (r *sessionRepository) DeactivateAllExcept(ctx context.Context, userID uint, keepID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ? AND id <> ?", userID, keepID).
		Update("active", false).Error
}

func (r *sessionRepository) TouchActivity(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("last_activity", at).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.Session{})

	return result.RowsAffected, result.Error
}

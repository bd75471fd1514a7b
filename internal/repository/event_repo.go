package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// EventRepository provides access to fundraising events and their payments.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Close(ctx context.Context, event *models.Event, transfer *models.Payment) error
	CreatePayment(ctx context.Context, payment *models.EventPayment) error
	ListPayments(ctx context.Context, eventID uint) ([]models.EventPayment, error)
	SumPayments(ctx context.Context, eventID uint) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.Event{}, err
	}

	return event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Close persists the closed event together with the optional surplus
// transfer in one transaction, so a failed transfer never leaves the event
// closed with the surplus unrecorded.
func (r *eventRepository) Close(ctx context.Context, event *models.Event, transfer *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(event).Error; err != nil {
			return err
		}
		if transfer == nil {
			return nil
		}
		return tx.Create(transfer).Error
	})
}

func (r *eventRepository) CreatePayment(ctx context.Context, payment *models.EventPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *eventRepository) ListPayments(ctx context.Context, eventID uint) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("paid_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *eventRepository) SumPayments(ctx context.Context, eventID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.EventPayment{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error

	return total, err
}

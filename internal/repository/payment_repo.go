package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// PaymentFilter narrows dues payment listings.
type PaymentFilter struct {
	Page      int
	PageSize  int
	StudentID *uint
	Period    string
	Status    string
}

// PeriodTotal aggregates collected amounts by monthly period.
type PeriodTotal struct {
	Period string
	Total  int64
}

// PaymentRepository provides access to dues payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (models.Payment, error)
	GetByStudentPeriod(ctx context.Context, studentID uint, period string) (models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	SumPaid(ctx context.Context) (int64, error)
	SumPaidByPeriod(ctx context.Context, period string) (int64, int64, error)
	PeriodTotals(ctx context.Context) ([]PeriodTotal, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs a payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}

func (r *paymentRepository) GetByStudentPeriod(ctx context.Context, studentID uint, period string) (models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND period = ?", studentID, period).
		First(&payment).Error
	if err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Period != "" {
		query = query.Where("period = ?", filter.Period)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

func (r *paymentRepository) SumPaid(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error

	return total, err
}

// SumPaidByPeriod returns the collected amount and the number of paying
// students for one period.
func (r *paymentRepository) SumPaidByPeriod(ctx context.Context, period string) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("period = ? AND status = ?", period, models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("period = ? AND status = ?", period, models.PaymentStatusPaid).
		Count(&count).Error
	if err != nil {
		return 0, 0, err
	}

	return total, count, nil
}

func (r *paymentRepository) PeriodTotals(ctx context.Context) ([]PeriodTotal, error) {
	var totals []PeriodTotal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPaid).
		Select("period AS period, COALESCE(SUM(amount), 0) AS total").
		Group("period").
		Order("period ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}

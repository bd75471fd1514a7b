package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	Page     int
	PageSize int
	Category string
	From     *time.Time
	To       *time.Time
}

// ExpenseRepository provides access to fund expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uint) (models.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, int64, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	SumTotal(ctx context.Context) (int64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository constructs an expense repository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, id uint) (models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		return models.Expense{}, err
	}

	return expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.From != nil {
		query = query.Where("spent_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("spent_at <= ?", *filter.To)
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

	var expenses []models.Expense
	if err := query.Order("spent_at DESC").Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

func (r *expenseRepository) SumTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error

	return total, err
}

package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// ExpenseCreateRequest records an outgoing spend.
type ExpenseCreateRequest struct {
	Title    string     `json:"title" validate:"required,max=255"`
	Amount   int64      `json:"amount" validate:"required,gt=0"`
	Category string     `json:"category" validate:"omitempty,max=64"`
	Note     string     `json:"note" validate:"omitempty,max=512"`
	SpentAt  *time.Time `json:"spentAt"`
}

// ExpenseUpdateRequest captures partial updates for an expense.
type ExpenseUpdateRequest struct {
	Title    *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Amount   *int64     `json:"amount" validate:"omitempty,gt=0"`
	Category *string    `json:"category" validate:"omitempty,max=64"`
	Note     *string    `json:"note" validate:"omitempty,max=512"`
	SpentAt  *time.Time `json:"spentAt"`
}

// ExpenseResponse serializes one expense.
type ExpenseResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Amount     int64     `json:"amount"`
	Category   string    `json:"category"`
	Note       string    `json:"note,omitempty"`
	SpentAt    time.Time `json:"spent_at"`
	RecordedBy uint      `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExpenseListResponse wraps a paginated expense listing.
type ExpenseListResponse struct {
	Items      []ExpenseResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewExpenseResponse converts an expense model into a DTO.
func NewExpenseResponse(expense models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:         expense.ID,
		Title:      expense.Title,
		Amount:     expense.Amount,
		Category:   expense.Category,
		Note:       expense.Note,
		SpentAt:    expense.SpentAt,
		RecordedBy: expense.RecordedBy,
		CreatedAt:  expense.CreatedAt,
	}
}

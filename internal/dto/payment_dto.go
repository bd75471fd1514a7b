package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// PaymentCreateRequest records a dues payment for a student and period.
type PaymentCreateRequest struct {
	StudentID uint   `json:"studentId" validate:"required"`
	Period    string `json:"period" validate:"required,len=7"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Method    string `json:"method" validate:"omitempty,oneof=cash transfer"`
	Note      string `json:"note" validate:"omitempty,max=512"`
}

// PaymentUpdateRequest captures partial updates for a payment.
type PaymentUpdateRequest struct {
	Amount *int64  `json:"amount" validate:"omitempty,gt=0"`
	Method *string `json:"method" validate:"omitempty,oneof=cash transfer"`
	Note   *string `json:"note" validate:"omitempty,max=512"`
}

// PaymentResponse serializes one dues payment.
type PaymentResponse struct {
	ID        uint       `json:"id"`
	StudentID *uint      `json:"student_id,omitempty"`
	Period    string     `json:"period"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	Method    string     `json:"method"`
	Reference string     `json:"reference"`
	ProofURL  string     `json:"proof_url,omitempty"`
	Note      string     `json:"note,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PaymentListResponse wraps a paginated payment listing.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// PeriodSummaryResponse aggregates dues collection for one period.
type PeriodSummaryResponse struct {
	Period         string `json:"period"`
	Collected      int64  `json:"collected"`
	Outstanding    int64  `json:"outstanding"`
	PaidStudents   int    `json:"paid_students"`
	ActiveStudents int    `json:"active_students"`
}

// ProofUploadResponse is returned after a payment proof upload.
type ProofUploadResponse struct {
	PaymentID uint   `json:"payment_id"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// NewPaymentResponse converts a payment model into a DTO.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        payment.ID,
		StudentID: payment.StudentID,
		Period:    payment.Period,
		Amount:    payment.Amount,
		Status:    payment.Status,
		Method:    payment.Method,
		Reference: payment.Reference,
		ProofURL:  payment.ProofURL,
		Note:      payment.Note,
		PaidAt:    payment.PaidAt,
		CreatedAt: payment.CreatedAt,
	}
}

package models

import "time"

// Payment statuses.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Payment methods. MethodEventSurplus marks reconciliation transfers created
// when a fundraising event closes above target.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodTransfer     = "transfer"
	PaymentMethodEventSurplus = "event-surplus"
)

// Payment is one dues payment for a student and a monthly period (YYYY-MM).
// Surplus transfers created on event close carry a NULL student id, which
// keeps them outside the one-payment-per-student-per-period constraint.
type Payment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StudentID *uint      `gorm:"index;uniqueIndex:idx_payments_student_period" json:"student_id,omitempty"`
	Period    string     `gorm:"size:7;not null;index;uniqueIndex:idx_payments_student_period" json:"period"`
	Amount    int64      `gorm:"not null" json:"amount"`
	Status    string     `gorm:"size:16;not null;default:unpaid" json:"status"`
	Method    string     `gorm:"size:32" json:"method"`
	Reference string     `gorm:"size:64;uniqueIndex" json:"reference"`
	ProofURL  string     `gorm:"size:512" json:"proof_url,omitempty"`
	Note      string     `gorm:"size:512" json:"note,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

package models

import "time"

// Event statuses.
const (
	EventStatusOpen   = "open"
	EventStatusClosed = "closed"
)

// Event is an ad-hoc fundraiser with a per-student due amount and an
// overall target. Closing an event reconciles its surplus into the fund.
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"size:2000" json:"description,omitempty"`
	DueAmount   int64      `gorm:"not null" json:"due_amount"`
	Target      int64      `gorm:"not null" json:"target"`
	Status      string     `gorm:"size:16;not null;default:open" json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventPayment is one contribution by a student towards an event.
type EventPayment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	PaidAt    time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

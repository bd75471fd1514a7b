package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// EventCreateRequest opens a fundraising event.
type EventCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	DueAmount   int64  `json:"dueAmount" validate:"required,gt=0"`
	Target      int64  `json:"target" validate:"required,gt=0"`
}

// EventUpdateRequest captures partial updates for an open event.
type EventUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DueAmount   *int64  `json:"dueAmount" validate:"omitempty,gt=0"`
	Target      *int64  `json:"target" validate:"omitempty,gt=0"`
}

// EventPaymentRequest records a contribution towards an event.
type EventPaymentRequest struct {
	StudentID uint  `json:"studentId" validate:"required"`
	Amount    int64 `json:"amount" validate:"required,gt=0"`
}

// EventResponse serializes one fundraising event with its running total.
type EventResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	DueAmount   int64      `json:"due_amount"`
	Target      int64      `json:"target"`
	Status      string     `json:"status"`
	Collected   int64      `json:"collected"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventCloseResponse describes the reconciliation outcome of closing an event.
type EventCloseResponse struct {
	Event    EventResponse `json:"event"`
	Surplus  int64         `json:"surplus"`
	Transfer *uint         `json:"transfer_payment_id,omitempty"`
}

// NewEventResponse converts an event model, attaching the collected total.
func NewEventResponse(event models.Event, collected int64) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		DueAmount:   event.DueAmount,
		Target:      event.Target,
		Status:      event.Status,
		Collected:   collected,
		ClosedAt:    event.ClosedAt,
		CreatedAt:   event.CreatedAt,
	}
}

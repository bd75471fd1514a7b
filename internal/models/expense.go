package models

import "time"

// Expense is an outgoing spend from the class fund.
type Expense struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Category   string    `gorm:"size:64" json:"category"`
	Note       string    `gorm:"size:512" json:"note,omitempty"`
	SpentAt    time.Time `gorm:"not null;index" json:"spent_at"`
	RecordedBy uint      `gorm:"not null" json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

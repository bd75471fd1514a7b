package models

import "time"

// Setting holds the single configuration row for the class fund.
type Setting struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	DuesAmount        int64      `gorm:"not null;default:0" json:"dues_amount"`
	ReminderEnabled   bool       `gorm:"not null;default:false" json:"reminder_enabled"`
	ReminderStartDate *time.Time `json:"reminder_start_date,omitempty"`
	ReminderGraceDays int        `gorm:"not null;default:3" json:"reminder_grace_days"`
	ReminderTemplate  string     `gorm:"size:1000" json:"reminder_template"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

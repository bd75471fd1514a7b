package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// SettingsUpdateRequest captures partial updates for the fund settings row.
type SettingsUpdateRequest struct {
	DuesAmount        *int64     `json:"duesAmount" validate:"omitempty,gte=0"`
	ReminderEnabled   *bool      `json:"reminderEnabled"`
	ReminderStartDate *time.Time `json:"reminderStartDate"`
	ReminderGraceDays *int       `json:"reminderGraceDays" validate:"omitempty,gte=0,lte=31"`
	ReminderTemplate  *string    `json:"reminderTemplate" validate:"omitempty,max=1000"`
}

// SettingsResponse serializes the settings row.
type SettingsResponse struct {
	DuesAmount        int64      `json:"dues_amount"`
	ReminderEnabled   bool       `json:"reminder_enabled"`
	ReminderStartDate *time.Time `json:"reminder_start_date,omitempty"`
	ReminderGraceDays int        `json:"reminder_grace_days"`
	ReminderTemplate  string     `json:"reminder_template"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewSettingsResponse converts the settings model into a DTO.
func NewSettingsResponse(setting models.Setting) SettingsResponse {
	return SettingsResponse{
		DuesAmount:        setting.DuesAmount,
		ReminderEnabled:   setting.ReminderEnabled,
		ReminderStartDate: setting.ReminderStartDate,
		ReminderGraceDays: setting.ReminderGraceDays,
		ReminderTemplate:  setting.ReminderTemplate,
		UpdatedAt:         setting.UpdatedAt,
	}
}

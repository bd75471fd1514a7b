package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction constants form the closed enumeration of auditable actions.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionStudentCreate  = "STUDENT_CREATE"
	AuditActionStudentUpdate  = "STUDENT_UPDATE"
	AuditActionStudentDelete  = "STUDENT_DELETE"
	AuditActionPaymentCreate  = "PAYMENT_CREATE"
	AuditActionPaymentUpdate  = "PAYMENT_UPDATE"
	AuditActionPaymentDelete  = "PAYMENT_DELETE"
	AuditActionExpenseCreate  = "EXPENSE_CREATE"
	AuditActionExpenseUpdate  = "EXPENSE_UPDATE"
	AuditActionExpenseDelete  = "EXPENSE_DELETE"
	AuditActionEventCreate    = "EVENT_CREATE"
	AuditActionEventUpdate    = "EVENT_UPDATE"
	AuditActionEventClose     = "EVENT_CLOSE"
	AuditActionSettingsUpdate = "SETTINGS_UPDATE"
	AuditActionOther          = "OTHER"
)

// AuditLog is an append-only record of a sensitive action and its outcome.
// Rows are never updated once written.
type AuditLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	Action       string            `gorm:"size:64;not null;index" json:"action"`
	Resource     string            `gorm:"size:128;not null" json:"resource"`
	ResourceID   *string           `gorm:"size:64" json:"resource_id,omitempty"`
	Context      datatypes.JSONMap `gorm:"type:json" json:"context"`
	IPAddress    string            `gorm:"size:64" json:"ip_address"`
	UserAgent    string            `gorm:"size:512" json:"user_agent"`
	Success      bool              `gorm:"not null" json:"success"`
	ErrorMessage string            `gorm:"size:512" json:"error_message,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}

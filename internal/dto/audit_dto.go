package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// AuditListRequest narrows audit log queries.
type AuditListRequest struct {
	Page     int
	PageSize int
	Action   string
	Resource string
	UserID   uint
	From     *time.Time
	To       *time.Time
}

// AuditResponse serializes one audit entry.
type AuditResponse struct {
	ID           uint                   `json:"id"`
	UserID       uint                   `json:"user_id"`
	Action       string                 `json:"action"`
	Resource     string                 `json:"resource"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	Context      map[string]interface{} `json:"context"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditListResponse wraps a paginated audit listing.
type AuditListResponse struct {
	Items      []AuditResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewAuditResponse converts an audit log model into a DTO.
func NewAuditResponse(entry models.AuditLog) AuditResponse {
	return AuditResponse{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Action:       entry.Action,
		Resource:     entry.Resource,
		ResourceID:   entry.ResourceID,
		Context:      entry.Context,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
		CreatedAt:    entry.CreatedAt,
	}
}

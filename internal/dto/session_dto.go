package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// SessionResponse serializes one active login for the session list.
type SessionResponse struct {
	ID           uint      `json:"id"`
	Device       string    `json:"device"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	IPAddress    string    `json:"ip_address"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsCurrent    bool      `json:"isCurrent"`
}

// NewSessionResponse converts a session model, marking the caller's own session.
func NewSessionResponse(session models.Session, current bool) SessionResponse {
	return SessionResponse{
		ID:           session.ID,
		Device:       session.Device,
		Browser:      session.Browser,
		OS:           session.OS,
		IPAddress:    session.IPAddress,
		LastActivity: session.LastActivity,
		ExpiresAt:    session.ExpiresAt,
		IsCurrent:    current,
	}
}

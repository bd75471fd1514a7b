package models

import "time"

// Session records one logical login. Its lifetime mirrors the issued token:
// logout flips Active, physical deletion happens once ExpiresAt passes.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Token        string    `gorm:"size:512;not null;index" json:"-"`
	Device       string    `gorm:"size:64" json:"device"`
	Browser      string    `gorm:"size:64" json:"browser"`
	OS           string    `gorm:"size:64" json:"os"`
	IPAddress    string    `gorm:"size:64" json:"ip_address"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the session is still usable at the given instant.
func (s Session) Valid(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

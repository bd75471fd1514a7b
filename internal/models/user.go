package models

import "time"

// UserRole enumerates the roles known to the RBAC layer.
type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether the role is part of the closed enumeration.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleMember, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents an authenticated operator of the fund dashboard.
// The password hash is never serialized outward.
type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Username           string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email              string     `gorm:"size:255" json:"email,omitempty"`
	Password           string     `gorm:"size:255;not null" json:"-"`
	FullName           string     `gorm:"size:255" json:"full_name"`
	Role               UserRole   `gorm:"size:32;not null;default:user" json:"role"`
	StudentID          *uint      `gorm:"uniqueIndex" json:"student_id,omitempty"`
	Active             bool       `gorm:"not null;default:true" json:"active"`
	MustChangePassword bool       `gorm:"not null;default:true" json:"must_change_password"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Sanitized returns a copy safe to attach to request context and responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

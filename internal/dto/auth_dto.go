package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token              string       `json:"token"`
	User               UserResponse `json:"user"`
	MustChangePassword bool         `json:"mustChangePassword"`
}

// RegisterRequest creates a new dashboard user. Admin only.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email" validate:"omitempty,email"`
	FullName  string `json:"fullName" validate:"omitempty,max=255"`
	Role      string `json:"role" validate:"omitempty,oneof=user member admin"`
	StudentID *uint  `json:"studentId"`
}

// UserUpdateRequest captures partial updates for a user.
type UserUpdateRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"fullName" validate:"omitempty,max=255"`
	Role      *string `json:"role" validate:"omitempty,oneof=user member admin"`
	Active    *bool   `json:"active"`
	StudentID *uint   `json:"studentId"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// BootstrapRequest creates the first administrator on an empty system.
type BootstrapRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// UserResponse serializes a user without its password hash.
type UserResponse struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	FullName           string     `json:"full_name"`
	Role               string     `json:"role"`
	StudentID          *uint      `json:"student_id,omitempty"`
	Active             bool       `json:"active"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewUserResponse converts a user model into its outward representation.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		FullName:           user.FullName,
		Role:               string(user.Role),
		StudentID:          user.StudentID,
		Active:             user.Active,
		MustChangePassword: user.MustChangePassword,
		LastLogin:          user.LastLogin,
		CreatedAt:          user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of user models.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

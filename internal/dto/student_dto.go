package dto

import (
	"time"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

// StudentCreateRequest registers a class member.
type StudentCreateRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,min=8,max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

// StudentUpdateRequest captures partial updates for a student.
type StudentUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone  *string `json:"phone" validate:"omitempty,min=8,max=32"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Active *bool   `json:"active"`
}

// StudentResponse serializes a student record.
type StudentResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		Name:      student.Name,
		Phone:     student.Phone,
		Email:     student.Email,
		Active:    student.Active,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}

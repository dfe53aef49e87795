package dto

import (
	"strings"

	"github.com/baechuer/iset-library/internal/domain"
)

// -------- Login --------

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// Validate only checks presence. Format problems surface as a failed login,
// never as a field-level hint.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)

	return validationErrors(r, func(...string) *domain.Error {
		return domain.ErrInvalidRequest()
	})
}

// -------- Student management --------

type CreateStudentRequest struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,min=6,password_bytes"`
	FirstName  string `json:"firstName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	StudentID  string `json:"studentId" validate:"max=32"`
	Department string `json:"department" validate:"max=100"`
}

func (r *CreateStudentRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	return validationErrors(r, domain.ErrMissingFields)
}

// UpdateStudentRequest replaces a profile. An omitted password keeps the
// current one.
type UpdateStudentRequest struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"omitempty,min=6,password_bytes"`
	FirstName  string `json:"firstName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	StudentID  string `json:"studentId" validate:"max=32"`
	Department string `json:"department" validate:"max=100"`
}

func (r *UpdateStudentRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	return validationErrors(r, domain.ErrMissingFields)
}

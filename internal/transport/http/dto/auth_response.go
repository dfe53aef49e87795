package dto

import (
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

// UserView is the public profile. There is deliberately no password field.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	StudentID  string    `json:"studentId,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func ToUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		StudentID:  u.StudentID,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}

func ToUserViews(users []domain.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserView(u))
	}
	return out
}

type LoginResponse struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
	Token   string   `json:"token"`
}

package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

const userColumns = `id, username, password_hash, role, email, first_name, last_name, student_id, department, created_at`

type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Email        string
	FirstName    sql.NullString
	LastName     sql.NullString
	StudentID    sql.NullString
	Department   sql.NullString
	CreatedAt    time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUserRow(s scanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Username,
		&ur.PasswordHash,
		&ur.Role,
		&ur.Email,
		&ur.FirstName,
		&ur.LastName,
		&ur.StudentID,
		&ur.Department,
		&ur.CreatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:           ur.ID,
		Username:     ur.Username,
		PasswordHash: ur.PasswordHash,
		Role:         ur.Role,
		Email:        ur.Email,
		FirstName:    ur.FirstName.String,
		LastName:     ur.LastName.String,
		StudentID:    ur.StudentID.String,
		Department:   ur.Department.String,
		CreatedAt:    ur.CreatedAt,
	}
}

// nullable stores empty profile fields as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

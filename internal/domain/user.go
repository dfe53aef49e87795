package domain

import "time"

// User is a row of the credential store. Profile fields are empty for admins.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Email        string
	FirstName    string
	LastName     string
	StudentID    string
	Department   string
	CreatedAt    time.Time
}

func (u User) IsStudent() bool { return u.Role == string(RoleStudent) }

package domain

type Role string

const (
	// Admin manages student accounts and the catalog. Provisioned out of band only.
	RoleAdmin Role = "admin"
	// Student borrows and returns books for themselves.
	RoleStudent Role = "student"
)

func IsValidRole(r string) bool {
	return r == string(RoleAdmin) || r == string(RoleStudent)
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type seedUser struct {
	Username   string
	Email      string
	Role       domain.Role
	Pass       string
	FirstName  string
	LastName   string
	StudentID  string
	Department string
}

var devSeeds = []seedUser{
	{Username: "admin", Email: "admin@iset.tn", Role: domain.RoleAdmin, Pass: "admin123",
		FirstName: "Admin", LastName: "User", Department: "Administration"},
	{Username: "fadwatouati58", Email: "fadwatouati58@gmail.com", Role: domain.RoleStudent, Pass: "student123",
		FirstName: "Touati", LastName: "Fadwa", StudentID: "ET2025001", Department: "Informatique"},
	{Username: "marie", Email: "marie@iset.tn", Role: domain.RoleStudent, Pass: "student123",
		FirstName: "Marie", LastName: "Laurent", StudentID: "ET2025002", Department: "Informatique"},
}

// SeedUsers creates the development accounts. Works against any repo with
// Create, so it serves both the postgres and in-memory stores. Restart safe:
// duplicates are skipped. Returns how many rows were created.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) int {
	created := 0
	for _, s := range devSeeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed: hash failed")
			continue
		}

		_, err = repo.Create(ctx, domain.User{
			ID:           uuid.NewString(),
			Username:     s.Username,
			PasswordHash: hash,
			Role:         string(s.Role),
			Email:        s.Email,
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			StudentID:    s.StudentID,
			Department:   s.Department,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			if !domain.Is(err, "duplicate_email") {
				logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed: create failed")
			}
			continue
		}
		created++
	}

	logger.Logger.Info().Int("created", created).Msg("seed: users seeded")
	return created
}

// SeedBorrowerEmail is the seeded student who starts with a book on loan.
const SeedBorrowerEmail = "fadwatouati58@gmail.com"

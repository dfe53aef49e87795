// Command provision creates an administrator account directly in the
// credential store. It is the only way an admin comes into existence.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/baechuer/iset-library/internal/config"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/infrastructure/db/postgres"
	"github.com/baechuer/iset-library/internal/infrastructure/security"
)

const minPasswordLength = 6

type adminInput struct {
	Email    string
	Password string
	Username string
}

type creator interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type hasher interface {
	Hash(password string) (string, error)
}

// provisionAdmin validates in and stores a new admin row.
func provisionAdmin(ctx context.Context, repo creator, h hasher, in adminInput) (domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if in.Email == "" || in.Password == "" {
		return domain.User{}, errors.New("-email and -password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return domain.User{}, fmt.Errorf("invalid email %q", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if in.Username == "" {
		in.Username, _, _ = strings.Cut(in.Email, "@")
	}

	hash, err := h.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	return repo.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         string(domain.RoleAdmin),
		Email:        in.Email,
		CreatedAt:    time.Now().UTC(),
	})
}

type opener func(dsn string) (*sql.DB, error)

func run(args []string, stdout, stderr io.Writer, getenv func(string) string, open opener) int {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in adminInput
	dsn := fs.String("dsn", getenv("DB_ADDR"), "postgres DSN (defaults to DB_ADDR)")
	cost := fs.Int("cost", security.DefaultCost, "bcrypt cost")
	fs.StringVar(&in.Email, "email", "", "admin email (required)")
	fs.StringVar(&in.Password, "password", "", "admin password (required)")
	fs.StringVar(&in.Username, "username", "", "display name (defaults to the email local part)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dsn == "" {
		fmt.Fprintln(stderr, "provision: no database; set DB_ADDR or pass -dsn")
		return 2
	}

	db, err := open(*dsn)
	if err != nil {
		fmt.Fprintf(stderr, "provision: %v\n", err)
		return 1
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		fmt.Fprintf(stderr, "provision: schema: %v\n", err)
		return 1
	}

	u, err := provisionAdmin(ctx, postgres.NewUserRepo(db, postgres.DefaultQueryTimeout), security.NewBcryptHasher(*cost), in)
	if err != nil {
		fmt.Fprintf(stderr, "provision: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "admin created: id=%s email=%s\n", u.ID, u.Email)
	return 0
}

func main() {
	_ = godotenv.Load()

	open := func(dsn string) (*sql.DB, error) { return config.NewDB(dsn, false) }
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv, open))
}

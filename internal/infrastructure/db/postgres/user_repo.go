package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/iset-library/internal/domain"
)

const (
	DefaultQueryTimeout = 3 * time.Second

	pgUniqueViolation = "23505"
)

type UserRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewUserRepo(db *sql.DB, timeout time.Duration) *UserRepo {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &UserRepo{db: db, timeout: timeout}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// mapErr turns driver errors into domain errors. ctx is the per-operation context.
func mapErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrDBTimeout(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDuplicateEmail()
	}
	return domain.ErrDBUnavailable(err)
}

func (r *UserRepo) getOne(ctx context.Context, q string, args ...any) (domain.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, mapErr(ctx, err)
	}
	return toDomainUser(ur), nil
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND role = $2
LIMIT 1;
`
	return r.getOne(ctx, q, email, role)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	return r.getOne(ctx, q, id)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if !domain.IsValidRole(u.Role) {
		return domain.User{}, domain.ErrInvalidRole(u.Role)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO users (id, username, password_hash, role, email, first_name, last_name, student_id, department, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + userColumns + `;
`
	return r.getOne(ctx, q,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Email,
		nullable(u.FirstName), nullable(u.LastName), nullable(u.StudentID), nullable(u.Department),
		u.CreatedAt,
	)
}

// Replace overwrites the mutable profile columns. id, role and created_at are kept.
func (r *UserRepo) Replace(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if strings.TrimSpace(u.ID) == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
UPDATE users
SET username = $2,
    password_hash = $3,
    email = $4,
    first_name = $5,
    last_name = $6,
    student_id = $7,
    department = $8
WHERE id = $1
RETURNING ` + userColumns + `;
`
	return r.getOne(ctx, q,
		u.ID, u.Username, u.PasswordHash, u.Email,
		nullable(u.FirstName), nullable(u.LastName), nullable(u.StudentID), nullable(u.Department),
	)
}

func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE role = $1
ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, role)
	if err != nil {
		return nil, mapErr(ctx, err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		ur, err := scanUserRow(rows)
		if err != nil {
			return nil, mapErr(ctx, err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(ctx, err)
	}
	return out, nil
}

func (r *UserRepo) DeleteByIDAndRole(ctx context.Context, id, role string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrUserNotFound()
	}

	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	const q = `
DELETE FROM users
WHERE id = $1 AND role = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, role)
	if err != nil {
		return mapErr(ctx, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// Ping backs /readyz.
func (r *UserRepo) Ping(ctx context.Context) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return mapErr(ctx, err)
	}
	return nil
}

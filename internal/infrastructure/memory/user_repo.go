package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/baechuer/iset-library/internal/domain"
)

// UserRepo is the in-memory credential store used in dev and tests.
// Email uniqueness is enforced across all roles, like the SQL constraint.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepo) GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	u := r.byID[id]
	if u.Role != role {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if !domain.IsValidRole(u.Role) {
		return domain.User{}, domain.ErrInvalidRole(u.Role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrDuplicateEmail()
	}
	if _, exists := r.byID[u.ID]; exists {
		return domain.User{}, domain.ErrInternal(nil)
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) Replace(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if owner, taken := r.byEmail[u.Email]; taken && owner != u.ID {
		return domain.User{}, domain.ErrDuplicateEmail()
	}

	// id, role and creation time are not replaceable
	u.Role = cur.Role
	u.CreatedAt = cur.CreatedAt

	delete(r.byEmail, cur.Email)
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

// ListByRole returns users ordered by creation time, then id.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0)
	for _, u := range r.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *UserRepo) DeleteByIDAndRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.Role != role {
		return domain.ErrUserNotFound()
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

// Ping lets the in-memory store stand in for a database in readiness checks.
func (r *UserRepo) Ping(ctx context.Context) error { return nil }

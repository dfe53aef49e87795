package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/logger"
)

// The listing is stored under the current generation. Invalidate bumps the
// generation, so a Set carrying an older one writes a key no reader uses.
const (
	studentGenKey     = "students:gen"
	studentListPrefix = "students:all:"
)

func studentListKey(gen int64) string {
	return fmt.Sprintf("%s%d", studentListPrefix, gen)
}

// cachedStudent is the cached shape. Password hashes never leave the database.
type cachedStudent struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	StudentID  string    `json:"student_id,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StudentListCache implements auth.StudentListCache. Every Redis failure is
// treated as a miss so the database stays the source of truth.
type StudentListCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewStudentListCache(c *Client, ttl time.Duration) *StudentListCache {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StudentListCache{rdb: rdb, ttl: ttl}
}

func (c *StudentListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, studentGenKey).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached listing and the generation it was looked up under.
// A negative generation means the cache is unusable and Set must be skipped.
func (c *StudentListCache) Get(ctx context.Context) ([]domain.User, int64, bool) {
	if c.rdb == nil {
		return nil, -1, false
	}
	gen, err := c.generation(ctx)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("student cache generation read failed")
		return nil, -1, false
	}

	key := studentListKey(gen)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("student cache get failed")
		}
		return nil, gen, false
	}

	var rows []cachedStudent
	if err := json.Unmarshal(raw, &rows); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, gen, false
	}

	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.User{
			ID:         r.ID,
			Username:   r.Username,
			Role:       r.Role,
			Email:      r.Email,
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			StudentID:  r.StudentID,
			Department: r.Department,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, gen, true
}

// Set stores users under gen, the generation returned by the Get that
// preceded the store read.
func (c *StudentListCache) Set(ctx context.Context, gen int64, users []domain.User) {
	if c.rdb == nil || gen < 0 {
		return
	}
	rows := make([]cachedStudent, 0, len(users))
	for _, u := range users {
		rows = append(rows, cachedStudent{
			ID:         u.ID,
			Username:   u.Username,
			Role:       u.Role,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			StudentID:  u.StudentID,
			Department: u.Department,
			CreatedAt:  u.CreatedAt,
		})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, studentListKey(gen), raw, c.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("student cache set failed")
	}
}

func (c *StudentListCache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, studentGenKey).Err(); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("student cache invalidate failed")
	}
}

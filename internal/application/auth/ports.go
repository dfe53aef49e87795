package auth

import (
	"context"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

/*
UserRepo
--------
Persistence port for the credential store.
Only describes WHAT the service needs, not HOW it's stored.
Implementations must enforce email uniqueness themselves and report a
violation as domain.ErrDuplicateEmail.
*/
type UserRepo interface {
	GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Replace(ctx context.Context, u domain.User) (domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)

	// DeleteByIDAndRole removes the row only when both match.
	DeleteByIDAndRole(ctx context.Context, id, role string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

/*
TokenSigner
-----------
Issues and verifies session tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, role string) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
EventPublisher
--------------
Publishes account lifecycle events to RabbitMQ.
Delivery is best effort; a failed publish never fails the request.
*/
type EventPublisher interface {
	PublishStudentRegistered(ctx context.Context, evt StudentRegisteredEvent) error
	PublishStudentDeleted(ctx context.Context, evt StudentDeletedEvent) error
}

type StudentRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type StudentDeletedEvent struct {
	UserID    string    `json:"user_id"`
	DeletedBy string    `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

/*
StudentListCache
----------------
Optional read-through cache for the student listing. Get reports the
generation it read; Set must pass that same generation so a listing read
before an Invalidate can never be cached after it.
*/
type StudentListCache interface {
	Get(ctx context.Context) (users []domain.User, gen int64, ok bool)
	Set(ctx context.Context, gen int64, users []domain.User)
	Invalidate(ctx context.Context)
}

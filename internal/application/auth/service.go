package auth

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

// MinPasswordLength applies to passwords set through student management.
const MinPasswordLength = 6

// Actor is the caller of a privileged operation, taken from verified token
// claims only. Client-supplied identity fields are never trusted.
type Actor struct {
	UserID string
	Role   string
}

// Auditor receives security-relevant outcomes. *audit.Logger satisfies it.
type Auditor interface {
	LoginSuccess(ctx context.Context, userID, email, role string)
	LoginFailed(ctx context.Context, email, role, reason string)
	StudentRegistered(ctx context.Context, actorID, studentID, email string)
	StudentUpdated(ctx context.Context, actorID, studentID string)
	StudentDeleted(ctx context.Context, actorID, studentID string)
}

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner
	pub    EventPublisher
	cache  StudentListCache
	audit  Auditor

	onPublishErr func(event string, err error)
	now          func() time.Time
	newID        func() string
}

type LoginResult struct {
	User  domain.User
	Token string
}

func NewService(users UserRepo, hasher PasswordHasher, signer TokenSigner) *Service {
	return &Service{
		users:        users,
		hasher:       hasher,
		signer:       signer,
		pub:          noopPublisher{},
		cache:        noopCache{},
		audit:        noopAuditor{},
		onPublishErr: func(string, error) {},
		now:          time.Now,
		newID:        newUserID,
	}
}

func (s *Service) WithPublisher(pub EventPublisher, onErr func(event string, err error)) *Service {
	if pub != nil {
		s.pub = pub
	}
	if onErr != nil {
		s.onPublishErr = onErr
	}
	return s
}

func (s *Service) WithCache(c StudentListCache) *Service {
	if c != nil {
		s.cache = c
	}
	return s
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

func requireAdmin(actor Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return domain.ErrForbidden()
	}
	if actor.Role != string(domain.RoleAdmin) {
		return domain.ErrInsufficientRole(string(domain.RoleAdmin))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type noopPublisher struct{}

func (noopPublisher) PublishStudentRegistered(context.Context, StudentRegisteredEvent) error {
	return nil
}
func (noopPublisher) PublishStudentDeleted(context.Context, StudentDeletedEvent) error { return nil }

type noopCache struct{}

func (noopCache) Get(context.Context) ([]domain.User, int64, bool) { return nil, -1, false }
func (noopCache) Set(context.Context, int64, []domain.User)        {}
func (noopCache) Invalidate(context.Context)                       {}

type noopAuditor struct{}

func (noopAuditor) LoginSuccess(context.Context, string, string, string)      {}
func (noopAuditor) LoginFailed(context.Context, string, string, string)       {}
func (noopAuditor) StudentRegistered(context.Context, string, string, string) {}
func (noopAuditor) StudentUpdated(context.Context, string, string)            {}
func (noopAuditor) StudentDeleted(context.Context, string, string)            {}

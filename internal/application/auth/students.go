package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/iset-library/internal/domain"
)

type RegisterStudentInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	StudentID  string
	Department string
}

// UpdateStudentInput is a full replacement of the profile. An empty Password
// keeps the current hash.
type UpdateStudentInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      string
	StudentID  string
	Department string
}

// RegisterStudent creates a student account. The role is always student,
// whatever the client sent. Email uniqueness is enforced by the repository.
func (s *Service) RegisterStudent(ctx context.Context, actor Actor, in RegisterStudentInput) (domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.User{}, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return domain.User{}, domain.ErrMissingFields(missing...)
	}
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, domain.ErrInvalidField("password", "too short")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, hashErr(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           s.newID(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         string(domain.RoleStudent),
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		StudentID:    strings.TrimSpace(in.StudentID),
		Department:   strings.TrimSpace(in.Department),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.User{}, err
	}

	s.cache.Invalidate(ctx)
	s.audit.StudentRegistered(ctx, actor.UserID, created.ID, created.Email)

	if err := s.pub.PublishStudentRegistered(ctx, StudentRegisteredEvent{
		UserID:    created.ID,
		Email:     created.Email,
		Username:  created.Username,
		CreatedAt: created.CreatedAt,
	}); err != nil {
		s.onPublishErr("student.registered", err)
	}

	return created, nil
}

// ListStudents returns every student profile.
func (s *Service) ListStudents(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	cached, gen, ok := s.cache.Get(ctx)
	if ok {
		return cached, nil
	}

	users, err := s.users.ListByRole(ctx, string(domain.RoleStudent))
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, gen, users)
	return users, nil
}

// UpdateStudent replaces a student's profile. Non-student rows are reported as
// not found so this path can never touch an admin.
func (s *Service) UpdateStudent(ctx context.Context, actor Actor, id string, in UpdateStudentInput) (domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.User{}, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrStudentNotFound()
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return domain.User{}, domain.ErrMissingFields(missing...)
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrStudentNotFound()
		}
		return domain.User{}, err
	}
	if !current.IsStudent() {
		return domain.User{}, domain.ErrStudentNotFound()
	}

	next := current
	next.Username = in.Username
	next.Email = in.Email
	next.FirstName = strings.TrimSpace(in.FirstName)
	next.LastName = strings.TrimSpace(in.LastName)
	next.StudentID = strings.TrimSpace(in.StudentID)
	next.Department = strings.TrimSpace(in.Department)

	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return domain.User{}, domain.ErrInvalidField("password", "too short")
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return domain.User{}, hashErr(err)
		}
		next.PasswordHash = hash
	}

	updated, err := s.users.Replace(ctx, next)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrStudentNotFound()
		}
		return domain.User{}, err
	}

	s.cache.Invalidate(ctx)
	s.audit.StudentUpdated(ctx, actor.UserID, updated.ID)
	return updated, nil
}

// DeleteStudent removes exactly one student row. Deleting an unknown or
// already-deleted id fails with not found every time.
func (s *Service) DeleteStudent(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrStudentNotFound()
	}

	if err := s.users.DeleteByIDAndRole(ctx, id, string(domain.RoleStudent)); err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrStudentNotFound()
		}
		return err
	}

	s.cache.Invalidate(ctx)
	s.audit.StudentDeleted(ctx, actor.UserID, id)

	if err := s.pub.PublishStudentDeleted(ctx, StudentDeletedEvent{
		UserID:    id,
		DeletedBy: actor.UserID,
		DeletedAt: s.now().UTC(),
	}); err != nil {
		s.onPublishErr("student.deleted", err)
	}
	return nil
}

// hashErr keeps domain errors from the hasher (e.g. an over-long password)
// and reports anything else as a hashing failure.
func hashErr(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrHashFailed(err)
}

package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

type Service struct {
	books BookRepo
	users UserLookup
	audit Auditor
	now   func() time.Time
}

func NewService(books BookRepo) *Service {
	return &Service{books: books, audit: noopAuditor{}, now: time.Now}
}

// WithUsers makes Borrow confirm the caller's account still exists, so a
// token outliving its student cannot open a loan.
func (s *Service) WithUsers(u UserLookup) *Service {
	if u != nil {
		s.users = u
	}
	return s
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Filter narrows a listing. A nil Available matches every book; Query matches
// title, author, ISBN or category case-insensitively.
type Filter struct {
	Available *bool
	Query     string
}

func (f Filter) match(b domain.Book) bool {
	if f.Available != nil && b.Available != *f.Available {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{b.Title, b.Author, b.ISBN, b.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Book, error) {
	all, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, len(all))
	for _, b := range all {
		if f.match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Get returns one book.
func (s *Service) Get(ctx context.Context, id string) (domain.Book, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Book{}, domain.ErrBookNotFound()
	}
	return s.books.GetByID(ctx, id)
}

// BorrowedBy lists the books currently held by userID.
func (s *Service) BorrowedBy(ctx context.Context, userID string) ([]domain.Book, error) {
	all, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Book{}
	for _, b := range all {
		if !b.Available && b.BorrowedBy == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Borrow lends an available book to a student for domain.LoanPeriod.
func (s *Service) Borrow(ctx context.Context, userID, role, bookID string) (domain.Book, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Book{}, domain.ErrForbidden()
	}
	if role != string(domain.RoleStudent) {
		return domain.Book{}, domain.ErrInsufficientRole(string(domain.RoleStudent))
	}
	if err := s.checkBorrower(ctx, userID); err != nil {
		return domain.Book{}, err
	}

	due := s.now().UTC().Add(domain.LoanPeriod)
	b, err := s.books.Update(ctx, bookID, func(b *domain.Book) error {
		if !b.Available {
			return domain.ErrBookUnavailable()
		}
		b.Available = false
		b.BorrowedBy = userID
		b.ReturnDate = &due
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}

	s.audit.BookBorrowed(ctx, userID, b.ID)
	return b, nil
}

func (s *Service) checkBorrower(ctx context.Context, userID string) error {
	if s.users == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrTokenInvalid()
		}
		return err
	}
	if u.Role != string(domain.RoleStudent) {
		return domain.ErrTokenInvalid()
	}
	return nil
}

// Return gives a book back. Only the borrower or an admin may do it.
func (s *Service) Return(ctx context.Context, userID, role, bookID string) (domain.Book, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Book{}, domain.ErrForbidden()
	}

	b, err := s.books.Update(ctx, bookID, func(b *domain.Book) error {
		if b.Available {
			return domain.ErrBookNotBorrowed()
		}
		if role != string(domain.RoleAdmin) && b.BorrowedBy != userID {
			return domain.ErrNotBorrower()
		}
		b.Available = true
		b.BorrowedBy = ""
		b.ReturnDate = nil
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}

	s.audit.BookReturned(ctx, userID, b.ID)
	return b, nil
}

type noopAuditor struct{}

func (noopAuditor) BookBorrowed(context.Context, string, string) {}
func (noopAuditor) BookReturned(context.Context, string, string) {}

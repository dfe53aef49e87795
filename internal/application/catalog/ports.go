package catalog

import (
	"context"

	"github.com/baechuer/iset-library/internal/domain"
)

// BookRepo is the persistence port for the book catalog.
type BookRepo interface {
	List(ctx context.Context) ([]domain.Book, error)
	GetByID(ctx context.Context, id string) (domain.Book, error)

	// Update loads the book, applies fn and stores the result atomically.
	// If fn returns an error nothing is written and that error is returned.
	Update(ctx context.Context, id string, fn func(b *domain.Book) error) (domain.Book, error)
}

// UserLookup resolves the account behind a token. Deleted accounts report
// user_not_found.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

type Auditor interface {
	BookBorrowed(ctx context.Context, userID, bookID string)
	BookReturned(ctx context.Context, actorID, bookID string)
}

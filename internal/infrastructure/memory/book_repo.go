package memory

import (
	"context"
	"sync"

	"github.com/baechuer/iset-library/internal/domain"
)

// BookRepo keeps the catalog in insertion order.
type BookRepo struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Book
}

func NewBookRepo(books ...domain.Book) *BookRepo {
	r := &BookRepo{byID: make(map[string]domain.Book, len(books))}
	for _, b := range books {
		if _, dup := r.byID[b.ID]; !dup {
			r.order = append(r.order, b.ID)
		}
		r.byID[b.ID] = b
	}
	return r
}

func (r *BookRepo) List(ctx context.Context) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Book, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyBook(r.byID[id]))
	}
	return out, nil
}

func (r *BookRepo) GetByID(ctx context.Context, id string) (domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound()
	}
	return copyBook(b), nil
}

func (r *BookRepo) Update(ctx context.Context, id string, fn func(b *domain.Book) error) (domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound()
	}
	next := copyBook(cur)
	if err := fn(&next); err != nil {
		return domain.Book{}, err
	}
	next.ID = cur.ID
	r.byID[id] = next
	return copyBook(next), nil
}

// copyBook detaches ReturnDate so callers never share the stored pointer.
func copyBook(b domain.Book) domain.Book {
	if b.ReturnDate != nil {
		t := *b.ReturnDate
		b.ReturnDate = &t
	}
	return b
}

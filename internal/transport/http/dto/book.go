package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

type BookView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	ISBN        string     `json:"isbn"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Available   bool       `json:"available"`
	BorrowedBy  string     `json:"borrowedBy,omitempty"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
}

func ToBookView(b domain.Book) BookView {
	return BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Category:    b.Category,
		Description: b.Description,
		CoverImage:  b.CoverImage,
		Available:   b.Available,
		BorrowedBy:  b.BorrowedBy,
		ReturnDate:  b.ReturnDate,
	}
}

func ToBookViews(books []domain.Book) []BookView {
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookView(b))
	}
	return out
}

// ParseAvailable reads the ?available= filter. Empty means no filter.
func ParseAvailable(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.ErrInvalidField("available", "must be true or false")
	}
	return &v, nil
}

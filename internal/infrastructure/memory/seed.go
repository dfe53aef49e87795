package memory

import (
	"time"

	"github.com/baechuer/iset-library/internal/domain"
)

// SeedBooks returns the starter catalog. One title is already on loan to
// borrowerID and due a week after now; pass an empty borrowerID to get an
// all-available catalog.
func SeedBooks(now time.Time, borrowerID string) []domain.Book {
	books := []domain.Book{
		{
			ID:          "book-1",
			Title:       "L'Étranger",
			Author:      "Albert Camus",
			ISBN:        "978-2070360024",
			Category:    "Fiction",
			CoverImage:  "https://images.unsplash.com/photo-1544947950-fa07a98d237f?auto=format&fit=crop&q=80&w=800",
			Description: "Un roman philosophique écrit par Albert Camus publié en 1942.",
			Available:   true,
		},
		{
			ID:          "book-2",
			Title:       "Le Petit Prince",
			Author:      "Antoine de Saint-Exupéry",
			ISBN:        "978-2070408504",
			Category:    "Fiction",
			CoverImage:  "https://images.unsplash.com/photo-1543002588-bfa74002ed7e?auto=format&fit=crop&q=80&w=800",
			Description: "Un conte poétique et philosophique sous l'apparence d'un conte pour enfants.",
			Available:   true,
		},
		{
			ID:          "book-3",
			Title:       "Madame Bovary",
			Author:      "Gustave Flaubert",
			ISBN:        "978-2253004868",
			Category:    "Fiction",
			CoverImage:  "https://images.unsplash.com/photo-1541963463532-d68292c34b19?auto=format&fit=crop&q=80&w=800",
			Description: "Un roman réaliste de Gustave Flaubert paru en 1857.",
			Available:   true,
		},
	}

	if borrowerID != "" {
		due := now.UTC().AddDate(0, 0, 7)
		books[2].Available = false
		books[2].BorrowedBy = borrowerID
		books[2].ReturnDate = &due
	}
	return books
}

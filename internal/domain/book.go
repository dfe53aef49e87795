package domain

import "time"

// LoanPeriod is how long a student may keep a borrowed book.
const LoanPeriod = 14 * 24 * time.Hour

type Book struct {
	ID          string
	Title       string
	Author      string
	ISBN        string
	Category    string
	Description string
	CoverImage  string
	Available   bool
	BorrowedBy  string
	ReturnDate  *time.Time
}

package catalog

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a book or author does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor lacks the required capability.
var ErrForbidden = errors.New("forbidden")

// ErrValidation is the sentinel wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a user-correctable problem with a single input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Book is the stored representation of a catalog book.
type Book struct {
	ID              int64
	Title           string
	Description     string // rich description field
	Content         string // legacy content body, read-time fallback for Description
	ISBN            string
	PublicationYear string
	AuthorIDs       []int64 // selection order preserved, duplicates tolerated
	LegacyAuthor    string  // deprecated single-name field, never written
	CreatedAt       time.Time
}

// Author is a named entity referenced by zero or more books.
type Author struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// AuthorRef is the resolved {id, name} pair embedded in book responses.
type AuthorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookSummary is the list-view projection. It has no description field.
type BookSummary struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Authors         []AuthorRef `json:"authors"`
	AuthorIDs       []int64     `json:"author_ids"`
	ISBN            string      `json:"isbn"`
	PublicationYear string      `json:"publication_year"`
}

// BookDetail is the single-record projection including the description.
type BookDetail struct {
	BookSummary
	Description  string `json:"description"`
	LegacyAuthor string `json:"author,omitempty"`
}

// BookInput carries the complete desired state for a book create or
// update. Updates are full overwrites: omitted optional fields clear the
// stored value.
type BookInput struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	ISBN            string  `json:"isbn"`
	PublicationYear string  `json:"publication_year"`
	AuthorIDs       []int64 `json:"author_ids"`
}

// AuthorInput carries the fields for author creation.
type AuthorInput struct {
	Name string `json:"name" validate:"required"`
}

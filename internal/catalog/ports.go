package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository defines the contract for catalog data storage.
type Repository interface {
	// CreateBook persists a new book and assigns its ID and CreatedAt.
	CreateBook(ctx context.Context, b *Book) error
	// GetBook returns a book by id, or ErrNotFound.
	GetBook(ctx context.Context, id int64) (Book, error)
	// ListBooks returns all books, newest-created first.
	ListBooks(ctx context.Context) ([]Book, error)
	// UpdateBook overwrites an existing book in full, or returns ErrNotFound.
	UpdateBook(ctx context.Context, b *Book) error
	// DeleteBook permanently removes a book, or returns ErrNotFound.
	DeleteBook(ctx context.Context, id int64) error

	// CreateAuthor persists a new author and assigns its ID and CreatedAt.
	CreateAuthor(ctx context.Context, a *Author) error
	// GetAuthor returns an author by id, or ErrNotFound.
	GetAuthor(ctx context.Context, id int64) (Author, error)
	// ListAuthors returns all authors ordered by name ascending.
	ListAuthors(ctx context.Context) ([]Author, error)
	// GetAuthorsByIDs returns the authors that exist among ids. Missing
	// ids are omitted from the result, never reported as an error.
	GetAuthorsByIDs(ctx context.Context, ids []int64) (map[int64]Author, error)
}

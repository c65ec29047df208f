package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateBook(ctx context.Context, b *Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO books (title, description, content, legacy_author, isbn, publication_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, b.Title, b.Description, b.Content, b.LegacyAuthor, b.ISBN, b.PublicationYear).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertAuthorLinks(ctx, tx, b.ID, b.AuthorIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepo) GetBook(ctx context.Context, id int64) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	err := r.db.QueryRow(ctx, `
		SELECT id, title, description, content, legacy_author, isbn, publication_year, created_at
		FROM books
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Title, &b.Description, &b.Content, &b.LegacyAuthor, &b.ISBN, &b.PublicationYear, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, err
	}

	b.AuthorIDs, err = r.bookAuthorIDs(ctx, id)
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ListBooks(ctx context.Context) ([]Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, content, legacy_author, isbn, publication_year, created_at
		FROM books
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Content, &b.LegacyAuthor, &b.ISBN, &b.PublicationYear, &b.CreatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range books {
		books[i].AuthorIDs, err = r.bookAuthorIDs(ctx, books[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return books, nil
}

func (r *PostgresRepo) UpdateBook(ctx context.Context, b *Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE books
		SET title = $2, description = $3, isbn = $4, publication_year = $5
		WHERE id = $1
	`, b.ID, b.Title, b.Description, b.ISBN, b.PublicationYear)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Author links are replaced wholesale; updates are full overwrites.
	if _, err := tx.Exec(ctx, `DELETE FROM book_authors WHERE book_id = $1`, b.ID); err != nil {
		return err
	}
	if err := insertAuthorLinks(ctx, tx, b.ID, b.AuthorIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepo) DeleteBook(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) CreateAuthor(ctx context.Context, a *Author) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO authors (name)
		VALUES ($1)
		RETURNING id, created_at
	`, a.Name).Scan(&a.ID, &a.CreatedAt)
}

func (r *PostgresRepo) GetAuthor(ctx context.Context, id int64) (Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Author
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM authors WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Author{}, ErrNotFound
	}
	if err != nil {
		return Author{}, err
	}
	return a, nil
}

func (r *PostgresRepo) ListAuthors(ctx context.Context) ([]Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at FROM authors ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *PostgresRepo) GetAuthorsByIDs(ctx context.Context, ids []int64) (map[int64]Author, error) {
	found := make(map[int64]Author, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at FROM authors WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		found[a.ID] = a
	}
	return found, rows.Err()
}

// bookAuthorIDs returns the stored author ids for a book in selection
// order. The position column keeps duplicates addressable.
func (r *PostgresRepo) bookAuthorIDs(ctx context.Context, bookID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT author_id FROM book_authors WHERE book_id = $1 ORDER BY position ASC
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertAuthorLinks(ctx context.Context, tx pgx.Tx, bookID int64, authorIDs []int64) error {
	for pos, authorID := range authorIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_authors (book_id, position, author_id)
			VALUES ($1, $2, $3)
		`, bookID, pos, authorID); err != nil {
			return err
		}
	}
	return nil
}

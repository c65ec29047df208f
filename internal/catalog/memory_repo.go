package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the reference Repository implementation: mutex-guarded
// maps with a monotonically increasing id counter. It backs the test
// suite and the standalone (no database) server mode. Concurrent updates
// to the same record are last-write-wins.
type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	books   map[int64]Book
	authors map[int64]Author
	seq     map[int64]int64 // book id -> creation sequence, for newest-first listing
	nextSeq int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:  1,
		books:   make(map[int64]Book),
		authors: make(map[int64]Author),
		seq:     make(map[int64]int64),
	}
}

func (r *MemoryRepo) CreateBook(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	r.books[b.ID] = cloneBook(*b)
	r.seq[b.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

func (r *MemoryRepo) GetBook(_ context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return cloneBook(b), nil
}

func (r *MemoryRepo) ListBooks(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, cloneBook(b))
	}
	sort.Slice(books, func(i, j int) bool {
		return r.seq[books[i].ID] > r.seq[books[j].ID]
	})
	return books, nil
}

func (r *MemoryRepo) UpdateBook(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.books[b.ID]
	if !ok {
		return ErrNotFound
	}
	b.CreatedAt = existing.CreatedAt
	r.books[b.ID] = cloneBook(*b)
	return nil
}

func (r *MemoryRepo) DeleteBook(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryRepo) CreateAuthor(_ context.Context, a *Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	r.authors[a.ID] = *a
	return nil
}

func (r *MemoryRepo) GetAuthor(_ context.Context, id int64) (Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.authors[id]
	if !ok {
		return Author{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListAuthors(_ context.Context) ([]Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	authors := make([]Author, 0, len(r.authors))
	for _, a := range r.authors {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool {
		return authors[i].Name < authors[j].Name
	})
	return authors, nil
}

func (r *MemoryRepo) GetAuthorsByIDs(_ context.Context, ids []int64) (map[int64]Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[int64]Author, len(ids))
	for _, id := range ids {
		if a, ok := r.authors[id]; ok {
			found[id] = a
		}
	}
	return found, nil
}

func cloneBook(b Book) Book {
	if b.AuthorIDs != nil {
		b.AuthorIDs = append([]int64(nil), b.AuthorIDs...)
	}
	return b
}

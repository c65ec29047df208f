package catalog

import (
	"context"
	"strings"

	"booklib/internal/policy"
)

// Service provides catalog business logic. It holds no state of its own;
// everything lives behind the Repository.
type Service struct {
	repo   Repository
	policy policy.Policy
}

// NewService creates a new catalog service.
func NewService(repo Repository, pol policy.Policy) *Service {
	return &Service{repo: repo, policy: pol}
}

// ListBooks returns all books as summaries, newest-created first.
func (s *Service) ListBooks(ctx context.Context) ([]BookSummary, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]BookSummary, 0, len(books))
	for _, b := range books {
		authors, err := s.resolveAuthors(ctx, b.AuthorIDs)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summaryOf(b, authors))
	}
	return summaries, nil
}

// GetBook returns the full detail for one book, or ErrNotFound.
func (s *Service) GetBook(ctx context.Context, id int64) (BookDetail, error) {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}
	return s.detailOf(ctx, b)
}

// CreateBook validates input, persists a new book and returns its detail.
func (s *Service) CreateBook(ctx context.Context, actor policy.Actor, in BookInput) (BookDetail, error) {
	if !s.policy.CanCreate(actor) {
		return BookDetail{}, ErrForbidden
	}
	if err := validateBookInput(&in); err != nil {
		return BookDetail{}, err
	}

	b := Book{
		Title:           in.Title,
		Description:     in.Description,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		AuthorIDs:       sanitizeAuthorIDs(in.AuthorIDs),
	}
	if err := s.repo.CreateBook(ctx, &b); err != nil {
		return BookDetail{}, err
	}
	return s.detailOf(ctx, b)
}

// UpdateBook overwrites an existing book in full. Omitted optional input
// fields clear the stored value; there is no partial merge.
func (s *Service) UpdateBook(ctx context.Context, actor policy.Actor, id int64, in BookInput) (BookDetail, error) {
	if !s.policy.CanEdit(actor) {
		return BookDetail{}, ErrForbidden
	}
	if err := validateBookInput(&in); err != nil {
		return BookDetail{}, err
	}

	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}

	b.Title = in.Title
	b.Description = in.Description
	b.ISBN = in.ISBN
	b.PublicationYear = in.PublicationYear
	b.AuthorIDs = sanitizeAuthorIDs(in.AuthorIDs)

	if err := s.repo.UpdateBook(ctx, &b); err != nil {
		return BookDetail{}, err
	}
	return s.detailOf(ctx, b)
}

// DeleteBook permanently removes a book and returns the deleted id.
// There is no trash state.
func (s *Service) DeleteBook(ctx context.Context, actor policy.Actor, id int64) (int64, error) {
	if !s.policy.CanDelete(actor) {
		return 0, ErrForbidden
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListAuthors returns all authors ordered by name ascending.
func (s *Service) ListAuthors(ctx context.Context) ([]AuthorRef, error) {
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]AuthorRef, 0, len(authors))
	for _, a := range authors {
		refs = append(refs, AuthorRef{ID: a.ID, Name: a.Name})
	}
	return refs, nil
}

// GetAuthor returns one author, or ErrNotFound.
func (s *Service) GetAuthor(ctx context.Context, id int64) (AuthorRef, error) {
	a, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return AuthorRef{}, err
	}
	return AuthorRef{ID: a.ID, Name: a.Name}, nil
}

// CreateAuthor validates input and persists a new author. Duplicate
// names are allowed; identity is by id only.
func (s *Service) CreateAuthor(ctx context.Context, actor policy.Actor, in AuthorInput) (AuthorRef, error) {
	if !s.policy.CanCreate(actor) {
		return AuthorRef{}, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return AuthorRef{}, &ValidationError{Field: "name", Message: "name required"}
	}

	a := Author{Name: in.Name}
	if err := s.repo.CreateAuthor(ctx, &a); err != nil {
		return AuthorRef{}, err
	}
	return AuthorRef{ID: a.ID, Name: a.Name}, nil
}

func validateBookInput(in *BookInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &ValidationError{Field: "title", Message: "title required"}
	}
	return nil
}

// sanitizeAuthorIDs drops entries that cannot be a valid identifier.
// Order and duplicates are preserved; deduplication never happens at
// write time.
func sanitizeAuthorIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

// resolveAuthors maps stored author ids to live {id, name} pairs in one
// batch lookup. Dangling ids are silently dropped; relative order (and
// any duplication) of the surviving ids is preserved.
func (s *Service) resolveAuthors(ctx context.Context, ids []int64) ([]AuthorRef, error) {
	refs := make([]AuthorRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	found, err := s.repo.GetAuthorsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if a, ok := found[id]; ok {
			refs = append(refs, AuthorRef{ID: a.ID, Name: a.Name})
		}
	}
	return refs, nil
}

// resolveDescription applies the read-time fallback chain: rich field,
// else legacy content body, else empty. Pure, evaluated on every read.
func resolveDescription(b Book) string {
	if b.Description != "" {
		return b.Description
	}
	return b.Content
}

func summaryOf(b Book, authors []AuthorRef) BookSummary {
	ids := b.AuthorIDs
	if ids == nil {
		ids = []int64{}
	}
	return BookSummary{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         authors,
		AuthorIDs:       ids,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
	}
}

func (s *Service) detailOf(ctx context.Context, b Book) (BookDetail, error) {
	authors, err := s.resolveAuthors(ctx, b.AuthorIDs)
	if err != nil {
		return BookDetail{}, err
	}
	return BookDetail{
		BookSummary:  summaryOf(b, authors),
		Description:  resolveDescription(b),
		LegacyAuthor: b.LegacyAuthor,
	}, nil
}

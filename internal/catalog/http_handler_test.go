package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklib/internal/httpx"
	"booklib/internal/policy"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *Service) {
	t.Helper()
	service := NewService(NewMemoryRepo(), policy.NewRolePolicy())
	return NewHTTPHandler(service), service
}

func requestAs(actor policy.Actor, method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(httpx.ContextWithActor(r.Context(), actor))
}

func TestHTTPHandler_ListBooks(t *testing.T) {
	handler, service := newTestHandler(t)
	ctx := context.Background()

	jane, err := service.CreateAuthor(ctx, editor, AuthorInput{Name: "Jane Austen"})
	require.NoError(t, err)
	_, err = service.CreateBook(ctx, editor, BookInput{
		Title:       "Emma",
		Description: "a secret",
		AuthorIDs:   []int64{jane.ID, 99},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)

	handler.ListBooks(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	// list views never expose the description
	assert.NotContains(t, w.Body.String(), "description")
	assert.NotContains(t, w.Body.String(), "a secret")

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Emma", list[0]["title"])

	authors, ok := list[0]["authors"].([]any)
	require.True(t, ok)
	require.Len(t, authors, 1)
}

func TestHTTPHandler_ListBooks_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, policy.NewRolePolicy()))

	mockRepo.EXPECT().ListBooks(gomock.Any()).Return(nil, errors.New("db error"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)

	handler.ListBooks(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHTTPHandler_GetBook(t *testing.T) {
	handler, service := newTestHandler(t)
	ctx := context.Background()

	book, err := service.CreateBook(ctx, editor, BookInput{Title: "Emma", Description: "about Emma"})
	require.NoError(t, err)

	t.Run("success includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/1", nil)
		r.SetPathValue("id", "1")

		handler.GetBook(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var got BookDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, book.ID, got.ID)
		assert.Equal(t, "about Emma", got.Description)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/404", nil)
		r.SetPathValue("id", "404")

		handler.GetBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/emma", nil)
		r.SetPathValue("id", "emma")

		handler.GetBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_CreateBook(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("created", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/books", `{"title":"Emma","isbn":"123","publication_year":"1815"}`)

		handler.CreateBook(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Message string     `json:"message"`
			Book    BookDetail `json:"book"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Book created successfully", resp.Message)
		assert.Equal(t, "Emma", resp.Book.Title)
		assert.Equal(t, "1815", resp.Book.PublicationYear)
	})

	t.Run("missing title", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/books", `{"isbn":"123"}`)

		handler.CreateBook(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("whitespace title", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/books", `{"title":"   "}`)

		handler.CreateBook(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("forbidden for viewer", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(viewer, http.MethodPost, "/books", `{"title":"Emma"}`)

		handler.CreateBook(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/books", `{"title":`)

		handler.CreateBook(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_UpdateBook(t *testing.T) {
	handler, service := newTestHandler(t)
	ctx := context.Background()

	book, err := service.CreateBook(ctx, editor, BookInput{Title: "Emma", ISBN: "123"})
	require.NoError(t, err)

	t.Run("full overwrite", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPut, "/books/1", `{"title":"Emma (revised)"}`)
		r.SetPathValue("id", "1")

		handler.UpdateBook(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		got, err := service.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Emma (revised)", got.Title)
		assert.Equal(t, "", got.ISBN)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPut, "/books/404", `{"title":"X"}`)
		r.SetPathValue("id", "404")

		handler.UpdateBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_DeleteBook(t *testing.T) {
	handler, service := newTestHandler(t)
	ctx := context.Background()

	book, err := service.CreateBook(ctx, editor, BookInput{Title: "Emma"})
	require.NoError(t, err)

	t.Run("forbidden for editor", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodDelete, "/books/1", "")
		r.SetPathValue("id", "1")

		handler.DeleteBook(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deleted", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(admin, http.MethodDelete, "/books/1", "")
		r.SetPathValue("id", "1")

		handler.DeleteBook(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Book deleted successfully")

		_, err := service.GetBook(ctx, book.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already gone", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(admin, http.MethodDelete, "/books/1", "")
		r.SetPathValue("id", "1")

		handler.DeleteBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Authors(t *testing.T) {
	handler, service := newTestHandler(t)
	ctx := context.Background()

	t.Run("create author", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/authors", `{"name":"Jane Austen"}`)

		handler.CreateAuthor(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Message string    `json:"message"`
			Author  AuthorRef `json:"author"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Author created successfully", resp.Message)
		assert.Equal(t, "Jane Austen", resp.Author.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := requestAs(editor, http.MethodPost, "/authors", `{}`)

		handler.CreateAuthor(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list authors", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authors", nil)

		handler.ListAuthors(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var list []AuthorRef
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
	})

	t.Run("get author", func(t *testing.T) {
		created, err := service.CreateAuthor(ctx, editor, AuthorInput{Name: "Franz Kafka"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authors/2", nil)
		r.SetPathValue("id", "2")

		handler.GetAuthor(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var got AuthorRef
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, created, got)
	})

	t.Run("author not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/authors/404", nil)
		r.SetPathValue("id", "404")

		handler.GetAuthor(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

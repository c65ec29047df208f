package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklib/internal/auth"
	"booklib/internal/httpx"
	"booklib/internal/policy"
)

const testNonceSecret = "test-nonce-secret"

func newFormHandler(t *testing.T) (*FormHandler, *Service) {
	t.Helper()
	service := NewService(NewMemoryRepo(), policy.NewRolePolicy())
	return NewFormHandler(service, testNonceSecret), service
}

func formRequest(t *testing.T, actor policy.Actor, values url.Values) *http.Request {
	t.Helper()
	nonce, err := auth.IssueNonce(testNonceSecret, actor)
	require.NoError(t, err)
	values.Set("nonce", nonce)

	r := httptest.NewRequest(http.MethodPost, "/admin-ajax", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (bool, json.RawMessage) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Success, env.Data
}

func TestFormHandler_RejectsBeforeDispatch(t *testing.T) {
	handler, _ := newFormHandler(t)

	t.Run("missing nonce", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin-ajax", strings.NewReader("action=get_books"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		success, _ := decodeEnvelope(t, w)
		assert.False(t, success)
	})

	t.Run("bearer token is not a nonce", func(t *testing.T) {
		token, err := auth.GenerateToken(testNonceSecret, editor, auth.NonceTTL)
		require.NoError(t, err)

		values := url.Values{"action": {"get_books"}, "nonce": {token}}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin-ajax", strings.NewReader(values.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"drop_tables"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin-ajax", nil)

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestFormHandler_BookActions(t *testing.T) {
	handler, service := newFormHandler(t)
	ctx := context.Background()

	jane, err := service.CreateAuthor(ctx, editor, AuthorInput{Name: "Jane Austen"})
	require.NoError(t, err)

	t.Run("create_book coerces author ids", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{
			"action":           {"create_book"},
			"title":            {"Emma"},
			"isbn":             {"123"},
			"publication_year": {"1815"},
			"author_ids[]":     {"1", "abc", "-5", "99"},
		})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.True(t, success)

		var resp struct {
			Message string     `json:"message"`
			Book    BookDetail `json:"book"`
		}
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "Book created successfully", resp.Message)
		// non-numeric and negative entries dropped, dangling 99 stored
		assert.Equal(t, []int64{jane.ID, 99}, resp.Book.AuthorIDs)
		// but only the live author resolves
		assert.Equal(t, []AuthorRef{{ID: jane.ID, Name: "Jane Austen"}}, resp.Book.Authors)
	})

	t.Run("get_books returns summaries", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"get_books"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.True(t, success)
		assert.NotContains(t, string(data), "description")

		var books []BookSummary
		require.NoError(t, json.Unmarshal(data, &books))
		require.Len(t, books, 1)
		assert.Equal(t, "Emma", books[0].Title)
	})

	t.Run("get_book returns detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"get_book"}, "id": {"2"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.True(t, success)

		var book BookDetail
		require.NoError(t, json.Unmarshal(data, &book))
		assert.Equal(t, "Emma", book.Title)
	})

	t.Run("update_book missing title", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{
			"action": {"update_book"},
			"id":     {"2"},
			"title":  {"   "},
		})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.False(t, success)
		assert.Contains(t, string(data), "title required")
	})

	t.Run("delete_book forbidden for editor", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"delete_book"}, "id": {"2"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete_book", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, admin, url.Values{"action": {"delete_book"}, "id": {"2"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		_, err := service.GetBook(ctx, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete_book again is not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, admin, url.Values{"action": {"delete_book"}, "id": {"2"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFormHandler_AuthorActions(t *testing.T) {
	handler, _ := newFormHandler(t)

	t.Run("create_author", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"create_author"}, "name": {"Neil Gaiman"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.True(t, success)
		assert.Contains(t, string(data), "Neil Gaiman")
	})

	t.Run("create_author missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, editor, url.Values{"action": {"create_author"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.False(t, success)
		assert.Contains(t, string(data), "name required")
	})

	t.Run("get_authors", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := formRequest(t, viewer, url.Values{"action": {"get_authors"}})

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		success, data := decodeEnvelope(t, w)
		assert.True(t, success)

		var authors []AuthorRef
		require.NoError(t, json.Unmarshal(data, &authors))
		require.Len(t, authors, 1)
	})
}

func TestFormHandler_Nonce(t *testing.T) {
	handler, _ := newFormHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin-ajax/nonce", nil)
	r = r.WithContext(httpx.ContextWithActor(r.Context(), editor))

	handler.Nonce(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	success, data := decodeEnvelope(t, w)
	assert.True(t, success)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(data, &resp))

	actor, err := auth.VerifyNonce(testNonceSecret, resp["nonce"])
	require.NoError(t, err)
	assert.Equal(t, editor, actor)
}

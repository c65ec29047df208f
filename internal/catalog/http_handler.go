package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"booklib/internal/httpx"
)

// HTTPHandler is the REST adapter over the catalog service.
type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register wires every catalog route onto the mux. Mutating routes are
// wrapped by requireAuth (the bearer-token middleware); reads stay open.
func (h *HTTPHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /books", h.ListBooks)
	mux.HandleFunc("GET /books/{id}", h.GetBook)
	mux.Handle("POST /books", requireAuth(http.HandlerFunc(h.CreateBook)))
	mux.Handle("PUT /books/{id}", requireAuth(http.HandlerFunc(h.UpdateBook)))
	mux.Handle("DELETE /books/{id}", requireAuth(http.HandlerFunc(h.DeleteBook)))

	mux.HandleFunc("GET /authors", h.ListAuthors)
	mux.HandleFunc("GET /authors/{id}", h.GetAuthor)
	mux.Handle("POST /authors", requireAuth(http.HandlerFunc(h.CreateAuthor)))
}

// ListBooks handles GET /books. Summaries only, no description.
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// GetBook handles GET /books/{id}.
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

// CreateBook handles POST /books.
func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validateInput(in); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	book, err := h.service.CreateBook(r.Context(), httpx.ActorFrom(r), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Book created successfully",
		"book":    book,
	})
}

// UpdateBook handles PUT /books/{id}. Full overwrite, no partial merge.
func (h *HTTPHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validateInput(in); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), httpx.ActorFrom(r), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Book updated successfully",
		"book":    book,
	})
}

// DeleteBook handles DELETE /books/{id}. Deletion is permanent.
func (h *HTTPHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deletedID, err := h.service.DeleteBook(r.Context(), httpx.ActorFrom(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Book deleted successfully",
		"id":      deletedID,
	})
}

// ListAuthors handles GET /authors, ordered by name.
func (h *HTTPHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authors)
}

// GetAuthor handles GET /authors/{id}.
func (h *HTTPHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, author)
}

// CreateAuthor handles POST /authors.
func (h *HTTPHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var in AuthorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validateInput(in); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), httpx.ActorFrom(r), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Author created successfully",
		"author":  author,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return 0, false
	}
	return id, true
}

// writeServiceError maps catalog error kinds to wire status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Message,
			[]httpx.ErrorDetail{{Field: vErr.Field, Message: vErr.Message}})
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"booklib/internal/auth"
	"booklib/internal/httpx"
	"booklib/internal/policy"
)

// FormHandler is the legacy form-action adapter: one endpoint, a
// form-encoded body, and an action field selecting the operation. Every
// request must carry a valid nonce; the nonce also identifies the actor.
//
// Responses use the {success, data} envelope regardless of action.
type FormHandler struct {
	service *Service
	secret  string
	actions map[string]formAction
}

type formAction func(w http.ResponseWriter, r *http.Request, actor policy.Actor)

// NewFormHandler builds the handler and its static action table. The
// table is fixed at construction; nothing registers actions later.
func NewFormHandler(service *Service, nonceSecret string) *FormHandler {
	h := &FormHandler{service: service, secret: nonceSecret}
	h.actions = map[string]formAction{
		"get_books":     h.getBooks,
		"get_book":      h.getBook,
		"create_book":   h.createBook,
		"update_book":   h.updateBook,
		"delete_book":   h.deleteBook,
		"get_authors":   h.getAuthors,
		"create_author": h.createAuthor,
	}
	return h
}

// ServeHTTP verifies the nonce, then dispatches on the action field.
func (h *FormHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.FormError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.FormError(w, http.StatusBadRequest, "Malformed form body")
		return
	}

	actor, err := auth.VerifyNonce(h.secret, r.PostFormValue("nonce"))
	if err != nil {
		httpx.FormError(w, http.StatusForbidden, "Invalid nonce")
		return
	}

	action, ok := h.actions[r.PostFormValue("action")]
	if !ok {
		httpx.FormError(w, http.StatusBadRequest, "Unknown action")
		return
	}
	action(w, r, actor)
}

// Nonce issues a fresh form-action nonce to an authenticated actor. It
// is mounted behind the bearer-token middleware.
func (h *FormHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	nonce, err := auth.IssueNonce(h.secret, actor)
	if err != nil {
		httpx.FormError(w, http.StatusInternalServerError, "Could not issue nonce")
		return
	}
	httpx.FormSuccess(w, map[string]string{"nonce": nonce})
}

func (h *FormHandler) getBooks(w http.ResponseWriter, r *http.Request, _ policy.Actor) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, books)
}

func (h *FormHandler) getBook(w http.ResponseWriter, r *http.Request, _ policy.Actor) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, book)
}

func (h *FormHandler) createBook(w http.ResponseWriter, r *http.Request, actor policy.Actor) {
	book, err := h.service.CreateBook(r.Context(), actor, bookInputFromForm(r))
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, map[string]any{
		"message": "Book created successfully",
		"book":    book,
	})
}

func (h *FormHandler) updateBook(w http.ResponseWriter, r *http.Request, actor policy.Actor) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	book, err := h.service.UpdateBook(r.Context(), actor, id, bookInputFromForm(r))
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, map[string]any{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *FormHandler) deleteBook(w http.ResponseWriter, r *http.Request, actor policy.Actor) {
	id, ok := formID(w, r)
	if !ok {
		return
	}
	deletedID, err := h.service.DeleteBook(r.Context(), actor, id)
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, map[string]any{
		"message": "Book deleted successfully",
		"id":      deletedID,
	})
}

func (h *FormHandler) getAuthors(w http.ResponseWriter, r *http.Request, _ policy.Actor) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, authors)
}

func (h *FormHandler) createAuthor(w http.ResponseWriter, r *http.Request, actor policy.Actor) {
	in := AuthorInput{Name: r.PostFormValue("name")}
	author, err := h.service.CreateAuthor(r.Context(), actor, in)
	if err != nil {
		writeFormError(w, err)
		return
	}
	httpx.FormSuccess(w, map[string]any{
		"message": "Author created successfully",
		"author":  author,
	})
}

// bookInputFromForm reads the duck-typed form fields into the typed
// input. Author ids arrive as repeated string fields; entries that do
// not parse as a nonnegative integer are dropped.
func bookInputFromForm(r *http.Request) BookInput {
	values := r.PostForm["author_ids[]"]
	if len(values) == 0 {
		values = r.PostForm["author_ids"]
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			continue
		}
		ids = append(ids, id)
	}

	return BookInput{
		Title:           r.PostFormValue("title"),
		Description:     r.PostFormValue("description"),
		ISBN:            r.PostFormValue("isbn"),
		PublicationYear: r.PostFormValue("publication_year"),
		AuthorIDs:       ids,
	}
}

func formID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil || id < 1 {
		httpx.FormError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func writeFormError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		httpx.FormError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, ErrForbidden):
		httpx.FormError(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, ErrNotFound):
		httpx.FormError(w, http.StatusNotFound, "Not found")
	default:
		httpx.FormError(w, http.StatusInternalServerError, "Internal server error")
	}
}

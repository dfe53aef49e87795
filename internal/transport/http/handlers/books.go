package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/iset-library/internal/application/catalog"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/transport/http/dto"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
	"github.com/baechuer/iset-library/internal/transport/http/response"
)

type BookHandler struct {
	svc *catalog.Service
}

func NewBookHandler(svc *catalog.Service) *BookHandler {
	return &BookHandler{svc: svc}
}

// List handles GET /api/books?available=&q=.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	avail, err := dto.ParseAvailable(r.URL.Query().Get("available"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	books, err := h.svc.List(r.Context(), catalog.Filter{
		Available: avail,
		Query:     r.URL.Query().Get("q"),
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToBookViews(books))
}

// Get handles GET /api/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToBookView(b))
}

// Mine handles GET /api/me/books.
func (h *BookHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	books, err := h.svc.BorrowedBy(r.Context(), actor.UserID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToBookViews(books))
}

// Borrow handles POST /api/books/{id}/borrow.
func (h *BookHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	b, err := h.svc.Borrow(r.Context(), actor.UserID, actor.Role, chi.URLParam(r, "id"))
	middleware.LoansTotal.WithLabelValues("borrow", outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToBookView(b))
}

// Return handles POST /api/books/{id}/return.
func (h *BookHandler) Return(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	b, err := h.svc.Return(r.Context(), actor.UserID, actor.Role, chi.URLParam(r, "id"))
	middleware.LoansTotal.WithLabelValues("return", outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToBookView(b))
}

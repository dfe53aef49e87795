package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/logger"
	"github.com/baechuer/iset-library/internal/transport/http/dto"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
	"github.com/baechuer/iset-library/internal/transport/http/response"
)

type StudentHandler struct {
	svc *auth.Service
}

func NewStudentHandler(svc *auth.Service) *StudentHandler {
	return &StudentHandler{svc: svc}
}

// List handles GET /api/students.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	users, err := h.svc.ListStudents(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToUserViews(users))
}

// Create handles POST /api/students.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	var req dto.CreateStudentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		middleware.StudentOpsTotal.WithLabelValues("create", outcome(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.RegisterStudent(r.Context(), actor, auth.RegisterStudentInput{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	middleware.StudentOpsTotal.WithLabelValues("create", outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actor.UserID).
		Str("student_id", u.ID).
		Msg("student_registered")

	response.Created(w, dto.ToUserView(u))
}

// Update handles PUT /api/students/{id}.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	var req dto.UpdateStudentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		middleware.StudentOpsTotal.WithLabelValues("update", outcome(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateStudent(r.Context(), actor, chi.URLParam(r, "id"), auth.UpdateStudentInput{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	middleware.StudentOpsTotal.WithLabelValues("update", outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToUserView(u))
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	id := chi.URLParam(r, "id")
	err := h.svc.DeleteStudent(r.Context(), actor, id)
	middleware.StudentOpsTotal.WithLabelValues("delete", outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actor.UserID).
		Str("student_id", id).
		Msg("student_deleted")

	response.OK(w, response.Message{Message: "Student deleted successfully"})
}

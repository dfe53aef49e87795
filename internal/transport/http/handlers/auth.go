package http_handlers

import (
	"net/http"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/logger"
	"github.com/baechuer/iset-library/internal/transport/http/dto"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
	"github.com/baechuer/iset-library/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(roleLabel(req.Role), "invalid_request").Inc()
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password, req.Role)
	middleware.LoginAttemptsTotal.WithLabelValues(roleLabel(req.Role), outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Str("role", res.User.Role).
		Msg("user_logged_in")

	response.OK(w, dto.LoginResponse{
		Message: "Login successful",
		User:    dto.ToUserView(res.User),
		Token:   res.Token,
	})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		response.WriteError(w, r, domain.ErrAuthenticationRequired())
		return
	}

	u, err := h.svc.Me(r.Context(), actor)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToUserView(u))
}

// roleLabel keeps client-supplied roles out of metric labels.
func roleLabel(role string) string {
	if domain.IsValidRole(role) {
		return role
	}
	return "other"
}

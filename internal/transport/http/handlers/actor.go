package http_handlers

import (
	"errors"
	"net/http"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
)

// actorFrom reads the caller identity placed in the context by the auth gate.
func actorFrom(r *http.Request) (auth.Actor, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return auth.Actor{}, false
	}
	role, _ := middleware.RoleFromContext(r.Context())
	return auth.Actor{UserID: uid, Role: role}, true
}

// outcome is the metrics status label for err.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "error"
}

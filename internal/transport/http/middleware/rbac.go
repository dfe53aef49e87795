package middleware

import (
	"net/http"

	"github.com/baechuer/iset-library/internal/domain"
)

// RequireRole admits only callers whose token role equals role.
// Assumes Auth() has already injected the role into the context.
func RequireRole(role domain.Role, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := RoleFromContext(r.Context())
			if !ok {
				// Auth not applied on this route
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}
			if !domain.IsValidRole(got) {
				writeErr(w, r, domain.ErrForbidden())
				return
			}
			if got != string(role) {
				writeErr(w, r, domain.ErrInsufficientRole(string(role)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/domain"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <token> and injects the claims into the
// request context.
//
//	no header, or "Bearer" with nothing after it -> 401 token_missing
//	anything else that does not verify           -> 403 token_invalid
func Auth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				writeErr(w, r, domain.ErrAuthenticationRequired())
				return
			}

			scheme, raw, _ := strings.Cut(h, " ")
			if !strings.EqualFold(scheme, "Bearer") {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			raw = strings.TrimSpace(raw)
			if raw == "" {
				writeErr(w, r, domain.ErrAuthenticationRequired())
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil || strings.TrimSpace(claims.UserID) == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

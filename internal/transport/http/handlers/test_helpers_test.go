package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/application/catalog"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/infrastructure/memory"
	"github.com/baechuer/iset-library/internal/infrastructure/security"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
)

const (
	testAdminID       = "admin-1"
	testAdminEmail    = "admin@iset.tn"
	testAdminPassword = "admin123"
)

type rig struct {
	users   *memory.UserRepo
	books   *memory.BookRepo
	authSvc *auth.Service
	bookSvc *catalog.Service

	authH    *AuthHandler
	studentH *StudentHandler
	bookH    *BookHandler
}

func newRig(t *testing.T) *rig {
	t.Helper()

	users := memory.NewUserRepo()
	hasher := security.NewBcryptHasher(4)
	signer := security.NewJWTSigner("test-secret", "iset-library", 0)

	hash, err := hasher.Hash(testAdminPassword)
	require.NoError(t, err)
	_, err = users.Create(context.Background(), domain.User{
		ID:           testAdminID,
		Username:     "admin",
		PasswordHash: hash,
		Role:         string(domain.RoleAdmin),
		Email:        testAdminEmail,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	books := memory.NewBookRepo(memory.SeedBooks(time.Now(), "")...)

	authSvc := auth.NewService(users, hasher, signer)
	bookSvc := catalog.NewService(books).WithUsers(users)

	return &rig{
		users:    users,
		books:    books,
		authSvc:  authSvc,
		bookSvc:  bookSvc,
		authH:    NewAuthHandler(authSvc),
		studentH: NewStudentHandler(authSvc),
		bookH:    NewBookHandler(bookSvc),
	}
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// mustReadJSON decodes the recorder body into out.
func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), "body=%s", rr.Body.String())
}

// withUserCtx injects user_id + role into request context.
func withUserCtx(req *http.Request, userID, role string) *http.Request {
	ctx := middleware.WithUser(req.Context(), userID, role)
	return req.WithContext(ctx)
}

// withURLParam injects chi URL param (e.g. /students/{id}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

func asAdmin(req *http.Request) *http.Request {
	return withUserCtx(req, testAdminID, string(domain.RoleAdmin))
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	mustReadJSON(t, rr, &body)
	return body.Code
}

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- fakes ----------

func write(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

type fakeHealth struct{}

func (fakeHealth) Root(w http.ResponseWriter, r *http.Request)    { write(w, "root") }
func (fakeHealth) Healthz(w http.ResponseWriter, r *http.Request) { write(w, "healthz") }
func (fakeHealth) Readyz(w http.ResponseWriter, r *http.Request)  { write(w, "readyz") }

type fakeAuth struct{}

func (fakeAuth) Login(w http.ResponseWriter, r *http.Request) { write(w, "login") }
func (fakeAuth) Me(w http.ResponseWriter, r *http.Request)    { write(w, "me") }

type fakeStudents struct{}

func (fakeStudents) List(w http.ResponseWriter, r *http.Request)   { write(w, "students.list") }
func (fakeStudents) Create(w http.ResponseWriter, r *http.Request) { write(w, "students.create") }
func (fakeStudents) Update(w http.ResponseWriter, r *http.Request) { write(w, "students.update") }
func (fakeStudents) Delete(w http.ResponseWriter, r *http.Request) { write(w, "students.delete") }

type fakeBooks struct{}

func (fakeBooks) List(w http.ResponseWriter, r *http.Request)   { write(w, "books.list") }
func (fakeBooks) Get(w http.ResponseWriter, r *http.Request)    { write(w, "books.get") }
func (fakeBooks) Mine(w http.ResponseWriter, r *http.Request)   { write(w, "books.mine") }
func (fakeBooks) Borrow(w http.ResponseWriter, r *http.Request) { write(w, "books.borrow") }
func (fakeBooks) Return(w http.ResponseWriter, r *http.Request) { write(w, "books.return") }

func noopMW(next http.Handler) http.Handler { return next }

// blockMW rejects every request with status.
func blockMW(status int) func(http.Handler) http.Handler {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
	}
}

func headerMW(key, val string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, val)
			next.ServeHTTP(w, r)
		})
	}
}

func baseDeps() Deps {
	return Deps{
		Health:    fakeHealth{},
		Auth:      fakeAuth{},
		Students:  fakeStudents{},
		Books:     fakeBooks{},
		AuthMW:    noopMW,
		AdminMW:   noopMW,
		StudentMW: noopMW,
	}
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

// ---------- tests ----------

func TestNew_RequiresDeps(t *testing.T) {
	cases := map[string]func(*Deps){
		"health":     func(d *Deps) { d.Health = nil },
		"auth":       func(d *Deps) { d.Auth = nil },
		"students":   func(d *Deps) { d.Students = nil },
		"books":      func(d *Deps) { d.Books = nil },
		"auth mw":    func(d *Deps) { d.AuthMW = nil },
		"admin mw":   func(d *Deps) { d.AdminMW = nil },
		"student mw": func(d *Deps) { d.StudentMW = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := baseDeps()
			mutate(&d)
			_, err := New(d)
			assert.Error(t, err)
		})
	}
}

func TestNew_Routes(t *testing.T) {
	h, err := New(baseDeps())
	require.NoError(t, err)

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/", "root"},
		{http.MethodGet, "/healthz", "healthz"},
		{http.MethodGet, "/readyz", "readyz"},
		{http.MethodPost, "/api/login", "login"},
		{http.MethodPost, "/api/auth/login", "login"},
		{http.MethodGet, "/api/me", "me"},
		{http.MethodGet, "/api/me/books", "books.mine"},
		{http.MethodGet, "/api/books", "books.list"},
		{http.MethodGet, "/api/books/b1", "books.get"},
		{http.MethodPost, "/api/books/b1/borrow", "books.borrow"},
		{http.MethodPost, "/api/books/b1/return", "books.return"},
		{http.MethodGet, "/api/students", "students.list"},
		{http.MethodPost, "/api/students", "students.create"},
		{http.MethodPut, "/api/students/s1", "students.update"},
		{http.MethodDelete, "/api/students/s1", "students.delete"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := serve(t, h, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.want, rr.Body.String())
		})
	}
}

func TestNew_MetricsEndpoint(t *testing.T) {
	h, err := New(baseDeps())
	require.NoError(t, err)

	rr := serve(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNew_AuthGateCoversAPIButNotLogin(t *testing.T) {
	d := baseDeps()
	d.AuthMW = blockMW(http.StatusUnauthorized)
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodPost, "/api/login").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/api/me").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/api/books").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, http.MethodGet, "/api/students").Code)
}

func TestNew_AdminGateOnlyOnStudents(t *testing.T) {
	d := baseDeps()
	d.AdminMW = blockMW(http.StatusForbidden)
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(t, h, http.MethodGet, "/api/students").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, h, http.MethodDelete, "/api/students/x").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/api/me").Code)
}

func TestNew_StudentGateOnlyOnBorrow(t *testing.T) {
	d := baseDeps()
	d.StudentMW = blockMW(http.StatusForbidden)
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(t, h, http.MethodPost, "/api/books/b1/borrow").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodPost, "/api/books/b1/return").Code)
}

func TestNew_RateLimitsAreScoped(t *testing.T) {
	d := baseDeps()
	d.RLLogin = blockMW(http.StatusTooManyRequests)
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, serve(t, h, http.MethodPost, "/api/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, h, http.MethodPost, "/api/auth/login").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodPost, "/api/students").Code)
}

func TestNew_GlobalMiddlewareAppliesEverywhere(t *testing.T) {
	d := baseDeps()
	d.Global = []func(http.Handler) http.Handler{nil, headerMW("X-Test", "yes")}
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, "yes", serve(t, h, http.MethodGet, "/").Header().Get("X-Test"))
	assert.Equal(t, "yes", serve(t, h, http.MethodGet, "/api/books").Header().Get("X-Test"))
}

func TestNew_RecoversPanics(t *testing.T) {
	d := baseDeps()
	d.AuthMW = func(http.Handler) http.Handler {
		return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	}
	h, err := New(d)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, serve(t, h, http.MethodGet, "/api/me").Code)
}

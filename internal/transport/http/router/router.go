package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type StudentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type BookHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	Borrow(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Auth     AuthHandler
	Students StudentHandler
	Books    BookHandler

	// Global chain, applied in order. Nil entries are skipped.
	Global []func(http.Handler) http.Handler

	AuthMW    func(http.Handler) http.Handler
	AdminMW   func(http.Handler) http.Handler
	StudentMW func(http.Handler) http.Handler

	// Rate limits are optional; nil disables them.
	RLLogin         func(http.Handler) http.Handler
	RLStudentCreate func(http.Handler) http.Handler

	// MetricsHandler serves /metrics; nil uses the default registry.
	MetricsHandler http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Students == nil {
		return nil, fmt.Errorf("nil Students handler")
	}
	if deps.Books == nil {
		return nil, fmt.Errorf("nil Books handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}
	if deps.StudentMW == nil {
		return nil, fmt.Errorf("nil Student middleware")
	}

	metricsH := deps.MetricsHandler
	if metricsH == nil {
		metricsH = promhttp.Handler()
	}

	r := chi.NewRouter()
	for _, mw := range deps.Global {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(chimw.Recoverer)

	r.Get("/", deps.Health.Root)
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsH)

	r.Route("/api", func(r chi.Router) {
		login := optional(deps.RLLogin)
		r.With(login).Post("/login", deps.Auth.Login)
		// The web client posts here.
		r.With(login).Post("/auth/login", deps.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Get("/me", deps.Auth.Me)
			r.Get("/me/books", deps.Books.Mine)

			r.Get("/books", deps.Books.List)
			r.Get("/books/{id}", deps.Books.Get)
			r.With(deps.StudentMW).Post("/books/{id}/borrow", deps.Books.Borrow)
			r.Post("/books/{id}/return", deps.Books.Return)

			r.Route("/students", func(r chi.Router) {
				r.Use(deps.AdminMW)

				r.Get("/", deps.Students.List)
				r.With(optional(deps.RLStudentCreate)).Post("/", deps.Students.Create)
				r.Put("/{id}", deps.Students.Update)
				r.Delete("/{id}", deps.Students.Delete)
			})
		})
	})

	return r, nil
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

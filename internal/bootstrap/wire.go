package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/application/catalog"
	"github.com/baechuer/iset-library/internal/audit"
	"github.com/baechuer/iset-library/internal/config"
	"github.com/baechuer/iset-library/internal/domain"
	"github.com/baechuer/iset-library/internal/infrastructure/db/postgres"
	"github.com/baechuer/iset-library/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/iset-library/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/iset-library/internal/infrastructure/redis"
	"github.com/baechuer/iset-library/internal/infrastructure/security"
	"github.com/baechuer/iset-library/internal/logger"
	http_handlers "github.com/baechuer/iset-library/internal/transport/http/handlers"
	"github.com/baechuer/iset-library/internal/transport/http/middleware"
	"github.com/baechuer/iset-library/internal/transport/http/response"
	"github.com/baechuer/iset-library/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type Publisher interface {
	auth.EventPublisher
	Close() error
}

// userStore is what the server needs from the credential store.
type userStore interface {
	auth.UserRepo
	Ping(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) credential store
	var users userStore
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		users = postgres.NewUserRepo(db, cfg.DBQueryTimeout)
	} else {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory credential store")
		users = memory.NewUserRepo()
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limiting and cache disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			if err := c.RegisterPoolMetrics(prometheus.DefaultRegisterer); err != nil {
				logger.Logger.Warn().Err(err).Msg("redis pool metrics not registered")
			}
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher()
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.Env == "dev":
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		default:
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	// 5) seed (dev only) + catalog
	borrowerID := ""
	if cfg.Env == "dev" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		postgres.SeedUsers(ctx, users, hasher)
		if u, err := users.GetByEmailAndRole(ctx, postgres.SeedBorrowerEmail, string(domain.RoleStudent)); err == nil {
			borrowerID = u.ID
		}
		cancel()
	}
	books := memory.NewBookRepo(memory.SeedBooks(time.Now(), borrowerID)...)

	// 6) services
	auditLog := audit.New(logger.Logger)

	authSvc := auth.NewService(users, hasher, signer).
		WithPublisher(pub, func(event string, err error) {
			logger.Logger.Warn().Err(err).Str("event", event).Msg("event publish failed")
		}).
		WithAudit(auditLog)
	if redisCli != nil {
		authSvc = authSvc.WithCache(redis.NewStudentListCache(redisCli, cfg.StudentCacheTTL))
	}

	bookSvc := catalog.NewService(books).WithUsers(users).WithAudit(auditLog)

	// 7) handlers + middleware
	authMW := middleware.Auth(signer, response.WriteError)
	adminMW := middleware.RequireRole(domain.RoleAdmin, response.WriteError)
	studentMW := middleware.RequireRole(domain.RoleStudent, response.WriteError)

	// rate limit (fail-open)
	var fwLimiter *redis.FixedWindowLimiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli)
	}

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:   http_handlers.NewHealthHandler(users),
		Auth:     http_handlers.NewAuthHandler(authSvc),
		Students: http_handlers.NewStudentHandler(authSvc),
		Books:    http_handlers.NewBookHandler(bookSvc),

		Global: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.AccessLog,
			middleware.Metrics,
			middleware.SecurityHeaders(cfg.Env != "dev"),
			middleware.CORS(cfg.CORSAllowedOrigins),
		},

		AuthMW:    authMW,
		AdminMW:   adminMW,
		StudentMW: studentMW,

		RLLogin:         rl("auth.login", 10, time.Minute),
		RLStudentCreate: rl("students.create", 30, time.Minute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/iset-library/internal/pkg/context"
)

// ServiceName tags every log line.
const ServiceName = "library-service"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT") // "json" or "console"
	if format == "" {
		format = "console"
	}

	if format == "json" {
		Logger = zerolog.New(w).With().Timestamp().Str("service", ServiceName).Logger().Level(level)
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("service", ServiceName).Logger().Level(level)
	}

	// set global
	zlog.Logger = Logger
}

// WithCtx returns the service logger tagged with the request id and, once the
// token is verified, the caller.
func WithCtx(ctx context.Context) *zerolog.Logger {
	lc := Logger.With()
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		lc = lc.Str("request_id", rid)
	}
	if c, ok := appCtx.GetCaller(ctx); ok {
		lc = lc.Str("caller_id", c.UserID).Str("caller_role", c.Role)
	}
	l := lc.Logger()
	return &l
}

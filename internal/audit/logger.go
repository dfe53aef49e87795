package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/iset-library/internal/pkg/context"
)

// Logger provides structured audit logging for security-relevant library events.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// LoginSuccess logs a successful login
func (l *Logger) LoginSuccess(ctx context.Context, userID, email, role string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("role", role).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt. reason stays server-side.
func (l *Logger) LoginFailed(ctx context.Context, email, role, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("role", role).
		Str("reason", reason).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

func (l *Logger) StudentRegistered(ctx context.Context, actorID, studentID, email string) {
	l.log.Info().
		Str("action", "student_registered").
		Str("actor_user_id", actorID).
		Str("target_user_id", studentID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Student registered")
}

func (l *Logger) StudentUpdated(ctx context.Context, actorID, studentID string) {
	l.log.Info().
		Str("action", "student_updated").
		Str("actor_user_id", actorID).
		Str("target_user_id", studentID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Student updated")
}

func (l *Logger) StudentDeleted(ctx context.Context, actorID, studentID string) {
	l.log.Warn().
		Str("action", "student_deleted").
		Str("actor_user_id", actorID).
		Str("target_user_id", studentID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Student deleted")
}

func (l *Logger) BookBorrowed(ctx context.Context, userID, bookID string) {
	l.log.Info().
		Str("action", "book_borrowed").
		Str("user_id", userID).
		Str("book_id", bookID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Book borrowed")
}

func (l *Logger) BookReturned(ctx context.Context, actorID, bookID string) {
	l.log.Info().
		Str("action", "book_returned").
		Str("actor_user_id", actorID).
		Str("book_id", bookID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Book returned")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (never secrets, hashes or causes)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrBodyTooLarge(limit int64) *Error {
	return WithMeta(New(KindValidation, "body_too_large", "request body too large"), map[string]string{
		"limit_bytes": strconv.FormatInt(limit, 10),
	})
}

// ErrInvalidRequest is returned when a login request lacks one of its fields.
func ErrInvalidRequest() *Error {
	return New(KindValidation, "invalid_request", "Email, password and role are required")
}

// ErrMissingFields is returned when a student registration lacks a required field.
func ErrMissingFields(fields ...string) *Error {
	err := New(KindValidation, "missing_fields", "Username, password and email are required")
	if len(fields) > 0 {
		meta := make(map[string]string, len(fields))
		for _, f := range fields {
			meta[f] = "required"
		}
		err.Meta = meta
	}
	return err
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrInvalidRole(role string) *Error {
	return WithMeta(
		New(KindValidation, "invalid_role", "invalid role"),
		map[string]string{"role": role},
	)
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: every login failure after shape validation maps here, whichever
// factor (email, role, password) was wrong.
func ErrInvalidCredentialsOrRole() *Error {
	return New(KindAuth, "invalid_credentials", "Invalid credentials or role")
}

func ErrAuthenticationRequired() *Error {
	return New(KindAuth, "token_missing", "Authentication token required")
}

// ----------------------
// Forbidden (403)
// ----------------------

// ErrTokenInvalid covers malformed, badly signed and expired tokens alike.
func ErrTokenInvalid() *Error {
	return New(KindForbidden, "token_invalid", "Invalid or expired token")
}

func ErrForbidden() *Error {
	return New(KindForbidden, "forbidden", "forbidden")
}

func ErrInsufficientRole(required string) *Error {
	return WithMeta(New(KindForbidden, "insufficient_role", "insufficient role"), map[string]string{
		"required": required,
	})
}

func ErrNotBorrower() *Error {
	return New(KindForbidden, "not_borrower", "book is borrowed by another student")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

func ErrStudentNotFound() *Error {
	return New(KindNotFound, "student_not_found", "Student not found")
}

func ErrBookNotFound() *Error {
	return New(KindNotFound, "book_not_found", "Book not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrDuplicateEmail() *Error {
	return New(KindConflict, "duplicate_email", "This email is already registered")
}

func ErrBookUnavailable() *Error {
	return New(KindConflict, "book_unavailable", "Book is not available")
}

func ErrBookNotBorrowed() *Error {
	return New(KindConflict, "book_not_borrowed", "Book is not borrowed")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrDBTimeout(cause error) *Error {
	return Wrap(KindInfrastructure, "db_timeout", "database timeout", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "internal error", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "internal error", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}

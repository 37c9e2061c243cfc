package domain

import (
	"errors"
	"fmt"
)

// Kind is the stable failure category reported to clients.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindAuth        Kind = "AUTH"
	KindOwnership   Kind = "OWNERSHIP"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindRateLimited Kind = "RATE_LIMITED"
	KindUpstream    Kind = "UPSTREAM"
	KindInternal    Kind = "INTERNAL"
)

// Stable error codes, finer grained than Kind.
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidDate        = "INVALID_DATE"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeCodeTaken          = "CONFIRMATION_CODE_TAKEN"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeUpstream           = "UPSTREAM_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is a categorized failure. Err, when set, is diagnostic detail that
// is only shown to clients in development.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, code, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

func Validation(code, msg string) *Error { return newError(KindValidation, code, msg, nil) }

func Auth(code, msg string) *Error { return newError(KindAuth, code, msg, nil) }

func Ownership(msg string) *Error { return newError(KindOwnership, CodeForbidden, msg, nil) }

func NotFound(msg string) *Error { return newError(KindNotFound, CodeNotFound, msg, nil) }

func Conflict(code, msg string) *Error { return newError(KindConflict, code, msg, nil) }

func Upstream(msg string, err error) *Error {
	return newError(KindUpstream, CodeUpstream, msg, err)
}

func Internal(msg string, err error) *Error {
	return newError(KindInternal, CodeInternal, msg, err)
}

// KindOf returns the category of err; anything uncategorized is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Store-level sentinels returned by repositories.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateCode  = errors.New("confirmation code already in use")
)

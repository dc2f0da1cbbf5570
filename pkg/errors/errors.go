package errors

import (
	"errors"
)

// Kind classifies a business error and selects the HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// AppError is a classified business error with a stable numeric code.
// Fields carries per-field messages for validation failures.
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Kind and Code so that copies made by WithField still satisfy
// errors.Is against the sentinel they came from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithField returns a copy of e with one more field message.
func (e *AppError) WithField(field, msg string) *AppError {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[field] = msg
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Fields: fields}
}

// New creates a classified error.
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Validation creates a validation error.
func Validation(code int, message string) *AppError {
	return New(KindValidation, code, message)
}

// Forbidden creates an authorization error.
func Forbidden(code int, message string) *AppError {
	return New(KindForbidden, code, message)
}

// NotFound creates a not-found error.
func NotFound(code int, message string) *AppError {
	return New(KindNotFound, code, message)
}

// Conflict creates a conflict error.
func Conflict(code int, message string) *AppError {
	return New(KindConflict, code, message)
}

// Unauthorized creates an authentication error.
func Unauthorized(code int, message string) *AppError {
	return New(KindUnauthorized, code, message)
}

// Unavailable creates an error for a dependency that could not be reached.
func Unavailable(code int, message string) *AppError {
	return New(KindUnavailable, code, message)
}

// As extracts the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal when it carries no AppError.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// unique constraint violations, translated from the driver error
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrISBNExists     = errors.New("isbn13 already exists")
	ErrTitleExists    = errors.New("title already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrUnknownHashScheme = errors.New("unknown password hash scheme")
)

// ValidationError reports malformed or missing input. Message is safe to
// return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError carrying msg.
func NewValidationError(msg string) error { return &ValidationError{Message: msg} }

// ConflictError reports a unique constraint violation.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return e.Err }

// NotFoundError reports that a lookup expected to match returned no rows.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError returns a *NotFoundError carrying msg.
func NewNotFoundError(msg string) error { return &NotFoundError{Message: msg} }

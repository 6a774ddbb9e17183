package core

import "github.com/pkg/errors"

// FieldError names one invalid input field and what is wrong with it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries the per-field problems of a rejected input. The
// HTTP layer renders Fields as a field -> message map with a 400 status.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable state that should bring the server down.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, at its root, asks for a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

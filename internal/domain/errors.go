package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors for logging and exit handling.
type ErrorKind string

const (
	KindBadParameter ErrorKind = "BAD_PARAMETER"
	KindConflict     ErrorKind = "CONFLICT"
	KindTransport    ErrorKind = "TRANSPORT"
)

var (
	ErrBadParameter = errors.New("bad parameter")
	ErrConflict     = errors.New("conflict")
	ErrTransport    = errors.New("transport failure")
	ErrNotFound     = errors.New("not found")
)

// ValidationError reports a set field that violates an invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Kind() ErrorKind {
	return KindBadParameter
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrBadParameter
}

func badParameter(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// ConflictError reports a uniqueness violation raised by storage.
type ConflictError struct {
	ID         string
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("set %q conflicts on %s: %v", e.ID, e.Constraint, e.Err)
	}
	return fmt.Sprintf("set %q conflicts with an existing row: %v", e.ID, e.Err)
}

func (e *ConflictError) Kind() ErrorKind {
	return KindConflict
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// TransportError is a fatal failure to obtain a usable envelope from the source.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Kind() ErrorKind {
	return KindTransport
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from an error chain. Returns empty string for
// errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

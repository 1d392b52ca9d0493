// Package errors defines application error kinds shared across the service
// and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for mapping to transport responses and retry
// decisions.
type Kind string

const (
	KindInvalid      Kind = "invalid"      // malformed or failing validation
	KindNotFound     Kind = "not_found"    // entity does not exist
	KindConflict     Kind = "conflict"     // uniqueness or state conflict
	KindUnavailable  Kind = "unavailable"  // dependency unreachable, retryable
	KindUnauthorized Kind = "unauthorized" // bad or missing credentials
	KindInternal     Kind = "internal"     // unexpected failure
	KindSchema       Kind = "schema"       // destination table shape mismatch, not retryable
)

// AppError carries a Kind alongside the wrapped cause.
type AppError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

// E constructs an AppError.
func E(kind Kind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

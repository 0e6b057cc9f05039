package localsearch

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures that cross the engine boundary.
type ErrorKind int

const (
	// KindTransient covers provider failures: geocoding, completion, search and feature resolution.
	KindTransient ErrorKind = iota + 1
	// KindPermission covers denied or restricted location access and disabled location services.
	KindPermission
	// KindSuperseded marks a request replaced by a newer one. It is never shown to the user.
	KindSuperseded
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermission:
		return "permission"
	case KindSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

var (
	ErrLocationDenied     = errors.New("location access denied")
	ErrLocationRestricted = errors.New("location access restricted")
	ErrServicesDisabled   = errors.New("location services disabled")
	ErrEmptyQuery         = errors.New("search query is empty")
	ErrCompleterStopped   = errors.New("completion session is stopped")
	ErrCompleterActive    = errors.New("completion session already started")
	ErrEmptyResponse      = errors.New("provider returned no response")
)

// Error wraps a provider or permission failure with its kind and the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify converts a raw provider error into the session taxonomy.
func classify(op string, err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindSuperseded, Op: op, Err: err}
	case errors.Is(err, ErrLocationDenied), errors.Is(err, ErrLocationRestricted), errors.Is(err, ErrServicesDisabled):
		return &Error{Kind: KindPermission, Op: op, Err: err}
	default:
		return &Error{Kind: KindTransient, Op: op, Err: err}
	}
}

// IsSuperseded reports whether err only signals that a newer request replaced this one.
func IsSuperseded(err error) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == KindSuperseded
	}
	return errors.Is(err, context.Canceled)
}

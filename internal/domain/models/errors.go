package models

import (
	"errors"
	"fmt"
)

// Authentication failures, each mapped to distinct user-facing copy by the
// HTTP layer.
var (
	ErrInvalidCredential  = errors.New("invalid email or password")
	ErrUnknownUser        = errors.New("user not found")
	ErrRateLimited        = errors.New("too many sign-in attempts, try again later")
	ErrNetworkUnavailable = errors.New("authentication service unreachable")
)

// ErrNotFound signals a point read that matched no document.
var ErrNotFound = errors.New("not found")

// FetchError wraps a query or transport failure from the document store. The
// boundary converts it into an empty result plus a generic retry-prompting
// notification; the cause is logged, never shown.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError tags a storage failure with the operation that produced it.
func NewFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: err}
}

// UnknownActivityTypeError is returned when a raw document carries a type
// discriminant outside the three known activity kinds. The caller decides
// whether to drop or surface the record.
type UnknownActivityTypeError struct {
	Type string
}

func (e *UnknownActivityTypeError) Error() string {
	return fmt.Sprintf("unknown activity type %q", e.Type)
}

// ValidationError reports a malformed record rejected at the data-access
// boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned when menu or reference rows are structurally invalid
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRunNotFound is returned when a stored analysis run cannot be found
	ErrRunNotFound = errors.New("analysis run not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrReferenceUnavailable is returned when the nutrition reference table is missing or empty
	ErrReferenceUnavailable = errors.New("nutrition reference table unavailable")
)

// InputError pinpoints the row and column of a malformed input value.
// Row is 1-based and counts data rows only (the CSV header is not a row).
type InputError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	}
	if e.Value == "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s (got %q)", e.Row, e.Column, e.Reason, e.Value)
}

// Unwrap lets errors.Is(err, ErrMalformedInput) match any InputError.
func (e *InputError) Unwrap() error {
	return ErrMalformedInput
}

// NewMissingColumnError reports a required column absent from the header.
func NewMissingColumnError(column string) *InputError {
	return &InputError{Column: column, Reason: "required column is missing"}
}

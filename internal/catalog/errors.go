// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNetwork is matched by every transport, timeout or unexpected-status failure.
	ErrNetwork = errors.New("network unavailable")

	// ErrNotFound is returned when the remote explicitly has no such template.
	ErrNotFound = errors.New("template not found")

	// ErrParse is matched by every malformed catalog payload.
	ErrParse = errors.New("malformed catalog response")

	// ErrTooLarge is wrapped (inside a NetworkError) when a response body
	// exceeds its size cap.
	ErrTooLarge = errors.New("response too large")
)

type (
	// NetworkError describes a failed request. It matches ErrNetwork with
	// errors.Is and exposes the underlying cause through Unwrap.
	NetworkError struct {
		URL string
		Err error
	}

	// ParseError describes a catalog response that could not be decoded.
	ParseError struct {
		URL string
		Err error
	}

	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	// It is always delivered wrapped in a NetworkError.
	RateLimitError struct {
		Limit   int
		ResetAt time.Time
	}
)

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

// Unwrap returns ErrNetwork and the underlying cause.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.URL, e.Err)
}

// Unwrap returns ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (limit %d, resets at %s)",
		e.Limit, e.ResetAt.UTC().Format("15:04 UTC"))
}

// ABOUTME: Error classes for remote spreadsheet calls
// ABOUTME: Classify maps any returned error onto a reporting category
package remote

import (
	"context"
	"errors"
)

var (
	// ErrTimeout means no response arrived before the call deadline. The
	// remote side may still have processed the request.
	ErrTimeout = errors.New("remote request timed out")

	// ErrNotFound is returned by Update when the remote has no row with the id.
	ErrNotFound = errors.New("remote record not found")

	// ErrMalformedResponse covers bodies that are neither JSON nor a callback
	// invocation, and callbacks addressed to an unknown token.
	ErrMalformedResponse = errors.New("malformed remote response")

	// ErrTransport wraps network failures and non-2xx statuses.
	ErrTransport = errors.New("remote transport failure")

	// ErrRemote is a well-formed response with status "error".
	ErrRemote = errors.New("remote reported an error")

	// ErrNotConfigured is returned when no remote endpoint is set.
	ErrNotConfigured = errors.New("remote endpoint not configured")
)

// Category names an error class for logs, sync_state and metrics.
type Category string

const (
	CategoryNone      Category = ""
	CategoryNetwork   Category = "network"
	CategoryTimeout   Category = "timeout"
	CategoryMalformed Category = "malformed"
	CategoryRemote    Category = "remote"
	CategoryUnknown   Category = "unknown"
)

// Classify reports which class err belongs to.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, ErrTransport), errors.Is(err, ErrNotConfigured):
		return CategoryNetwork
	case errors.Is(err, ErrMalformedResponse):
		return CategoryMalformed
	case errors.Is(err, ErrRemote), errors.Is(err, ErrNotFound):
		return CategoryRemote
	default:
		return CategoryUnknown
	}
}

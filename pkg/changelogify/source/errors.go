package source

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrefix is returned for table prefixes outside [A-Za-z0-9_].
	ErrInvalidPrefix = errors.New("invalid table prefix")

	// ErrNotConfigured is returned when a sink has no database handle.
	ErrNotConfigured = errors.New("source not configured")

	// ErrUnknownNotification is returned for notification kinds the
	// recorder does not handle.
	ErrUnknownNotification = errors.New("unknown notification kind")
)

// SourceError wraps a failure inside one adapter.
type SourceError struct {
	SourceID string
	Op       string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %s: %v", e.SourceID, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

package changelogify

import (
	"errors"
	"fmt"
)

// ErrNilContext indicates a run was started with a nil context.
var ErrNilContext = errors.New("context cannot be nil")

// PersistError reports a release that could not be stored. It is the only
// error a run returns; source failures are absorbed.
type PersistError struct {
	// Version is the version the run tried to create.
	Version string
	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("persist release %s: %v", e.Version, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PersistError) Unwrap() error {
	return e.Err
}

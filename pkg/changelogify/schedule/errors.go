package schedule

import "errors"

// ErrAlreadyRunning indicates Start was called on a running scheduler.
var ErrAlreadyRunning = errors.New("scheduler already running")

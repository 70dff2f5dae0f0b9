package worker

import "errors"

// Sentinel kinds for loop errors.
var (
	ErrStopped = errors.New("loop stopped")
)

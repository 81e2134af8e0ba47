package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("results queue full")
	ErrClosed = errors.New("results queue closed")
)

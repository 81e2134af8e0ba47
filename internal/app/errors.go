package service

import "errors"

// Sentinel kinds for session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoMatch         = errors.New("no match in progress")
	ErrTooManySessions = errors.New("too many sessions")
	ErrInvalidRoster   = errors.New("service requires a roster")
)

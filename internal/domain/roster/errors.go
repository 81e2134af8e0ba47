package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrTooSmall          = errors.New("roster needs at least two contestants")
	ErrInvalidContestant = errors.New("invalid contestant")
	ErrUnknownContestant = errors.New("unknown contestant")
)

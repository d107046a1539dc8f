package internalerr

import "errors"

// Sentinel errors shared across packages. Typed errors in parse, rules and
// inference wrap one of these so callers can branch with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCollaborator     = errors.New("collaborator failed")
)

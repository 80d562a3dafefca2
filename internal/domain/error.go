package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAccessDenied       = errors.New("access denied")
	ErrEmptyInput         = errors.New("empty input")
	ErrNoPendingBroadcast = errors.New("no pending broadcast")
	ErrInvalidExecContext = errors.New("invalid query execution context")
)

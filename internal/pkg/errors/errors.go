package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidPayload marks an export payload that failed structural
	// or version validation. Nothing was written when this is returned.
	ErrInvalidPayload = errors.New("invalid export payload")
	// ErrNotFinalized marks an operation that requires a finalized
	// assessment with a stored score.
	ErrNotFinalized = errors.New("assessment not finalized")
)

package registry

import "errors"

// Error definitions for the registry package.
var (
	ErrNotFound        = errors.New("engine not found in registry")
	ErrAlreadyExists   = errors.New("engine is already registered in the registry")
	ErrOutOfRange      = errors.New("engine index out of range")
	ErrMalformedSource = errors.New("engine source is missing or malformed")
	ErrWriteFailure    = errors.New("failed to write engine target")
	ErrNoIdentifier    = errors.New("engine has no identifier")
)

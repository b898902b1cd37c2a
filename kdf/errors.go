package kdf

import "errors"

var (
	// ErrNoAlgorithmsAvailable is returned when a registry would be built without backends.
	ErrNoAlgorithmsAvailable = errors.New("no suitable hash algorithms available")
	// ErrUnknownAlgorithm is returned when a backend name is not registered.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrDuplicateAlgorithm is returned when a registry receives the same backend twice.
	ErrDuplicateAlgorithm = errors.New("duplicate algorithm")
	// ErrInvalidParams is returned when cost parameters would be rejected by the backend.
	ErrInvalidParams = errors.New("invalid kdf parameters")
	// ErrInvalidOutputLen is returned when a job requests an unusable output length.
	ErrInvalidOutputLen = errors.New("invalid output length")
	// ErrInvalidJob is returned when a job cannot be decoded.
	ErrInvalidJob = errors.New("invalid job")
)

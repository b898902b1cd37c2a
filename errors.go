package prpass

import (
	"errors"

	"github.com/MrEthical07/prpass/kdf"
)

var (
	// ErrNoAlgorithmsAvailable is returned by Build when no KDF backend is selected.
	ErrNoAlgorithmsAvailable = kdf.ErrNoAlgorithmsAvailable
	// ErrUnknownAlgorithm is returned when an algorithm name is not registered.
	ErrUnknownAlgorithm = kdf.ErrUnknownAlgorithm
	// ErrInvalidFieldName is returned when a schema field name is empty, starts with a digit,
	// contains characters outside [A-Za-z0-9_ ], or repeats.
	ErrInvalidFieldName = errors.New("invalid field name")
	// ErrDuplicateField is wrapped together with ErrInvalidFieldName for repeated names.
	ErrDuplicateField = errors.New("duplicate field name")
	// ErrUnknownField is returned when a profile value names a field outside the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrNilSchema is returned when a profile is created without a schema.
	ErrNilSchema = errors.New("schema required")
	// ErrInvalidKeyLength is returned when committed key material has the wrong length.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrKeyNotSet is returned when a password is requested before the master key exists.
	ErrKeyNotSet = errors.New("key not set (derive or commit the master key first)")
	// ErrKeyAlreadySet is returned when the master-key job is requested from a keyed profile.
	ErrKeyAlreadySet = errors.New("key already set")
	// ErrInvalidPasswordLength is returned for negative or oversized password lengths.
	ErrInvalidPasswordLength = errors.New("invalid password length")
	// ErrProfileClosed is returned by every operation on a closed profile.
	ErrProfileClosed = errors.New("profile closed")
	// ErrBuilderUsed is returned when Build is called twice on the same builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrNilExecutor is returned when an offloaded derivation receives no executor.
	ErrNilExecutor = errors.New("executor required")

	// ErrEmptyInput is the advisory raised when a profile has no field bytes at all.
	ErrEmptyInput = errors.New("insecure configuration: no parameters supplied")
	// ErrWeakInputShort is the advisory raised when combined field bytes are too few.
	ErrWeakInputShort = errors.New("weak parameters supplied (short inputs)")
	// ErrWeakInputLowVariation is the advisory raised when too few distinct bytes appear.
	ErrWeakInputLowVariation = errors.New("weak parameters supplied (low variation)")
	// ErrAlgorithmMismatch is the advisory raised when passwords will use a different
	// algorithm than the one that produced the master key.
	ErrAlgorithmMismatch = errors.New("key and passwords should not use different algorithms")
)

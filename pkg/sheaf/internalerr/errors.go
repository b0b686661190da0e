package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingIdentity is a caller contract violation: the integrator
	// was handed a reference set without the node's own distribution.
	ErrMissingIdentity = errors.New("missing identity reference")

	// ErrDecompositionGap marks a node that had to split further but
	// has no partitions left.
	ErrDecompositionGap = errors.New("decomposition gap")
)

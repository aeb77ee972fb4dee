package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrNonContiguous   = errors.New("cells are not a contiguous 1..N day sequence")
	ErrAlreadyResolved = errors.New("hand-off already resolved")
	ErrNilModel        = errors.New("nil model published")
	ErrUnknownFailure  = errors.New("population failed without a cause")
)

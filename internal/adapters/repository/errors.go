package repository

import "errors"

// Sentinel kinds for snapshot reads.
var (
	ErrNotFound = errors.New("cell not found")
	ErrNotReady = errors.New("model not ready")
)

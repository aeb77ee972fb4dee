// Package repository holds the read side of the grid: immutable snapshots
// published by the frame loop and served to HTTP readers.
package repository

import (
	"context"

	"github.com/okian/contribgrid/internal/domain/types"
)

// Store provides read access to the latest published grid state.
type Store interface {
	// Publish replaces the current snapshot.
	Publish(ctx context.Context, s *Snapshot)

	// Status returns the latest state including all cells. The returned
	// cells are shared and must not be modified.
	Status(ctx context.Context) types.Status

	// Cell returns the cell for a 1-based day index.
	// Returns ErrNotReady before the model is ready and ErrNotFound when the
	// index is out of range.
	Cell(ctx context.Context, dayIndex int) (types.Cell, error)

	// Count returns the number of cells in the latest snapshot.
	Count(ctx context.Context) int
}

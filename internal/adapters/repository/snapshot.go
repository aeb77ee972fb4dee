package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/internal/domain/types"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Snapshot is an immutable copy of the grid state at one frame.
type Snapshot struct {
	State model.State
	Err   string
	Meta  model.Meta
	Frame uint64
	Cells []types.Cell // indexed by dayIndex-1
}

// NewSnapshot copies out of the outcome observed at frame. It must be called
// from the frame loop, the only goroutine allowed to read a ready model.
func NewSnapshot(frame uint64, out model.Outcome) *Snapshot {
	s := &Snapshot{State: out.State, Frame: frame}
	switch out.State {
	case model.StateFailed:
		if out.Err != nil {
			s.Err = out.Err.Error()
		}
	case model.StateReady:
		m := out.Model
		s.Meta = m.Meta()
		s.Cells = make([]types.Cell, m.Len())
		for i := range s.Cells {
			s.Cells[i] = types.CellFrom(m.At(i))
		}
	}
	return s
}

// SnapshotStore keeps the latest snapshot behind an atomic pointer. Writers
// and readers never block each other.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store that reports loading until the first
// publish.
func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{}
	s.current.Store(&Snapshot{State: model.StateLoading})
	return s
}

// Publish replaces the current snapshot. A nil snapshot is ignored.
func (s *SnapshotStore) Publish(_ context.Context, snap *Snapshot) {
	if snap == nil {
		return
	}
	s.current.Store(snap)
	metrics.RecordSnapshotPublished()
}

// Latest returns the current snapshot.
func (s *SnapshotStore) Latest() *Snapshot {
	return s.current.Load()
}

// Status returns the latest state including all cells.
func (s *SnapshotStore) Status(_ context.Context) types.Status {
	snap := s.current.Load()
	return types.Status{
		State:              snap.State.String(),
		Error:              snap.Err,
		Login:              snap.Meta.Login,
		Name:               snap.Meta.Name,
		TotalContributions: snap.Meta.TotalContributions,
		Frame:              snap.Frame,
		CellCount:          len(snap.Cells),
		Cells:              snap.Cells,
	}
}

// Cell returns the cell for a 1-based day index.
func (s *SnapshotStore) Cell(_ context.Context, dayIndex int) (types.Cell, error) {
	snap := s.current.Load()
	if snap.State != model.StateReady {
		return types.Cell{}, fmt.Errorf("%w: %s", ErrNotReady, snap.State)
	}
	if dayIndex < 1 || dayIndex > len(snap.Cells) {
		return types.Cell{}, fmt.Errorf("%w: day %d outside 1..%d", ErrNotFound, dayIndex, len(snap.Cells))
	}
	return snap.Cells[dayIndex-1], nil
}

// Count returns the number of cells in the latest snapshot.
func (s *SnapshotStore) Count(_ context.Context) int {
	return len(s.current.Load().Cells)
}

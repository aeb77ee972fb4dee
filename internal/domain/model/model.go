package model

import (
	"fmt"

	"github.com/okian/contribgrid/internal/domain/level"
)

// Meta describes whose calendar the model was built from.
type Meta struct {
	Login              string
	Name               string
	TotalContributions int
}

// Model is the grid built by the population pass. It is handed to the frame
// loop exactly once; from then on only Move mutates it, and only from the
// frame loop.
type Model struct {
	meta  Meta
	cells []GridCell
}

// New takes ownership of cells and checks that their day indexes run 1..N in
// order.
func New(meta Meta, cells []GridCell) (*Model, error) {
	for i := range cells {
		if cells[i].dayIndex != i+1 {
			return nil, fmt.Errorf("%w: position %d holds day %d", ErrNonContiguous, i+1, cells[i].dayIndex)
		}
	}
	return &Model{meta: meta, cells: cells}, nil
}

// Meta returns the calendar owner details.
func (m *Model) Meta() Meta { return m.meta }

// Len returns the number of cells.
func (m *Model) Len() int { return len(m.cells) }

// At returns the cell at 0-based position i, in day order.
func (m *Model) At(i int) *GridCell { return &m.cells[i] }

// Contains reports whether id resolves to a cell.
func (m *Model) Contains(id CellID) bool {
	return int(id) >= 1 && int(id) <= len(m.cells)
}

// Cell resolves id to its cell. The same id always yields the same cell for
// the model's lifetime. An unknown id is a programming error and panics.
func (m *Model) Cell(id CellID) *GridCell {
	if !m.Contains(id) {
		panic(fmt.Sprintf("model: %s outside 1..%d", id, len(m.cells)))
	}
	return &m.cells[int(id)-1]
}

// Move replaces the current pose of the cell identified by id.
func (m *Model) Move(id CellID, pose Pose) {
	m.Cell(id).pose = pose
}

// LevelCounts returns the number of cells per level, indexed by Level.Index.
func (m *Model) LevelCounts() []int {
	counts := make([]int, level.Count)
	for i := range m.cells {
		if l := m.cells[i].level; l.Valid() {
			counts[l.Index()]++
		}
	}
	return counts
}

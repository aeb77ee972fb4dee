package model

import (
	"strconv"

	"github.com/okian/contribgrid/internal/domain/level"
)

// CellID identifies a grid cell. It is derived from the 1-based day index
// only, so it stays stable while the cell's pose changes.
type CellID int

// IDFor returns the identifier of the cell at dayIndex.
func IDFor(dayIndex int) CellID { return CellID(dayIndex) }

// DayIndex returns the 1-based day index the identifier was derived from.
func (id CellID) DayIndex() int { return int(id) }

func (id CellID) String() string { return "bar-" + strconv.Itoa(int(id)) }

// GridCell is one day's position in the grid. Everything except the current
// pose is fixed at construction.
type GridCell struct {
	dayIndex int
	column   int
	row      int
	level    level.Level
	day      ContributionDay
	initial  Pose
	pose     Pose
}

// NewGridCell builds a cell whose current pose starts at pose.
func NewGridCell(day ContributionDay, dayIndex, column, row int, lvl level.Level, pose Pose) GridCell {
	return GridCell{
		dayIndex: dayIndex,
		column:   column,
		row:      row,
		level:    lvl,
		day:      day,
		initial:  pose,
		pose:     pose,
	}
}

// ID returns the cell's stable identifier.
func (c *GridCell) ID() CellID { return IDFor(c.dayIndex) }

// DayIndex returns the 1-based sequential position of the day.
func (c *GridCell) DayIndex() int { return c.dayIndex }

// Column returns the 0-based week column.
func (c *GridCell) Column() int { return c.column }

// Row returns the row in 1..7.
func (c *GridCell) Row() int { return c.row }

// Level returns the classified level.
func (c *GridCell) Level() level.Level { return c.level }

// Day returns the source record.
func (c *GridCell) Day() ContributionDay { return c.day }

// InitialPose returns the pose computed by the layout engine.
func (c *GridCell) InitialPose() Pose { return c.initial }

// Pose returns the current pose.
func (c *GridCell) Pose() Pose { return c.pose }

// Moved reports whether the pose differs from the layout pose.
func (c *GridCell) Moved() bool { return c.pose != c.initial }

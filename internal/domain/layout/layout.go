// Package layout places classified days into the weekly grid and derives
// each bar's pose.
package layout

import (
	"github.com/okian/contribgrid/internal/domain/level"
	"github.com/okian/contribgrid/internal/domain/model"
)

// Default layout dimensions in meters.
const (
	DefaultUnitHeight    = 0.08
	DefaultColumnSpacing = 0.1
	DefaultRowSpacing    = 0.1
	// FlatHeight is the height of a level-1 bar regardless of unit height.
	FlatHeight = 0.02
)

// Entry is a day paired with its level.
type Entry struct {
	Day   model.ContributionDay
	Level level.Level
}

// Classify pairs each day with its level, preserving order.
func Classify(days []model.ContributionDay) []Entry {
	entries := make([]Entry, len(days))
	for i, d := range days {
		entries[i] = Entry{Day: d, Level: level.Classify(d.ContributionCount)}
	}
	return entries
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithUnitHeight sets the height contributed by each level above 1.
func WithUnitHeight(h float64) Option {
	return func(e *Engine) {
		if h > 0 {
			e.unitHeight = h
		}
	}
}

// WithColumnSpacing sets the distance between week columns along x.
func WithColumnSpacing(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.columnSpacing = s
		}
	}
}

// WithRowSpacing sets the distance between weekday rows along z.
func WithRowSpacing(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.rowSpacing = s
		}
	}
}

// Engine computes grid cells. It holds only immutable dimensions and is safe
// for concurrent use.
type Engine struct {
	unitHeight    float64
	columnSpacing float64
	rowSpacing    float64
}

// New creates an Engine with default dimensions.
func New(opts ...Option) *Engine {
	e := &Engine{
		unitHeight:    DefaultUnitHeight,
		columnSpacing: DefaultColumnSpacing,
		rowSpacing:    DefaultRowSpacing,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BarHeight returns the bar height for l.
func (e *Engine) BarHeight(l level.Level) float64 {
	if l == 1 {
		return FlatHeight
	}
	return float64(l) * e.unitHeight
}

// Build lays entries out in order. Rows run 1..7: the row counter is bumped
// before it is used, so the first day of every column sits on row 1 and
// z starts at one row spacing rather than zero.
func (e *Engine) Build(entries []Entry) []model.GridCell {
	cells := make([]model.GridCell, 0, len(entries))
	row, column := 0, 0
	for i, en := range entries {
		if row == model.DaysPerWeek {
			row = 0
			column++
		}
		row++

		height := e.BarHeight(en.Level)
		pose := model.NewPose(
			float64(column)*e.columnSpacing,
			height/2,
			float64(row)*e.rowSpacing,
		)
		cells = append(cells, model.NewGridCell(en.Day, i+1, column, row, en.Level, pose))
	}
	return cells
}

// Columns returns how many week columns n days occupy.
func Columns(n int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/model.DaysPerWeek + 1
}

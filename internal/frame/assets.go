package frame

import (
	"github.com/okian/contribgrid/internal/domain/level"
	"github.com/okian/contribgrid/internal/domain/model"
)

// BarFootprint is the width and depth of every bar in meters.
const BarFootprint = 0.08

// Tint is an HSV color with every component in [0, 1].
type Tint struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Palette holds one tint per level, indexed by Level.Index. Level 1 is an
// almost white placeholder; higher levels darken through green.
var Palette = [level.Count]Tint{ //nolint:gochecknoglobals // value constant
	{H: 215.0 / 360, S: 0.02, V: 1.00},
	{H: 130.0 / 360, S: 0.33, V: 0.91},
	{H: 135.0 / 360, S: 0.67, V: 0.76},
	{H: 135.0 / 360, S: 0.70, V: 0.63},
	{H: 138.0 / 360, S: 0.70, V: 0.50},
}

// Asset is the shape drawn for one level.
type Asset struct {
	Level level.Level
	Size  model.Vec3
	Tint  Tint
}

// Heighter returns the bar height for a level.
type Heighter interface {
	BarHeight(l level.Level) float64
}

// AssetTable resolves a level to its asset in constant time.
type AssetTable [level.Count]Asset

// NewAssetTable sizes one asset per level using h for heights.
func NewAssetTable(h Heighter) AssetTable {
	var t AssetTable
	for _, l := range level.All() {
		t[l.Index()] = Asset{
			Level: l,
			Size:  model.Vec3{X: BarFootprint, Y: h.BarHeight(l), Z: BarFootprint},
			Tint:  Palette[l.Index()],
		}
	}
	return t
}

// For returns the asset for l. Levels outside 1..5 panic.
func (t *AssetTable) For(l level.Level) Asset {
	return t[l.Index()]
}

// Label is a fixed text anchor next to the grid.
type Label struct {
	Text     string
	Position model.Vec3
}

// WeekdayLabels mark alternate rows on the left edge of the grid.
var WeekdayLabels = []Label{ //nolint:gochecknoglobals // value constant
	{Text: "Mon", Position: model.Vec3{X: -0.2, Z: 2 * 0.09}},
	{Text: "Wed", Position: model.Vec3{X: -0.2, Z: 4 * 0.095}},
	{Text: "Fri", Position: model.Vec3{X: -0.2, Z: 6 * 0.095}},
}

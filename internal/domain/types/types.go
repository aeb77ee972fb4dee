// Package types contains the read shapes shared by the HTTP API, the
// snapshot store and the probe tool.
package types

import "github.com/okian/contribgrid/internal/domain/model"

// Cell is the read view of one grid cell.
type Cell struct {
	ID                string     `json:"id"`
	DayIndex          int        `json:"day_index"`
	Date              string     `json:"date"`
	Weekday           int        `json:"weekday"`
	ContributionCount int        `json:"contribution_count"`
	Level             int        `json:"level"`
	Column            int        `json:"column"`
	Row               int        `json:"row"`
	Pose              model.Pose `json:"pose"`
	Moved             bool       `json:"moved"`
}

// Status is the read view of the whole model.
type Status struct {
	State              string `json:"state"`
	Error              string `json:"error,omitempty"`
	Login              string `json:"login,omitempty"`
	Name               string `json:"name,omitempty"`
	TotalContributions int    `json:"total_contributions"`
	Frame              uint64 `json:"frame"`
	CellCount          int    `json:"cell_count"`
	Cells              []Cell `json:"cells,omitempty"`
}

// GrabRequest asks the frame loop to move a bar to Pose.
type GrabRequest struct {
	RequestID string     `json:"request_id"`
	DayIndex  int        `json:"day_index"`
	Pose      model.Pose `json:"pose"`
}

// CellFrom converts a grid cell into its read view.
func CellFrom(c *model.GridCell) Cell {
	day := c.Day()
	return Cell{
		ID:                c.ID().String(),
		DayIndex:          c.DayIndex(),
		Date:              day.DateString(),
		Weekday:           day.Weekday,
		ContributionCount: day.ContributionCount,
		Level:             int(c.Level()),
		Column:            c.Column(),
		Row:               c.Row(),
		Pose:              c.Pose(),
		Moved:             c.Moved(),
	}
}

// Package model contains the contribution calendar, the grid model built from
// it, and the hand-off that publishes the model to the frame loop.
package model

import "time"

// DateLayout is the calendar date format used by contribution sources.
const DateLayout = "2006-01-02"

// DaysPerWeek is the number of rows in the grid.
const DaysPerWeek = 7

// ContributionDay is one calendar day's activity. Values are immutable once
// produced by a source.
type ContributionDay struct {
	Date              time.Time // calendar date, UTC midnight
	Weekday           int       // 0 (Sunday) .. 6 (Saturday)
	ContributionCount int       // may be negative in synthetic data
}

// DateString returns the ISO-8601 calendar date.
func (d ContributionDay) DateString() string {
	return d.Date.Format(DateLayout)
}

// Week is an ordered run of up to seven days. Only the final week of a live
// calendar may be short.
type Week struct {
	FirstDay time.Time
	Days     []ContributionDay
}

// Calendar is what a contribution source returns.
type Calendar struct {
	Login              string
	Name               string
	TotalContributions int
	Weeks              []Week
}

// Days flattens the calendar into input order.
func (c Calendar) Days() []ContributionDay {
	n := 0
	for _, w := range c.Weeks {
		n += len(w.Days)
	}
	days := make([]ContributionDay, 0, n)
	for _, w := range c.Weeks {
		days = append(days, w.Days...)
	}
	return days
}

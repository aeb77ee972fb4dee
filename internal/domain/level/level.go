// Package level maps a day's contribution count to a discrete intensity level.
//
// The thresholds are a stable contract: any consumer computing levels on its
// own must use exactly these boundaries.
package level

import "strconv"

// Level is a discrete intensity bucket in the range Min..Max.
type Level int

// Level bounds.
const (
	Min   Level = 1
	Max   Level = 5
	Count       = int(Max)
)

// Lower inclusive count bounds for levels 2..5. Counts at or below zero are
// level 1.
const (
	Threshold2 = 1
	Threshold3 = 14
	Threshold4 = 28
	Threshold5 = 46
)

// Classify returns the level for count. It is total over all integers;
// negative counts collapse to level 1.
func Classify(count int) Level {
	switch {
	case count >= Threshold5:
		return 5
	case count >= Threshold4:
		return 4
	case count >= Threshold3:
		return 3
	case count >= Threshold2:
		return 2
	default:
		return 1
	}
}

// Valid reports whether l is in Min..Max.
func (l Level) Valid() bool {
	return l >= Min && l <= Max
}

// Index returns l as a zero-based index for level-keyed lookup tables.
func (l Level) Index() int {
	return int(l) - 1
}

func (l Level) String() string {
	return strconv.Itoa(int(l))
}

// All returns every level in ascending order.
func All() []Level {
	return []Level{1, 2, 3, 4, 5}
}

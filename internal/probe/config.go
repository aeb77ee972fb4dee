package probe

import (
	"time"

	"github.com/okian/contribgrid/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumGrabs       int           // Number of grab requests to generate
	Workers        int           // Number of concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	ReadyTimeout   time.Duration // How long to wait for the model to become ready
	VerifyTimeout  time.Duration // How long to wait for grabs to show up as moved
	DuplicateRatio float64       // Share of grabs that reuse an earlier request ID
	Seed           int64         // Generator seed; zero picks one from the clock
	OutputFile     string        // Optional file for the generated grabs
	LogFile        string        // Optional log file next to stdout
	Verbose        bool          // Enable verbose logging
}

// Grab is one generated grab request.
type Grab struct {
	RequestID   string     `json:"request_id"`
	DayIndex    int        `json:"day_index"`
	Position    model.Vec3 `json:"position"`
	Orientation model.Quat `json:"orientation"`
}

// Stats holds probe statistics.
type Stats struct {
	CellCount         int
	GrabsGenerated    int
	GrabsSubmitted    int
	GrabsAccepted     int
	GrabsDuplicate    int
	GrabsBackpressure int
	GrabsFailed       int
	DaysVerified      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

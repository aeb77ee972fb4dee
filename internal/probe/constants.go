package probe

import "time"

// Default probe settings.
const (
	DefaultNumGrabs       = 500
	DefaultTimeout        = 10 * time.Second
	DefaultReadyTimeout   = 2 * time.Minute
	DefaultVerifyTimeout  = 30 * time.Second
	DefaultDuplicateRatio = 0.1
)

const (
	pollInterval         = 50 * time.Millisecond
	percentageMultiplier = 100
	maxErrorSnippet      = 256
)

// Grab outcomes as reported by the service.
const (
	outcomeAccepted     = "accepted"
	outcomeDuplicate    = "duplicate"
	outcomeBackpressure = "backpressure"
	outcomeFailed       = "failed"
)

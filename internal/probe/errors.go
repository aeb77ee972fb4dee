package probe

import "errors"

// Error constants.
var (
	ErrUnhealthy   = errors.New("service unhealthy")
	ErrModelFailed = errors.New("model failed to populate")
	ErrNotReady    = errors.New("model not ready in time")
	ErrNotApplied  = errors.New("grabs not applied in time")
	ErrBadResponse = errors.New("unexpected response")
)

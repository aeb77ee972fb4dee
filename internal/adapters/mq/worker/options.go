package worker

import (
	"time"

	"github.com/okian/contribgrid/pkg/logger"
)

// Option applies a configuration option to the Populator.
type Option func(*Populator)

// WithFetchTimeout bounds how long the source may take. A stalled fetch
// resolves the pass as failed.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Populator) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the populator.
func WithLogger(l logger.Logger) Option {
	return func(p *Populator) {
		if l != nil {
			p.logger = l
		}
	}
}

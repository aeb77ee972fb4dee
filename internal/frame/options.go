package frame

import "github.com/okian/contribgrid/pkg/logger"

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithInteraction sets the interaction layer.
func WithInteraction(i *Interaction) Option {
	return func(l *Loop) {
		if i != nil {
			l.interaction = i
		}
	}
}

// WithAssets sets the level to asset lookup table.
func WithAssets(t AssetTable) Option {
	return func(l *Loop) {
		l.assets = t
	}
}

// WithLabels replaces the labels drawn next to the grid.
func WithLabels(labels []Label) Option {
	return func(l *Loop) {
		l.labels = labels
	}
}

// WithPublisher sets where snapshots are published.
func WithPublisher(p Publisher) Option {
	return func(l *Loop) {
		l.publisher = p
	}
}

// WithFrameRate sets frames per second for Run.
func WithFrameRate(fps int) Option {
	return func(l *Loop) {
		if fps > 0 {
			l.frameRate = fps
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

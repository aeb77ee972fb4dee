package service

import (
	"time"

	"github.com/okian/contribgrid/internal/adapters/source"
	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/frame"
	"github.com/okian/contribgrid/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where contributions come from. Defaults to a synthetic
// year.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRenderer sets the frame renderer. Defaults to a log renderer.
func WithRenderer(r frame.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithQueueSize sets the maximum number of pending grab requests.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many grab request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxGrabsPerFrame bounds how many grab requests one frame applies.
func WithMaxGrabsPerFrame(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGrabsPerFrame = n
		}
	}
}

// WithFrameRate sets the frame loop rate in frames per second.
func WithFrameRate(fps int) Option {
	return func(s *Service) {
		if fps > 0 {
			s.frameRate = fps
		}
	}
}

// WithFetchTimeout bounds the population fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithLayout sets grid dimensions.
func WithLayout(opts ...layout.Option) Option {
	return func(s *Service) {
		s.layoutOpts = append(s.layoutOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Package frame runs the per-frame cycle that consumes the grid model:
// poll the hand-off, draw the status or the bars, let the viewer move bars,
// and publish what changed for outside readers.
package frame

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/contribgrid/internal/adapters/repository"
	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Default loop configuration constants.
const (
	DefaultFrameRate = 60
)

// Poller reports the hand-off outcome without blocking.
type Poller interface {
	Poll() model.Outcome
}

// Publisher receives snapshots for readers outside the loop.
type Publisher interface {
	Publish(ctx context.Context, s *repository.Snapshot)
}

// Loop owns the model once it is ready. Step and Run must be called from a
// single goroutine; that goroutine is the only one that reads or moves
// cells.
type Loop struct {
	handoff     Poller
	renderer    Renderer
	interaction *Interaction
	assets      AssetTable
	labels      []Label
	publisher   Publisher
	frameRate   int

	frame          atomic.Uint64
	published      bool
	publishedState model.State

	logger logger.Logger
}

// NewLoop creates a loop polling handoff and drawing with renderer.
func NewLoop(handoff Poller, renderer Renderer, opts ...Option) *Loop {
	l := &Loop{
		handoff:     handoff,
		renderer:    renderer,
		interaction: NewInteraction(),
		assets:      NewAssetTable(layout.New()),
		labels:      WeekdayLabels,
		frameRate:   DefaultFrameRate,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("frame")
	}
	return l
}

// Frame returns the number of the last started frame. It is safe to call
// from any goroutine.
func (l *Loop) Frame() uint64 { return l.frame.Load() }

// Step runs one frame and returns the state it observed. It never waits on
// the population pass.
func (l *Loop) Step(ctx context.Context) model.State {
	start := time.Now()
	frame := l.frame.Add(1)
	out := l.handoff.Poll()

	l.renderer.BeginFrame(frame)
	dirty := false
	switch out.State {
	case model.StateReady:
		dirty = l.drawGrid(frame, out.Model)
	case model.StateFailed:
		l.renderer.DrawStatus(model.StateFailed, out.Err)
	default:
		l.renderer.DrawStatus(model.StateLoading, nil)
	}
	l.renderer.EndFrame()

	if !l.published || l.publishedState != out.State || dirty {
		l.publish(ctx, frame, out)
	}

	metrics.RecordFrame(out.State.String(), float64(time.Since(start).Microseconds())/1000)
	return out.State
}

// drawGrid draws every cell and applies interaction. It reports whether any
// pose changed.
func (l *Loop) drawGrid(frame uint64, m *model.Model) bool {
	l.interaction.BeginFrame(frame)
	defer l.interaction.EndFrame()

	for _, lb := range l.labels {
		l.renderer.DrawLabel(lb)
	}

	dirty := false
	for i := 0; i < m.Len(); i++ {
		cell := m.At(i)
		id := cell.ID()
		asset := l.assets.For(cell.Level())

		pose := cell.Pose()
		next := l.interaction.Offer(id, pose, asset.Size)
		if next != pose {
			m.Move(id, next)
			dirty = true
		}
		l.renderer.DrawBar(id, asset, next)
	}
	return dirty
}

func (l *Loop) publish(ctx context.Context, frame uint64, out model.Outcome) {
	if l.published && l.publishedState != out.State {
		fields := []logger.Field{
			logger.Uint64("frame", frame),
			logger.String("from", l.publishedState.String()),
			logger.String("to", out.State.String()),
		}
		if out.Err != nil {
			fields = append(fields, logger.Error(out.Err))
		}
		l.logger.Info(ctx, "model state changed", fields...)
	}
	l.published = true
	l.publishedState = out.State

	if l.publisher != nil {
		l.publisher.Publish(ctx, repository.NewSnapshot(frame, out))
	}
}

// Run steps once per frame interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(l.frameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info(ctx, "frame loop started", logger.Int("frame_rate", l.frameRate))
	l.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info(ctx, "frame loop stopped", logger.Uint64("frames", l.frame.Load()))
			return nil
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

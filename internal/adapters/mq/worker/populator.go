// Package worker runs the one-shot background pass that builds the grid
// model and hands it to the frame loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/level"
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Default populator configuration constants.
const (
	defaultFetchTimeout = 30 * time.Second
)

// Population outcomes recorded in metrics.
const (
	outcomeReady   = "ready"
	outcomeFailed  = "failed"
	outcomeTimeout = "timeout"
)

// Source produces the contribution calendar.
type Source interface {
	Fetch(ctx context.Context) (model.Calendar, error)
	Name() string
}

// Builder lays classified days out into grid cells.
type Builder interface {
	Build(entries []layout.Entry) []model.GridCell
}

// Publisher receives the single outcome of the pass.
type Publisher interface {
	Publish(m *model.Model) error
	Fail(err error) error
}

// Worker runs until its job is done or it is shut down.
type Worker interface {
	// Run executes the worker until completion or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for Run to return.
	Shutdown(ctx context.Context) error
}

// Populator fetches, classifies and lays out the calendar once, then
// resolves the publisher with the model or the failure.
type Populator struct {
	source       Source
	builder      Builder
	publisher    Publisher
	fetchTimeout time.Duration

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  chan struct{}

	logger logger.Logger
}

var _ Worker = (*Populator)(nil)

// NewPopulator creates a populator with configuration options.
func NewPopulator(source Source, builder Builder, publisher Publisher, opts ...Option) *Populator {
	p := &Populator{
		source:       source,
		builder:      builder,
		publisher:    publisher,
		fetchTimeout: defaultFetchTimeout,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		started:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("populator")
	}
	return p
}

// Run performs the population pass. It must be called at most once.
func (p *Populator) Run(ctx context.Context) {
	close(p.started)
	defer close(p.done)

	start := time.Now()
	m, err := p.populate(ctx)
	elapsed := float64(time.Since(start).Milliseconds())

	if err != nil {
		outcome := outcomeFailed
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		metrics.RecordPopulation(outcome, elapsed)
		metrics.RecordErrorByComponent("populator", outcome)
		p.logger.Error(ctx, "population failed",
			logger.String("source", p.source.Name()),
			logger.Error(err),
		)
		if ferr := p.publisher.Fail(err); ferr != nil {
			p.logger.Warn(ctx, "outcome already resolved", logger.Error(ferr))
		}
		return
	}

	if perr := p.publisher.Publish(m); perr != nil {
		metrics.RecordPopulation(outcomeFailed, elapsed)
		p.logger.Warn(ctx, "outcome already resolved", logger.Error(perr))
		return
	}

	metrics.RecordPopulation(outcomeReady, elapsed)
	metrics.UpdateModelCells(m.Len())
	for i, n := range m.LevelCounts() {
		metrics.UpdateCellsByLevel(level.Level(i+1).String(), n)
	}
	p.logger.Info(ctx, "model published",
		logger.String("source", p.source.Name()),
		logger.Int("cells", m.Len()),
		logger.Float64("duration_ms", elapsed),
	)
}

func (p *Populator) populate(ctx context.Context) (*model.Model, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	// Shutdown aborts an in-flight fetch.
	go func() {
		select {
		case <-p.shutdown:
			cancel()
		case <-fetchCtx.Done():
		}
	}()

	cal, err := p.source.Fetch(fetchCtx)
	if err == nil {
		// A source that ignores its context still loses the race.
		err = fetchCtx.Err()
	}
	if err != nil {
		metrics.RecordFetchError(p.source.Name(), fetchErrorKind(err))
		return nil, err
	}

	days := cal.Days()
	metrics.UpdateSourceDays(len(days))

	cells := p.builder.Build(layout.Classify(days))
	m, err := model.New(model.Meta{
		Login:              cal.Login,
		Name:               cal.Name,
		TotalContributions: cal.TotalContributions,
	}, cells)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	return m, nil
}

func fetchErrorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}

// Done is closed when Run returns.
func (p *Populator) Done() <-chan struct{} {
	return p.done
}

// Shutdown aborts an in-flight pass and waits for Run to return. If Run was
// never started it returns immediately.
func (p *Populator) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.shutdown) })

	select {
	case <-p.started:
	default:
		return nil
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

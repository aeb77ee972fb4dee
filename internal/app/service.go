// Package service wires the population pass, the frame loop and the read
// side together and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	inputqueue "github.com/okian/contribgrid/internal/adapters/mq/queue"
	"github.com/okian/contribgrid/internal/adapters/mq/worker"
	"github.com/okian/contribgrid/internal/adapters/repository"
	"github.com/okian/contribgrid/internal/adapters/source"
	"github.com/okian/contribgrid/internal/adapters/source/synthetic"
	"github.com/okian/contribgrid/internal/domain/dedupe"
	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/internal/domain/types"
	"github.com/okian/contribgrid/internal/frame"
	"github.com/okian/contribgrid/pkg/logger"
)

// ErrStopped is returned by Start after the service has been stopped. The
// model is built once per process, so a stopped service cannot restart.
var ErrStopped = errors.New("service stopped")

// Service implements the API dependencies for the contribution grid.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     source.Source
	engine     *layout.Engine
	handoff    *model.Handoff
	store      *repository.SnapshotStore
	deduper    dedupe.Deduper
	inputQueue *inputqueue.InMemoryQueue
	grabber    *frame.QueueGrabber
	populator  *worker.Populator
	loop       *frame.Loop
	renderer   frame.Renderer

	// Configuration
	queueSize        int
	dedupeSize       int
	maxGrabsPerFrame int
	frameRate        int
	fetchTimeout     time.Duration
	layoutOpts       []layout.Option

	// State
	started   bool
	stopped   bool
	startedAt time.Time
	cancel    context.CancelFunc
	group     *errgroup.Group

	// Logging
	logger logger.Logger
}

// New constructs a Service. Components are created here; Start launches
// the population pass and the frame loop.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:        1024,
		dedupeSize:       10_000,
		maxGrabsPerFrame: frame.DefaultMaxGrabsPerFrame,
		frameRate:        frame.DefaultFrameRate,
		fetchTimeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.source == nil {
		s.source = synthetic.New()
	}
	if s.renderer == nil {
		s.renderer = frame.NewLogRenderer(s.logger.Named("renderer"))
	}

	s.engine = layout.New(s.layoutOpts...)
	s.handoff = model.NewHandoff()
	s.store = repository.NewSnapshotStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.inputQueue = inputqueue.NewInMemoryQueue(inputqueue.WithCapacity(s.queueSize))
	s.grabber = frame.NewQueueGrabber(s.inputQueue, s.maxGrabsPerFrame)
	s.populator = worker.NewPopulator(s.source, s.engine, s.handoff,
		worker.WithFetchTimeout(s.fetchTimeout),
		worker.WithLogger(s.logger.Named("populator")),
	)
	s.loop = frame.NewLoop(s.handoff, s.renderer,
		frame.WithInteraction(frame.NewInteraction(s.grabber)),
		frame.WithAssets(frame.NewAssetTable(s.engine)),
		frame.WithPublisher(s.store),
		frame.WithFrameRate(s.frameRate),
		frame.WithLogger(s.logger.Named("frame")),
	)
	return s
}

// Start launches the population pass and the frame loop. They run until
// Stop is called or ctx is canceled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting contribution grid service...",
		logger.String("source", s.source.Name()),
	)

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		s.populator.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return s.loop.Run(gctx)
	})

	s.cancel = cancel
	s.group = g
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "contribution grid service started",
		logger.Int("frameRate", s.frameRate),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("fetchTimeout", s.fetchTimeout),
	)
	return nil
}

// Stop aborts the population pass if it is still running, stops the frame
// loop and closes the input queue.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.stopped = true
		return
	}

	s.logger.Info(context.Background(), "stopping contribution grid service...")

	s.cancel()
	if err := s.group.Wait(); err != nil {
		s.logger.Error(context.Background(), "service goroutine failed", logger.Error(err))
	}
	_ = s.inputQueue.Close()

	s.started = false
	s.stopped = true
	s.logger.Info(context.Background(), "contribution grid service stopped",
		logger.Uint64("frames", s.loop.Frame()),
	)
}

// Handoff exposes the population outcome for callers outside the frame
// loop, such as tools that wait for readiness.
func (s *Service) Handoff() *model.Handoff { return s.handoff }

// SeenAndRecord atomically checks if a grab request id was seen and records
// it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a request ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue hands a grab request to the frame loop.
func (s *Service) Enqueue(ctx context.Context, r types.GrabRequest) bool {
	s.logger.Debug(ctx, "enqueueing grab",
		logger.String("requestID", r.RequestID),
		logger.Int("day", r.DayIndex),
	)
	return s.inputQueue.Enqueue(ctx, r)
}

// Status returns the latest published model state.
func (s *Service) Status(ctx context.Context) types.Status {
	return s.store.Status(ctx)
}

// Cell returns one cell from the latest published snapshot.
func (s *Service) Cell(ctx context.Context, dayIndex int) (types.Cell, error) {
	return s.store.Cell(ctx, dayIndex)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.store.Latest()
	stats := map[string]any{
		"started":       s.started,
		"source":        s.source.Name(),
		"state":         snap.State.String(),
		"frame":         s.loop.Frame(),
		"frameRate":     s.frameRate,
		"cells":         s.store.Count(ctx),
		"queueLength":   s.inputQueue.Len(),
		"queueCapacity": s.inputQueue.Capacity(),
		"dedupeSize":    s.deduper.Size(),
	}
	if snap.Err != "" {
		stats["error"] = snap.Err
	}
	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}
	return stats
}

package frame

import (
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/internal/domain/types"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Grabber is one input device. Grab returns the new pose and true when it
// takes hold of the bar identified by id.
type Grabber interface {
	Grab(id model.CellID, pose model.Pose, size model.Vec3) (model.Pose, bool)
}

// FrameAware grabbers are told where each ready frame starts and ends.
type FrameAware interface {
	BeginFrame(frame uint64)
	EndFrame()
}

// Interaction offers every bar to the registered grabbers once per frame.
// It runs on the loop goroutine only.
type Interaction struct {
	grabbers []Grabber
}

// NewInteraction creates an interaction over grabbers, asked in order.
func NewInteraction(grabbers ...Grabber) *Interaction {
	return &Interaction{grabbers: grabbers}
}

// BeginFrame notifies frame-aware grabbers.
func (i *Interaction) BeginFrame(frame uint64) {
	for _, g := range i.grabbers {
		if fa, ok := g.(FrameAware); ok {
			fa.BeginFrame(frame)
		}
	}
}

// EndFrame notifies frame-aware grabbers.
func (i *Interaction) EndFrame() {
	for _, g := range i.grabbers {
		if fa, ok := g.(FrameAware); ok {
			fa.EndFrame()
		}
	}
}

// Offer returns the pose the bar should have after this frame. The first
// grabber that takes hold wins; with none, pose is returned unchanged.
func (i *Interaction) Offer(id model.CellID, pose model.Pose, size model.Vec3) model.Pose {
	for _, g := range i.grabbers {
		if next, ok := g.Grab(id, pose, size); ok {
			return next
		}
	}
	return pose
}

// RequestSource yields queued grab requests without blocking.
type RequestSource interface {
	TryDequeue() (types.GrabRequest, bool)
}

// QueueGrabber applies grab requests arriving through a queue. At the start
// of each frame it drains up to maxPerFrame requests; within one frame the
// last request for a bar wins. Requests for bars that are not offered during
// the frame are discarded at its end.
type QueueGrabber struct {
	source      RequestSource
	maxPerFrame int
	pending     map[model.CellID]model.Pose
}

var (
	_ Grabber    = (*QueueGrabber)(nil)
	_ FrameAware = (*QueueGrabber)(nil)
)

// DefaultMaxGrabsPerFrame bounds the input drained in a single frame.
const DefaultMaxGrabsPerFrame = 64

// NewQueueGrabber creates a grabber draining source. maxPerFrame <= 0 uses
// DefaultMaxGrabsPerFrame.
func NewQueueGrabber(source RequestSource, maxPerFrame int) *QueueGrabber {
	if maxPerFrame <= 0 {
		maxPerFrame = DefaultMaxGrabsPerFrame
	}
	return &QueueGrabber{
		source:      source,
		maxPerFrame: maxPerFrame,
		pending:     make(map[model.CellID]model.Pose),
	}
}

// BeginFrame drains up to the per-frame bound of queued requests.
func (g *QueueGrabber) BeginFrame(uint64) {
	for n := 0; n < g.maxPerFrame; n++ {
		req, ok := g.source.TryDequeue()
		if !ok {
			return
		}
		id := model.IDFor(req.DayIndex)
		if _, dup := g.pending[id]; dup {
			metrics.RecordGrabDiscarded()
		}
		g.pending[id] = req.Pose
	}
}

// Grab applies the pending request for id, if any.
func (g *QueueGrabber) Grab(id model.CellID, _ model.Pose, _ model.Vec3) (model.Pose, bool) {
	next, ok := g.pending[id]
	if !ok {
		return model.Pose{}, false
	}
	delete(g.pending, id)
	metrics.RecordGrabApplied()
	return next, true
}

// EndFrame discards requests for bars that were not offered.
func (g *QueueGrabber) EndFrame() {
	for id := range g.pending {
		metrics.RecordGrabDiscarded()
		delete(g.pending, id)
	}
}

// Pending returns how many drained requests are waiting to be applied.
func (g *QueueGrabber) Pending() int { return len(g.pending) }

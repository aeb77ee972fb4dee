package frame

import (
	"context"

	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Renderer draws one frame. Calls for a frame are bracketed by BeginFrame
// and EndFrame and all happen on the loop goroutine.
type Renderer interface {
	BeginFrame(frame uint64)
	// DrawStatus is called instead of drawing bars while the model is not
	// ready. err is set only for model.StateFailed.
	DrawStatus(state model.State, err error)
	DrawLabel(l Label)
	DrawBar(id model.CellID, asset Asset, pose model.Pose)
	EndFrame()
}

// LogRenderer is a headless renderer. It logs state transitions and counts
// the bars drawn each frame.
type LogRenderer struct {
	logger logger.Logger

	frame     uint64
	bars      int
	lastBars  int
	state     model.State
	seenState bool
	gridFrame bool
}

var _ Renderer = (*LogRenderer)(nil)

// NewLogRenderer creates a renderer that writes to l.
func NewLogRenderer(l logger.Logger) *LogRenderer {
	if l == nil {
		l = logger.Get().Named("renderer")
	}
	return &LogRenderer{logger: l}
}

// BeginFrame resets the per-frame bar count.
func (r *LogRenderer) BeginFrame(frame uint64) {
	r.frame = frame
	r.bars = 0
	r.gridFrame = false
}

// DrawStatus logs the loading or fallback state once per transition.
func (r *LogRenderer) DrawStatus(state model.State, err error) {
	if r.seenState && r.state == state {
		return
	}
	r.transition(state)
	if err != nil {
		r.logger.Warn(context.Background(), "drawing fallback",
			logger.Uint64("frame", r.frame),
			logger.String("state", state.String()),
			logger.Error(err),
		)
		return
	}
	r.logger.Info(context.Background(), "drawing status",
		logger.Uint64("frame", r.frame),
		logger.String("state", state.String()),
	)
}

// DrawLabel marks the frame as a grid frame.
func (r *LogRenderer) DrawLabel(Label) { r.gridFrame = true }

// DrawBar counts one bar.
func (r *LogRenderer) DrawBar(model.CellID, Asset, model.Pose) {
	r.bars++
	r.gridFrame = true
}

// EndFrame records the bars drawn and logs the first grid frame.
func (r *LogRenderer) EndFrame() {
	// Labels and bars are drawn only for a ready model.
	if !r.gridFrame {
		return
	}
	if !r.seenState || r.state != model.StateReady {
		r.transition(model.StateReady)
		r.logger.Info(context.Background(), "grid drawn",
			logger.Uint64("frame", r.frame),
			logger.Int("bars", r.bars),
		)
	}
	r.lastBars = r.bars
	metrics.UpdateBarsDrawn(r.bars)
}

func (r *LogRenderer) transition(state model.State) {
	r.state = state
	r.seenState = true
}

// Bars returns how many bars the last completed ready frame drew.
func (r *LogRenderer) Bars() int { return r.lastBars }

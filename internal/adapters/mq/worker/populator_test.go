package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/contribgrid/internal/adapters/mq/worker"
	"github.com/okian/contribgrid/internal/adapters/source/synthetic"
	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/model"
	logging "github.com/okian/contribgrid/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type failingSource struct{ err error }

func (s failingSource) Fetch(context.Context) (model.Calendar, error) {
	return model.Calendar{}, s.err
}

func (failingSource) Name() string { return "failing" }

// stallingSource blocks until its context ends.
type stallingSource struct{ entered chan struct{} }

func (s stallingSource) Fetch(ctx context.Context) (model.Calendar, error) {
	close(s.entered)
	<-ctx.Done()
	return model.Calendar{}, ctx.Err()
}

func (stallingSource) Name() string { return "stalling" }

func waitDone(p *worker.Populator) bool {
	select {
	case <-p.Done():
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func TestPopulator(t *testing.T) {
	convey.Convey("Given a populator over a synthetic source", t, func() {
		_ = logging.Init()
		handoff := model.NewHandoff()
		src := synthetic.New(synthetic.WithSeed(7))
		p := worker.NewPopulator(src, layout.New(), handoff)

		convey.Convey("Before running, the hand-off is still loading", func() {
			convey.So(handoff.Poll().State, convey.ShouldEqual, model.StateLoading)
		})

		convey.Convey("When the pass runs", func() {
			go p.Run(context.Background())
			convey.So(waitDone(p), convey.ShouldBeTrue)

			out := handoff.Poll()

			convey.Convey("Then a full model is published", func() {
				convey.So(out.State, convey.ShouldEqual, model.StateReady)
				convey.So(out.Err, convey.ShouldBeNil)
				convey.So(out.Model.Len(), convey.ShouldEqual, 364)
				convey.So(out.Model.Meta().Login, convey.ShouldEqual, "synthetic")
				for i := 0; i < out.Model.Len(); i++ {
					c := out.Model.At(i)
					convey.So(c.DayIndex(), convey.ShouldEqual, i+1)
					convey.So(c.Row(), convey.ShouldEqual, i%7+1)
					convey.So(c.Column(), convey.ShouldEqual, i/7)
				}
			})

			convey.Convey("Then shutdown after completion returns at once", func() {
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a source that fails", t, func() {
		_ = logging.Init()
		handoff := model.NewHandoff()
		boom := errors.New("boom")
		p := worker.NewPopulator(failingSource{err: boom}, layout.New(), handoff)

		p.Run(context.Background())

		convey.Convey("Then the hand-off resolves as failed with the cause", func() {
			out := handoff.Poll()
			convey.So(out.State, convey.ShouldEqual, model.StateFailed)
			convey.So(errors.Is(out.Err, boom), convey.ShouldBeTrue)
			convey.So(out.Model, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a source that stalls", t, func() {
		_ = logging.Init()

		convey.Convey("When the fetch timeout elapses", func() {
			handoff := model.NewHandoff()
			src := stallingSource{entered: make(chan struct{})}
			p := worker.NewPopulator(src, layout.New(), handoff, worker.WithFetchTimeout(20*time.Millisecond))

			go p.Run(context.Background())
			convey.So(waitDone(p), convey.ShouldBeTrue)

			convey.Convey("Then the pass fails instead of loading forever", func() {
				out := handoff.Poll()
				convey.So(out.State, convey.ShouldEqual, model.StateFailed)
				convey.So(errors.Is(out.Err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the populator is shut down mid-fetch", func() {
			handoff := model.NewHandoff()
			src := stallingSource{entered: make(chan struct{})}
			p := worker.NewPopulator(src, layout.New(), handoff, worker.WithFetchTimeout(time.Minute))

			go p.Run(context.Background())
			<-src.entered

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := p.Shutdown(ctx)

			convey.Convey("Then the fetch is aborted and the outcome is failed", func() {
				convey.So(err, convey.ShouldBeNil)
				out := handoff.Poll()
				convey.So(out.State, convey.ShouldEqual, model.StateFailed)
				convey.So(errors.Is(out.Err, context.Canceled), convey.ShouldBeTrue)
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a populator that never ran", t, func() {
		_ = logging.Init()
		p := worker.NewPopulator(failingSource{}, layout.New(), model.NewHandoff())

		convey.Convey("Then shutdown does not wait", func() {
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a hand-off resolved elsewhere", t, func() {
		_ = logging.Init()
		handoff := model.NewHandoff()
		_ = handoff.Fail(errors.New("earlier"))
		p := worker.NewPopulator(synthetic.New(synthetic.WithWeeks(1)), layout.New(), handoff)

		p.Run(context.Background())

		convey.Convey("Then the first outcome stands", func() {
			out := handoff.Poll()
			convey.So(out.State, convey.ShouldEqual, model.StateFailed)
			convey.So(out.Err.Error(), convey.ShouldEqual, "earlier")
		})
	})
}

package model_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	model "github.com/okian/contribgrid/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestHandoff(t *testing.T) {
	convey.Convey("Given a new hand-off", t, func() {
		h := model.NewHandoff()

		convey.Convey("Then it polls as loading without blocking", func() {
			o := h.Poll()
			convey.So(o.State, convey.ShouldEqual, model.StateLoading)
			convey.So(o.Model, convey.ShouldBeNil)
			convey.So(o.Err, convey.ShouldBeNil)
			select {
			case <-h.Done():
				convey.So("done closed early", convey.ShouldBeEmpty)
			default:
			}
		})

		convey.Convey("When a model is published", func() {
			m, err := model.New(model.Meta{}, cellsFor(7))
			convey.So(err, convey.ShouldBeNil)
			convey.So(h.Publish(m), convey.ShouldBeNil)

			convey.Convey("Then polls report ready with the same model", func() {
				o := h.Poll()
				convey.So(o.State, convey.ShouldEqual, model.StateReady)
				convey.So(o.Model, convey.ShouldPointTo, m)
				convey.So(h.Poll().Model, convey.ShouldPointTo, m)
				<-h.Done()
			})

			convey.Convey("And later resolutions are rejected", func() {
				convey.So(errors.Is(h.Publish(m), model.ErrAlreadyResolved), convey.ShouldBeTrue)
				convey.So(errors.Is(h.Fail(errors.New("late")), model.ErrAlreadyResolved), convey.ShouldBeTrue)
				convey.So(h.Poll().State, convey.ShouldEqual, model.StateReady)
			})
		})

		convey.Convey("When the pass fails", func() {
			cause := errors.New("boom")
			convey.So(h.Fail(cause), convey.ShouldBeNil)

			convey.Convey("Then polls report failed, distinct from loading", func() {
				o := h.Poll()
				convey.So(o.State, convey.ShouldEqual, model.StateFailed)
				convey.So(o.Err, convey.ShouldEqual, cause)
				convey.So(o.Model, convey.ShouldBeNil)
			})
		})

		convey.Convey("When failing without a cause", func() {
			convey.So(h.Fail(nil), convey.ShouldBeNil)
			convey.So(errors.Is(h.Poll().Err, model.ErrUnknownFailure), convey.ShouldBeTrue)
		})

		convey.Convey("When publishing nil", func() {
			convey.So(errors.Is(h.Publish(nil), model.ErrNilModel), convey.ShouldBeTrue)
			convey.So(h.Poll().State, convey.ShouldEqual, model.StateLoading)
		})

		convey.Convey("When waiting with a context that ends first", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			o, err := h.Wait(ctx)

			convey.Convey("Then Wait returns the context error and loading", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
				convey.So(o.State, convey.ShouldEqual, model.StateLoading)
			})
		})
	})
}

func TestHandoffConcurrentReaders(t *testing.T) {
	convey.Convey("Given readers polling while a writer builds and publishes", t, func() {
		h := model.NewHandoff()
		const n = 364
		var wg sync.WaitGroup
		bad := make(chan string, 16)

		for r := 0; r < 8; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					o := h.Poll()
					if o.State != model.StateReady {
						continue
					}
					if o.Model.Len() != n {
						bad <- "partial model observed"
						return
					}
					for i := 0; i < n; i++ {
						if o.Model.At(i).DayIndex() != i+1 {
							bad <- "unpopulated cell observed"
							return
						}
					}
					return
				}
			}()
		}

		m, err := model.New(model.Meta{}, cellsFor(n))
		convey.So(err, convey.ShouldBeNil)
		convey.So(h.Publish(m), convey.ShouldBeNil)

		o, err := h.Wait(context.Background())
		wg.Wait()
		close(bad)

		convey.Convey("Then every reader sees the complete model", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(o.State, convey.ShouldEqual, model.StateReady)
			for msg := range bad {
				convey.So(msg, convey.ShouldBeEmpty)
			}
		})
	})
}

func TestStateString(t *testing.T) {
	convey.Convey("Given states", t, func() {
		convey.So(model.StateLoading.String(), convey.ShouldEqual, "loading")
		convey.So(model.StateReady.String(), convey.ShouldEqual, "ready")
		convey.So(model.StateFailed.String(), convey.ShouldEqual, "failed")
		convey.So(model.State(9).String(), convey.ShouldEqual, "state(9)")
	})
}

package frame_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/contribgrid/internal/domain/layout"
	"github.com/okian/contribgrid/internal/domain/level"
	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/internal/frame"
	"github.com/okian/contribgrid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssetTable(t *testing.T) {
	Convey("Given the default asset table", t, func() {
		table := frame.NewAssetTable(layout.New())

		Convey("Then each level resolves to its own sized, tinted asset", func() {
			for _, l := range level.All() {
				a := table.For(l)
				So(a.Level, ShouldEqual, l)
				So(a.Size.X, ShouldEqual, frame.BarFootprint)
				So(a.Size.Z, ShouldEqual, frame.BarFootprint)
				So(a.Tint, ShouldResemble, frame.Palette[l.Index()])
			}
			So(table.For(1).Size.Y, ShouldEqual, layout.FlatHeight)
			So(table.For(5).Size.Y, ShouldAlmostEqual, 0.40, 1e-9)
		})

		Convey("Then tints darken as the level rises", func() {
			for i := 1; i < level.Count; i++ {
				So(frame.Palette[i].V, ShouldBeLessThan, frame.Palette[i-1].V)
			}
		})

		Convey("Then an invalid level panics", func() {
			So(func() { table.For(0) }, ShouldPanic)
			So(func() { table.For(6) }, ShouldPanic)
		})
	})

	Convey("Given a taller unit height", t, func() {
		table := frame.NewAssetTable(layout.New(layout.WithUnitHeight(0.1)))

		Convey("Then heights follow the engine", func() {
			So(table.For(1).Size.Y, ShouldEqual, layout.FlatHeight)
			So(table.For(3).Size.Y, ShouldAlmostEqual, 0.3, 1e-9)
		})
	})
}

type fixedGrabber struct {
	id   model.CellID
	pose model.Pose
	hits int
}

func (g *fixedGrabber) Grab(id model.CellID, _ model.Pose, _ model.Vec3) (model.Pose, bool) {
	if id != g.id {
		return model.Pose{}, false
	}
	g.hits++
	return g.pose, true
}

func TestInteraction(t *testing.T) {
	Convey("Given an interaction with two grabbers on the same bar", t, func() {
		first := &fixedGrabber{id: 3, pose: model.NewPose(1, 0, 0)}
		second := &fixedGrabber{id: 3, pose: model.NewPose(2, 0, 0)}
		in := frame.NewInteraction(first, second)
		start := model.NewPose(0, 0, 0)

		Convey("Then the first grabber wins", func() {
			So(in.Offer(3, start, model.Vec3{}), ShouldResemble, first.pose)
			So(first.hits, ShouldEqual, 1)
			So(second.hits, ShouldEqual, 0)
		})

		Convey("Then other bars keep their pose", func() {
			So(in.Offer(4, start, model.Vec3{}), ShouldResemble, start)
		})
	})

	Convey("Given no grabbers", t, func() {
		in := frame.NewInteraction()

		Convey("Then poses pass through", func() {
			p := model.NewPose(1, 2, 3)
			in.BeginFrame(1)
			So(in.Offer(1, p, model.Vec3{}), ShouldResemble, p)
			in.EndFrame()
		})
	})
}

func TestLogRenderer(t *testing.T) {
	Convey("Given a log renderer", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		r := frame.NewLogRenderer(logger.Get().Named("renderer"))

		Convey("When it sees loading frames, then a ready frame", func() {
			for f := uint64(1); f <= 3; f++ {
				r.BeginFrame(f)
				r.DrawStatus(model.StateLoading, nil)
				r.EndFrame()
			}
			r.BeginFrame(4)
			r.DrawLabel(frame.WeekdayLabels[0])
			for i := 1; i <= 10; i++ {
				r.DrawBar(model.IDFor(i), frame.Asset{}, model.Pose{})
			}
			r.EndFrame()

			Convey("Then each transition is logged once and bars are counted", func() {
				out := buf.String()
				So(strings.Count(out, "drawing status"), ShouldEqual, 1)
				So(strings.Count(out, "grid drawn"), ShouldEqual, 1)
				So(r.Bars(), ShouldEqual, 10)
			})
		})

		Convey("When it draws a failure fallback", func() {
			r.BeginFrame(1)
			r.DrawStatus(model.StateFailed, errors.New("offline"))
			r.EndFrame()

			Convey("Then the cause is logged", func() {
				So(buf.String(), ShouldContainSubstring, "offline")
				So(r.Bars(), ShouldEqual, 0)
			})
		})

		Reset(func() {
			_ = logger.Init()
		})
	})
}

package level_test

import (
	"testing"

	"github.com/okian/contribgrid/internal/domain/level"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the classifier", t, func() {
		Convey("When classifying the boundary counts", func() {
			counts := []int{-1, 0, 1, 13, 14, 27, 28, 45, 46}
			want := []level.Level{1, 1, 2, 2, 3, 3, 4, 4, 5}

			Convey("Then each lands in its documented bucket", func() {
				for i, c := range counts {
					So(level.Classify(c), ShouldEqual, want[i])
				}
			})
		})

		Convey("When classifying non-positive counts", func() {
			Convey("Then they are all level 1", func() {
				for c := -1000; c <= 0; c++ {
					So(level.Classify(c), ShouldEqual, level.Level(1))
				}
			})
		})

		Convey("When classifying a wide range of counts", func() {
			Convey("Then levels are valid and never decrease as counts grow", func() {
				prev := level.Classify(-100)
				for c := -99; c <= 500; c++ {
					l := level.Classify(c)
					So(l.Valid(), ShouldBeTrue)
					So(l, ShouldBeGreaterThanOrEqualTo, prev)
					prev = l
				}
			})
		})

		Convey("When classifying the same count twice", func() {
			Convey("Then the results are identical", func() {
				for _, c := range []int{-30, 7, 20, 30, 59} {
					So(level.Classify(c), ShouldEqual, level.Classify(c))
				}
			})
		})
	})
}

func TestLevelHelpers(t *testing.T) {
	Convey("Given levels", t, func() {
		Convey("Then Valid accepts only 1..5", func() {
			So(level.Level(0).Valid(), ShouldBeFalse)
			So(level.Level(6).Valid(), ShouldBeFalse)
			for _, l := range level.All() {
				So(l.Valid(), ShouldBeTrue)
			}
		})

		Convey("Then Index and String are consistent", func() {
			So(level.Level(1).Index(), ShouldEqual, 0)
			So(level.Level(5).Index(), ShouldEqual, level.Count-1)
			So(level.Level(3).String(), ShouldEqual, "3")
		})
	})
}

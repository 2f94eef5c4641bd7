package fixture_test

import (
	"testing"
	"time"

	"github.com/okian/curator/internal/domain/graph"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/fixture"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	Convey("Given a seeded generator", t, func() {
		opts := []fixture.Option{fixture.WithSeed(7), fixture.WithNow(now), fixture.WithShape(2, 3, 1, 1)}
		f := fixture.Generate(opts...)

		Convey("Then the shape is respected", func() {
			So(f, ShouldHaveLength, 2)
			So(f["p1"].Reviews, ShouldHaveLength, 3)
			So(graph.Build(f).Items, ShouldHaveLength, 2*3*3)
		})

		Convey("And the same seed reproduces the same forest", func() {
			So(fixture.Generate(opts...), ShouldResemble, f)
		})

		Convey("And like histories are chronological and before now", func() {
			for _, it := range graph.Build(f).Items {
				var prev int64
				for _, ev := range it.LikeHistory {
					So(ev.Timestamp, ShouldBeGreaterThan, prev)
					So(ev.Timestamp, ShouldBeLessThanOrEqualTo, now.Unix())
					So(ev.Action.Valid(), ShouldBeTrue)
					prev = ev.Timestamp
				}
			}
		})
	})

	Convey("Given a generated forest", t, func() {
		f := fixture.Generate(fixture.WithSeed(3), fixture.WithNow(now))

		Convey("When flattening it into submissions", func() {
			subs := fixture.Submissions(f)
			var total int
			for _, it := range graph.Build(f).Items {
				total += len(it.LikeHistory)
			}

			Convey("Then every history entry is emitted once", func() {
				So(subs, ShouldHaveLength, total)
				So(model.KindOf(subs[0].ItemID), ShouldNotEqual, model.KindUnknown)
			})
		})

		Convey("When stripping likes", func() {
			s := fixture.Stripped(f)

			Convey("Then no history remains and the original is intact", func() {
				for _, it := range graph.Build(s).Items {
					So(it.LikeHistory, ShouldBeEmpty)
				}
				So(fixture.Submissions(f), ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given the same like twice", t, func() {
		a := fixture.TxID("p1.r1", "c1", 10, model.ActionLike)
		b := fixture.TxID("p1.r1", "c1", 10, model.ActionLike)
		c := fixture.TxID("p1.r1", "c1", 10, model.ActionUnlike)

		So(a, ShouldEqual, b)
		So(a, ShouldNotEqual, c)
	})
}

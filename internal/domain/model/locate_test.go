package model_test

import (
	"testing"

	model "github.com/okian/curator/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestAppendLike(t *testing.T) {
	convey.Convey("Given a forest with one item per level", t, func() {
		f := model.Forest{
			"p1": {ID: "p1", Reviews: map[string]*model.Review{
				"p1.r1": {ID: "p1.r1", Sender: "w1", Comments: map[string]*model.Comment{
					"p1.r1.c1": {ID: "p1.r1.c1", Sender: "w2", Replies: map[string]*model.Reply{
						"p1.r1.c1.x1": {ID: "p1.r1.c1.x1", Sender: "w3"},
					}},
				}},
			}},
		}
		ev := model.LikeEvent{Sender: "cur", Timestamp: 1, Action: model.ActionLike}

		convey.Convey("Then likes land on the addressed item", func() {
			convey.So(f.AppendLike("p1.r1", ev), convey.ShouldBeTrue)
			convey.So(f.AppendLike("p1.r1.c1", ev), convey.ShouldBeTrue)
			convey.So(f.AppendLike("p1.r1.c1.x1", ev), convey.ShouldBeTrue)
			convey.So(f.AppendLike("p1.r1.c1.x1", ev), convey.ShouldBeTrue)

			r := f["p1"].Reviews["p1.r1"]
			convey.So(r.LikeHistory, convey.ShouldHaveLength, 1)
			convey.So(r.Comments["p1.r1.c1"].LikeHistory, convey.ShouldHaveLength, 1)
			convey.So(r.Comments["p1.r1.c1"].Replies["p1.r1.c1.x1"].LikeHistory, convey.ShouldHaveLength, 2)
		})

		convey.Convey("Then unknown ids are refused", func() {
			convey.So(f.AppendLike("p1", ev), convey.ShouldBeFalse)
			convey.So(f.AppendLike("p2.r1", ev), convey.ShouldBeFalse)
			convey.So(f.AppendLike("p1.r2", ev), convey.ShouldBeFalse)
			convey.So(f.AppendLike("p1.r1.c2", ev), convey.ShouldBeFalse)
			convey.So(f.AppendLike("p1.r1.c1.x2", ev), convey.ShouldBeFalse)
		})

		convey.Convey("Then authors are resolved per level", func() {
			a, ok := f.Author("p1.r1.c1")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(a, convey.ShouldEqual, "w2")

			_, ok = f.Author("p1.r9")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(model.ProjectOf("p1.r1.c1"), convey.ShouldEqual, "p1")
		})
	})
}

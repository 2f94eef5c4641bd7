package repository_test

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/curator/internal/adapters/repository"
	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/fixture"
	"github.com/okian/curator/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) int64 { return now.Add(-time.Duration(d) * 24 * time.Hour).Unix() }

func like(sender string, ts int64, tx string) model.LikeEvent {
	return model.LikeEvent{Sender: sender, Timestamp: ts, Action: model.ActionLike, TxID: tx}
}

// oneReview is a forest with a single review by w1 liked once by c1.
func oneReview() model.Forest {
	return model.Forest{
		"p1": {ID: "p1", Name: "Project One", Reviews: map[string]*model.Review{
			"p1.r1": {
				ID: "p1.r1", Sender: "w1",
				Comments: map[string]*model.Comment{
					"p1.r1.c1": {ID: "p1.r1.c1", Sender: "w2"},
				},
				LikeHistory: []model.LikeEvent{like("c1", daysAgo(1), "tx-1")},
			},
		}},
	}
}

func newStore(opts ...repository.Option) *repository.ForestStore {
	opts = append([]repository.Option{repository.WithComputeOptions(curator.WithNow(now))}, opts...)
	return repository.NewForestStore(opts...)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestForestStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := newStore()

		So(store.Count(ctx), ShouldEqual, 0)
		top, err := store.TopN(ctx, 10)
		So(err, ShouldBeNil)
		So(top, ShouldBeEmpty)
		So(store.Summary(ctx).Version, ShouldEqual, 1)

		_, err = store.TopN(ctx, 0)
		So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)

		Convey("When a forest is installed", func() {
			So(store.Replace(ctx, oneReview()), ShouldBeNil)

			Convey("Then the single curator is ranked with the degenerate mitigation", func() {
				entry, err := store.Rank(ctx, "c1")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(approx(entry.Score, 0.15625), ShouldBeTrue)

				idx := store.Index(ctx, "c1")
				So(idx.Rank, ShouldEqual, 1)
				So(idx.TotalLikesGiven, ShouldEqual, 1)
				So(approx(idx.MitigationFactor, 0.15625), ShouldBeTrue)

				s := store.Summary(ctx)
				So(s.Projects, ShouldEqual, 1)
				So(s.Items, ShouldEqual, 2)
				So(s.Curators, ShouldEqual, 1)
				So(s.Ranked, ShouldEqual, 1)
				So(s.Version, ShouldEqual, 2)
			})

			Convey("Then unknown addresses get a zero index and no rank", func() {
				idx := store.Index(ctx, "nobody")
				So(idx.Address, ShouldEqual, "nobody")
				So(idx.OverallIndex, ShouldEqual, 0)
				So(idx.Rank, ShouldEqual, 0)

				_, err := store.Rank(ctx, "nobody")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("When another curator likes the comment", func() {
				ok, err := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(2), "tx-2")})

				Convey("Then both are ranked and the version advances", func() {
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					top, err := store.TopN(ctx, 10)
					So(err, ShouldBeNil)
					So(top, ShouldHaveLength, 2)
					So(top[0].Rank, ShouldEqual, 1)
					So(top[1].Rank, ShouldEqual, 2)
					So(store.Summary(ctx).Version, ShouldEqual, 3)
				})

				Convey("Then replaying the same tx id is a no-op", func() {
					ok, err := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(2), "tx-2")})
					So(err, ShouldBeNil)
					So(ok, ShouldBeFalse)
					So(store.Summary(ctx).Version, ShouldEqual, 3)
				})
			})

			Convey("When the writer likes their own review", func() {
				ok, err := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1", Event: like("w1", daysAgo(1), "tx-self")})

				Convey("Then it is stored but earns no record", func() {
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(store.Index(ctx, "w1").TotalLikesGiven, ShouldEqual, 0)
					So(store.Count(ctx), ShouldEqual, 1)
				})
			})

			Convey("When malformed likes arrive", func() {
				_, errID := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1", Event: like("c3", 1, "a")})
				_, errItem := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r9", Event: like("c3", 1, "b")})
				_, errAction := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1", Event: model.LikeEvent{Sender: "c3", Action: "BOOST"}})
				_, errSender := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1", Event: like("", 1, "c")})

				Convey("Then each is rejected with its kind", func() {
					So(errors.Is(errID, repository.ErrInvalidItemID), ShouldBeTrue)
					So(errors.Is(errItem, repository.ErrUnknownItem), ShouldBeTrue)
					So(errors.Is(errAction, repository.ErrInvalidLike), ShouldBeTrue)
					So(errors.Is(errSender, repository.ErrInvalidLike), ShouldBeTrue)
					So(store.Summary(ctx).Version, ShouldEqual, 2)
				})
			})

			Convey("Then Forest returns an isolated copy", func() {
				f := store.Forest(ctx)
				f["p1"].Reviews["p1.r1"].LikeHistory = nil
				So(store.Forest(ctx)["p1"].Reviews["p1.r1"].LikeHistory, ShouldHaveLength, 1)
			})
		})

		Convey("When a forest with a misplaced child is installed", func() {
			bad := oneReview()
			bad["p1"].Reviews["p2.r1"] = &model.Review{ID: "p2.r1", Sender: "w1"}

			err := store.Replace(ctx, bad)

			Convey("Then it is rejected and the previous snapshot stays", func() {
				So(errors.Is(err, repository.ErrInvalidForest), ShouldBeTrue)
				So(store.Summary(ctx).Version, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a store with a small top cache", t, func() {
		store := newStore(repository.WithTopCacheSize(1))
		f := fixture.Generate(fixture.WithSeed(3), fixture.WithNow(now))
		So(store.Replace(ctx, f), ShouldBeNil)

		Convey("Then TopN beyond the cache matches the full ranking", func() {
			want := curator.Compute(f, curator.WithNow(now)).Top(0)
			got, err := store.TopN(ctx, len(want)+5)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, len(want))
			for i := range want {
				So(got[i].Address, ShouldEqual, want[i].Address)
				So(got[i].Score, ShouldEqual, want[i].FinalScore)
			}
		})
	})

	Convey("Given a generated forest streamed like by like", t, func() {
		full := fixture.Generate(fixture.WithSeed(7), fixture.WithNow(now))
		streamed := newStore()
		So(streamed.Replace(ctx, fixture.Stripped(full)), ShouldBeNil)
		for _, sub := range fixture.Submissions(full) {
			_, err := streamed.ApplyLike(ctx, sub)
			So(err, ShouldBeNil)
		}

		batch := newStore()
		So(batch.Replace(ctx, full), ShouldBeNil)

		Convey("Then it ranks exactly like the batch forest", func() {
			a, _ := streamed.TopN(ctx, 1000)
			b, _ := batch.TopN(ctx, 1000)
			So(a, ShouldResemble, b)
		})
	})
}

func TestForestStoreUpsertProject(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with one project", t, func() {
		store := newStore()
		So(store.Replace(ctx, oneReview()), ShouldBeNil)
		before := store.Summary(ctx).Version

		Convey("When a second project is upserted", func() {
			p2 := &model.Project{ID: "p2", Reviews: map[string]*model.Review{
				"p2.r1": {ID: "p2.r1", Sender: "w3", LikeHistory: []model.LikeEvent{like("c1", daysAgo(1), "tx-9")}},
			}}
			So(store.UpsertProject(ctx, p2), ShouldBeNil)

			Convey("Then both projects are scored together", func() {
				sum := store.Summary(ctx)
				So(sum.Projects, ShouldEqual, 2)
				So(sum.Version, ShouldEqual, before+1)
				So(store.Index(ctx, "c1").TotalLikesGiven, ShouldEqual, 2)
			})

			Convey("Then the caller's project is not shared", func() {
				p2.Reviews["p2.r1"].Sender = "changed"
				So(store.Forest(ctx)["p2"].Reviews["p2.r1"].Sender, ShouldEqual, "w3")
			})

			Convey("Then its tx ids are deduplicated", func() {
				ok, err := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p2.r1", Event: like("c1", daysAgo(1), "tx-9")})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an existing project is replaced", func() {
			So(store.UpsertProject(ctx, &model.Project{ID: "p1"}), ShouldBeNil)

			Convey("Then its likes no longer count", func() {
				So(store.Summary(ctx).Projects, ShouldEqual, 1)
				So(store.Index(ctx, "c1").OverallIndex, ShouldEqual, 0)
			})
		})

		Convey("When the project is malformed", func() {
			bad := &model.Project{ID: "p3", Reviews: map[string]*model.Review{
				"p1.r9": {ID: "p1.r9", Sender: "w1"},
			}}

			So(errors.Is(store.UpsertProject(ctx, bad), repository.ErrInvalidForest), ShouldBeTrue)
			So(errors.Is(store.UpsertProject(ctx, nil), repository.ErrInvalidForest), ShouldBeTrue)
			So(errors.Is(store.UpsertProject(ctx, &model.Project{}), repository.ErrInvalidForest), ShouldBeTrue)
			So(store.Summary(ctx).Version, ShouldEqual, before)
		})
	})
}

func TestForestStoreArchive(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store backed by a sqlite archive", t, func() {
		path := filepath.Join(t.TempDir(), "curator.db")
		archive, err := repository.OpenSQLiteArchive(ctx, path)
		So(err, ShouldBeNil)

		store := newStore(repository.WithArchive(archive))
		So(store.Replace(ctx, oneReview()), ShouldBeNil)
		_, err = store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(3), "tx-2")})
		So(err, ShouldBeNil)
		want, _ := store.TopN(ctx, 10)
		So(store.Close(), ShouldBeNil)

		Convey("When a fresh store restores from the same file", func() {
			reopened, err := repository.OpenSQLiteArchive(ctx, path)
			So(err, ShouldBeNil)
			restored := newStore(repository.WithArchive(reopened))
			defer func() { _ = restored.Close() }()

			So(restored.Restore(ctx), ShouldBeNil)

			Convey("Then the leaderboard is the same", func() {
				got, err := restored.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
				So(restored.Forest(ctx)["p1"].Reviews["p1.r1"].Comments["p1.r1.c1"].LikeHistory, ShouldHaveLength, 1)
			})

			Convey("Then archived tx ids are still deduplicated", func() {
				ok, err := restored.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(3), "tx-2")})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given an archived store that upserts a project", t, func() {
		path := filepath.Join(t.TempDir(), "curator.db")
		archive, err := repository.OpenSQLiteArchive(ctx, path)
		So(err, ShouldBeNil)

		store := newStore(repository.WithArchive(archive))
		So(store.Replace(ctx, oneReview()), ShouldBeNil)
		_, err = store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1", Event: like("c2", daysAgo(2), "tx-2")})
		So(err, ShouldBeNil)

		p2 := &model.Project{ID: "p2", Reviews: map[string]*model.Review{
			"p2.r1": {ID: "p2.r1", Sender: "w3", LikeHistory: []model.LikeEvent{like("c3", daysAgo(1), "tx-3")}},
		}}
		So(store.UpsertProject(ctx, p2), ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		reopened, err := repository.OpenSQLiteArchive(ctx, path)
		So(err, ShouldBeNil)
		restored := newStore(repository.WithArchive(reopened))
		defer func() { _ = restored.Close() }()
		So(restored.Restore(ctx), ShouldBeNil)

		Convey("Then both projects and the logged like survive", func() {
			f := restored.Forest(ctx)
			So(f, ShouldHaveLength, 2)
			So(f["p1"].Reviews["p1.r1"].LikeHistory, ShouldHaveLength, 2)
			So(restored.Index(ctx, "c3").TotalLikesGiven, ShouldEqual, 1)
		})
	})

	Convey("Given an archived store that applies a like without a tx id", t, func() {
		path := filepath.Join(t.TempDir(), "curator.db")
		archive, err := repository.OpenSQLiteArchive(ctx, path)
		So(err, ShouldBeNil)

		store := newStore(repository.WithArchive(archive))
		So(store.Replace(ctx, oneReview()), ShouldBeNil)
		ok, err := store.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(2), "")})
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		stamped := store.Forest(ctx)["p1"].Reviews["p1.r1"].Comments["p1.r1.c1"].LikeHistory
		So(stamped, ShouldHaveLength, 1)
		So(stamped[0].TxID, ShouldNotBeEmpty)
		So(store.Close(), ShouldBeNil)

		reopened, err := repository.OpenSQLiteArchive(ctx, path)
		So(err, ShouldBeNil)
		restored := newStore(repository.WithArchive(reopened))
		defer func() { _ = restored.Close() }()
		So(restored.Restore(ctx), ShouldBeNil)

		Convey("Then the restored like keeps the id it was given", func() {
			got := restored.Forest(ctx)["p1"].Reviews["p1.r1"].Comments["p1.r1.c1"].LikeHistory
			So(got, ShouldResemble, stamped)
		})

		Convey("Then replaying that id is a no-op", func() {
			ok, err := restored.ApplyLike(ctx, model.LikeSubmission{ItemID: "p1.r1.c1", Event: like("c2", daysAgo(2), stamped[0].TxID)})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a bare archive", t, func() {
		archive, err := repository.OpenSQLiteArchive(ctx, filepath.Join(t.TempDir(), "curator.db"))
		So(err, ShouldBeNil)
		defer func() { _ = archive.Close() }()

		Convey("Then a like without a tx id is refused", func() {
			_, err := archive.RecordLike(ctx, model.LikeSubmission{ItemID: "p1.r1", Event: like("c1", daysAgo(1), "")})
			So(errors.Is(err, repository.ErrInvalidLike), ShouldBeTrue)
		})
	})

	Convey("Given a store without an archive", t, func() {
		store := newStore()

		So(store.Restore(ctx), ShouldBeNil)
		So(store.Close(), ShouldBeNil)
	})
}

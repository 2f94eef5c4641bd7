package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/curator/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it is empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a tx id is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "tx-1")
			second := d.SeenAndRecord(ctx, "tx-1")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a tx id is unrecorded", func() {
			d.SeenAndRecord(ctx, "tx-1")
			d.Unrecord(ctx, "tx-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"a", "b", "c"} {
			d.SeenAndRecord(ctx, id)
		}

		Convey("When one more id arrives", func() {
			d.SeenAndRecord(ctx, "d")

			Convey("Then the oldest id is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When the oldest id is looked up before one more arrives", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			d.SeenAndRecord(ctx, "d")

			Convey("Then the lookup did not keep it alive", func() {
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When an id in the middle is unrecorded first", func() {
			d.Unrecord(ctx, "b")
			d.SeenAndRecord(ctx, "d")

			Convey("Then no eviction is needed", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("tx-%d", i))
		}

		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "tx-0"), ShouldBeTrue)
	})

	Convey("Given concurrent submitters of the same ids", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("tx-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each id is fresh exactly once", func() {
			So(fresh, ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}

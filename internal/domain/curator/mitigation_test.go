package curator

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDiversity(t *testing.T) {
	Convey("Given population spans", t, func() {
		Convey("When the population spreads from 1 to 5", func() {
			s := span{lo: 1, hi: 5}
			So(diversity(1, s), ShouldAlmostEqual, 0.1, 1e-12)
			So(diversity(3, s), ShouldAlmostEqual, 0.55, 1e-12)
			So(diversity(5, s), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("When everyone ties at one", func() {
			So(diversity(1, span{lo: 1, hi: 1}), ShouldEqual, mitigationFloor)
		})

		Convey("When everyone ties above one", func() {
			So(diversity(4, span{lo: 4, hi: 4}), ShouldEqual, mitigationCeil)
		})
	})
}

func TestRecencyMonotonic(t *testing.T) {
	Convey("Given a fixed reference time", t, func() {
		now := time.Unix(1_700_000_000, 0)

		Convey("Then fresher activity never lowers D3", func() {
			prev := -1.0
			for days := 120; days >= -5; days-- {
				last := now.Unix() - int64(days)*secondsPerDay
				got := recency(&last, now, defaultRecencyFullDays, defaultRecencyZeroDays)
				So(got, ShouldBeGreaterThanOrEqualTo, prev)
				So(got, ShouldBeBetweenOrEqual, mitigationFloor, mitigationCeil)
				prev = got
			}
		})

		Convey("Then a curator who never liked gets the floor", func() {
			So(recency(nil, now, defaultRecencyFullDays, defaultRecencyZeroDays), ShouldEqual, mitigationFloor)
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given values outside the mitigation range", t, func() {
		So(clamp(-3), ShouldEqual, mitigationFloor)
		So(clamp(7), ShouldEqual, mitigationCeil)
		So(clamp(0.5), ShouldEqual, 0.5)
	})
}

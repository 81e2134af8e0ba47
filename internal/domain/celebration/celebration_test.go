package celebration_test

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/troxeldj/greek-god-arena/internal/domain/celebration"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestFlag(t *testing.T) {
	Convey("Given a celebration flag with a short delay", t, func() {
		var expired atomic.Int32
		f := celebration.New(30*time.Millisecond, celebration.WithOnExpire(func() { expired.Add(1) }))

		Convey("Then it starts lowered", func() {
			So(f.Active(), ShouldBeFalse)
		})

		Convey("When started", func() {
			f.Start()

			Convey("Then it is raised and clears itself after the delay", func() {
				So(f.Active(), ShouldBeTrue)
				So(waitFor(func() bool { return !f.Active() }), ShouldBeTrue)
				So(waitFor(func() bool { return expired.Load() == 1 }), ShouldBeTrue)
			})
		})

		Convey("When cancelled before the timer fires", func() {
			f.Start()
			pending := f.Cancel()
			time.Sleep(80 * time.Millisecond)

			Convey("Then the flag is lowered and the expiry callback never runs", func() {
				So(pending, ShouldBeTrue)
				So(f.Active(), ShouldBeFalse)
				So(expired.Load(), ShouldEqual, 0)
			})
		})

		Convey("When cancelled while idle", func() {
			So(f.Cancel(), ShouldBeFalse)
		})

		Convey("When restarted before expiry", func() {
			f.Start()
			time.Sleep(10 * time.Millisecond)
			f.Start()

			Convey("Then only the latest timer clears the flag", func() {
				So(f.Active(), ShouldBeTrue)
				So(waitFor(func() bool { return !f.Active() }), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				So(expired.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a flag with no delay", t, func() {
		f := celebration.New(0)
		f.Start()

		Convey("Then it never rises", func() {
			So(f.Active(), ShouldBeFalse)
		})
	})
}

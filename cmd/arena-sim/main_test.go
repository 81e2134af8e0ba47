package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/troxeldj/greek-god-arena/internal/simulate"
	"github.com/troxeldj/greek-god-arena/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestRoot(t *testing.T) {
	convey.Convey("Given the arena-sim command tree", t, func() {
		root := Root()
		out := &bytes.Buffer{}
		root.SetOut(out)
		root.SetErr(out)

		convey.Convey("Then play is registered with its flags", func() {
			play, _, err := root.Find([]string{"play"})
			convey.So(err, convey.ShouldBeNil)
			for _, name := range []string{"url", "matches", "workers", "seed", "timeout", "settle", "max-rounds"} {
				convey.So(play.Flags().Lookup(name), convey.ShouldNotBeNil)
			}
		})

		convey.Convey("When play is given an invalid worker count", func() {
			root.SetArgs([]string{"play", "--workers", "0"})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then it fails before contacting any server", func() {
				convey.So(errors.Is(err, simulate.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(out.String(), convey.ShouldContainSubstring, "played 0")
			})
		})

		convey.Convey("When an unknown flag is passed", func() {
			root.SetArgs([]string{"play", "--rounds", "3"})

			convey.Convey("Then execution fails", func() {
				convey.So(root.ExecuteContext(context.Background()), convey.ShouldNotBeNil)
			})
		})
	})
}

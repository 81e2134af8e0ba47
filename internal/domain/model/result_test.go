package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/troxeldj/greek-god-arena/internal/domain/model"
)

func TestMatchResultValidate(t *testing.T) {
	convey.Convey("Given a completed match result", t, func() {
		valid := model.MatchResult{
			MatchID:     "m-1",
			SessionID:   "s-1",
			WinnerID:    "zeus",
			LoserID:     "hades",
			WinnerScore: 3,
			LoserScore:  1,
			Rounds:      6,
			FinishedAt:  time.Now(),
		}

		convey.Convey("Then a consistent result validates", func() {
			convey.So(valid.Validate(), convey.ShouldBeNil)
		})

		broken := map[string]func(*model.MatchResult){
			"missing match id": func(r *model.MatchResult) { r.MatchID = "" },
			"missing loser":    func(r *model.MatchResult) { r.LoserID = "" },
			"self match":       func(r *model.MatchResult) { r.LoserID = r.WinnerID },
			"winner not ahead": func(r *model.MatchResult) { r.LoserScore = 3 },
			"too few rounds":   func(r *model.MatchResult) { r.Rounds = 2 },
		}
		for name, mutate := range broken {
			r := valid
			mutate(&r)

			convey.Convey("Then a result with "+name+" is rejected", func() {
				err := r.Validate()
				convey.So(errors.Is(err, model.ErrInvalidResult), convey.ShouldBeTrue)
			})
		}
	})
}

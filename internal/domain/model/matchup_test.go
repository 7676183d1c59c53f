package model_test

import (
	"errors"
	"testing"

	"github.com/okian/multielo/internal/domain/elo"
	model "github.com/okian/multielo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMatchup(t *testing.T) {
	convey.Convey("Given a Matchup with ties and an empty place", t, func() {
		m := model.Matchup{
			ID:     "m-1",
			Label:  "2020-04-05",
			Places: [][]string{{"Lisa", "Bart"}, nil, {"Homer"}},
		}

		convey.Convey("When flattening its places", func() {
			ids, order := m.Participants()

			convey.Convey("Then tied participants share a slot and gaps are kept", func() {
				convey.So(ids, convey.ShouldResemble, []string{"Lisa", "Bart", "Homer"})
				convey.So(order, convey.ShouldResemble, []int{0, 0, 2})
				convey.So(m.Size(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When validating it", func() {
			convey.Convey("Then it is accepted", func() {
				convey.So(m.Validate(), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given malformed matchups", t, func() {
		cases := []struct {
			name string
			m    model.Matchup
		}{
			{"missing label", model.Matchup{Places: [][]string{{"a"}, {"b"}}}},
			{"no places", model.Matchup{Label: "1"}},
			{"empty id", model.Matchup{Label: "1", Places: [][]string{{"a"}, {""}}}},
		}

		for _, tc := range cases {
			err := tc.m.Validate()

			convey.Convey("Then a matchup with "+tc.name+" is a constraint violation", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, model.ErrInvalidMatchup), convey.ShouldBeTrue)
				convey.So(errors.Is(err, elo.ErrConstraintViolation), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a Matchup with no places", t, func() {
		ids, order := model.Matchup{Label: "x"}.Participants()

		convey.Convey("Then it flattens to nothing", func() {
			convey.So(ids, convey.ShouldBeEmpty)
			convey.So(order, convey.ShouldBeEmpty)
		})
	})
}

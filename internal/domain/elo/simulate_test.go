package elo_test

import (
	"errors"
	"testing"

	"github.com/okian/multielo/internal/domain/elo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResultProportions(t *testing.T) {
	Convey("Given simulated score matrices", t, func() {
		cases := []struct {
			name   string
			scores [][]float64
			counts [][]float64
		}{
			{
				name: "three participants",
				scores: [][]float64{
					{100, 100, 100, 100, 100, 100},
					{110, 90, 110, 90, 110, 90},
					{85, 95, 105, 85, 95, 105},
				},
				counts: [][]float64{
					{2, 3, 1},
					{3, 1, 2},
					{1, 2, 3},
				},
			},
			{
				name: "a participant that always loses",
				scores: [][]float64{
					{100, 100, 100, 100, 100, 100},
					{110, 90, 110, 90, 110, 90},
					{85, 95, 105, 85, 95, 105},
					{0, 0, 0, 0, 0, 0},
				},
				counts: [][]float64{
					{2, 3, 1, 0},
					{3, 1, 2, 0},
					{1, 2, 3, 0},
					{0, 0, 0, 6},
				},
			},
			{
				name: "seven trials",
				scores: [][]float64{
					{100, 100, 100, 100, 100, 100, 100},
					{110, 101, 110, 101, 110, 101, 110},
					{85, 95, 105, 85, 95, 105, 85},
				},
				counts: [][]float64{
					{0, 5, 2},
					{6, 1, 0},
					{1, 1, 5},
				},
			},
		}

		for _, tc := range cases {
			got, err := elo.ResultProportions(tc.scores)
			trials := float64(len(tc.scores[0]))

			Convey("Then "+tc.name+" is counted per place", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, len(tc.counts))
				for i, row := range tc.counts {
					want := make([]float64, len(row))
					for j, c := range row {
						want[j] = c / trials
					}
					So(got[i], shouldAlmostEqualSlice, want, 1e-12)
				}
			})
		}

		Convey("When rows have different trial counts", func() {
			_, err := elo.ResultProportions([][]float64{
				{100, 90, 100},
				{95, 105},
				{80, 120, 80},
			})

			Convey("Then a data shape violation is returned", func() {
				So(errors.Is(err, elo.ErrDataShape), ShouldBeTrue)
			})
		})

		Convey("When the matrix is empty", func() {
			_, err := elo.ResultProportions(nil)

			Convey("Then a data shape violation is returned", func() {
				So(errors.Is(err, elo.ErrDataShape), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_SimulateWinProbabilities(t *testing.T) {
	Convey("Given an engine", t, func() {
		e := mustEngine(elo.WithD(400))

		Convey("When simulating with a seed", func() {
			ratings := []float64{1000, 1200, 900, 1100}
			first, err := e.SimulateWinProbabilities(ratings, 2000, elo.WithSeed(11))
			So(err, ShouldBeNil)
			second, err := e.SimulateWinProbabilities(ratings, 2000, elo.WithSeed(11))
			So(err, ShouldBeNil)

			Convey("Then the result is reproducible", func() {
				So(second, ShouldResemble, first)
			})

			Convey("Then every row and every column sums to one", func() {
				for i := range first {
					So(sum(first[i]), ShouldAlmostEqual, 1, 1e-9)
					var col float64
					for j := range first {
						col += first[j][i]
					}
					So(col, ShouldAlmostEqual, 1, 1e-9)
				}
			})

			Convey("Then the input order does not change anybody's row", func() {
				reordered := []float64{1100, 900, 1200, 1000}
				got, err := e.SimulateWinProbabilities(reordered, 2000, elo.WithSeed(11))
				So(err, ShouldBeNil)
				So(got[0], ShouldResemble, first[3])
				So(got[1], ShouldResemble, first[2])
				So(got[2], ShouldResemble, first[1])
				So(got[3], ShouldResemble, first[0])
			})
		})

		Convey("When two players are simulated many times", func() {
			got, err := e.SimulateWinProbabilities([]float64{1200, 1000}, 20000, elo.WithSeed(5))
			expected, _ := e.ExpectedScores([]float64{1200, 1000})

			Convey("Then the win rate matches the logistic expectation", func() {
				So(err, ShouldBeNil)
				So(got[0][0], ShouldAlmostEqual, expected[0], 0.02)
				So(got[1][0], ShouldAlmostEqual, expected[1], 0.02)
			})
		})

		Convey("When the input is invalid", func() {
			_, errShort := e.SimulateWinProbabilities([]float64{1000}, 100)
			_, errRuns := e.SimulateWinProbabilities([]float64{1000, 1000}, 0)

			Convey("Then a constraint violation is returned", func() {
				So(errors.Is(errShort, elo.ErrConstraintViolation), ShouldBeTrue)
				So(errors.Is(errRuns, elo.ErrConstraintViolation), ShouldBeTrue)
			})
		})

		Convey("When no seed is given", func() {
			got, err := e.SimulateWinProbabilities([]float64{1000, 1000, 1000}, 100)

			Convey("Then a valid matrix is still produced", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
			})
		})
	})
}

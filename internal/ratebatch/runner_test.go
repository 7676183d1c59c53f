package ratebatch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/multielo/internal/domain/elo"
	"github.com/okian/multielo/internal/ratebatch"
	"github.com/okian/multielo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const simpsonsCSV = `date,1st,2nd,3rd
2020-04-12,Lisa,Marge,Homer
2020-03-29,Homer,Marge,Bart
2020-04-05,Lisa,Bart,Homer
`

func writeInput(t *testing.T, name, body string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a CSV batch", t, func() {
		cfg := ratebatch.DefaultConfig()
		cfg.Input = writeInput(t, "games.csv", simpsonsCSV)
		var out bytes.Buffer

		Convey("When it is rated", func() {
			stats, err := ratebatch.Run(ctx, cfg, &out, logger.Nop())

			Convey("Then the table lists everybody by rating", func() {
				So(err, ShouldBeNil)
				So(stats.Matchups, ShouldEqual, 3)
				So(stats.Processed, ShouldEqual, 3)
				So(stats.Participants, ShouldEqual, 4)
				lines := strings.Split(strings.TrimSpace(out.String()), "\n")
				So(lines, ShouldHaveLength, 5)
				So(lines[0], ShouldContainSubstring, "rating")
				So(lines[1], ShouldContainSubstring, "Lisa")
				So(lines[1], ShouldContainSubstring, "1041.30")
				So(lines[4], ShouldContainSubstring, "Homer")
			})
		})

		Convey("When only the top rows are requested", func() {
			cfg.Top = 2
			_, err := ratebatch.Run(ctx, cfg, &out, logger.Nop())

			Convey("Then the table is cut", func() {
				So(err, ShouldBeNil)
				So(strings.Count(out.String(), "\n"), ShouldEqual, 3)
			})
		})

		Convey("When it is rated twice against a state file", func() {
			cfg.StatePath = filepath.Join(t.TempDir(), "state", "ratings.json")
			_, err := ratebatch.Run(ctx, cfg, &out, logger.Nop())
			So(err, ShouldBeNil)
			out.Reset()
			stats, err := ratebatch.Run(ctx, cfg, &out, logger.Nop())

			Convey("Then the second run builds on the first", func() {
				So(err, ShouldBeNil)
				So(stats.Participants, ShouldEqual, 4)
				_, statErr := os.Stat(cfg.StatePath)
				So(statErr, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "  6  ")
			})
		})
	})

	Convey("Given a batch with a lone participant", t, func() {
		cfg := ratebatch.DefaultConfig()
		cfg.Input = writeInput(t, "games.jsonl", `{"date":"1","places":["a","b"]}
{"date":"2","places":["c"]}
`)
		cfg.StatePath = filepath.Join(t.TempDir(), "ratings.json")
		var out bytes.Buffer

		Convey("When it is rated", func() {
			stats, err := ratebatch.Run(ctx, cfg, &out, logger.Nop())

			Convey("Then it fails after saving what was applied", func() {
				So(errors.Is(err, elo.ErrConstraintViolation), ShouldBeTrue)
				So(stats.Processed, ShouldEqual, 1)
				So(out.Len(), ShouldEqual, 0)
				_, statErr := os.Stat(cfg.StatePath)
				So(statErr, ShouldBeNil)
			})
		})
	})

	Convey("Given an invalid configuration", t, func() {
		cfg := ratebatch.DefaultConfig()
		cfg.Top = -1

		Convey("Then Run rejects it before reading anything", func() {
			_, err := ratebatch.Run(ctx, cfg, &bytes.Buffer{}, logger.Nop())
			So(errors.Is(err, ratebatch.ErrInvalidConfig), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "-input")
			So(err.Error(), ShouldContainSubstring, "-top")
		})
	})

	Convey("Given bad engine parameters", t, func() {
		cfg := ratebatch.DefaultConfig()
		cfg.Input = writeInput(t, "games.csv", simpsonsCSV)
		cfg.LogBase = 1

		Convey("Then Run fails with a constraint violation", func() {
			_, err := ratebatch.Run(ctx, cfg, &bytes.Buffer{}, logger.Nop())
			So(errors.Is(err, elo.ErrConstraintViolation), ShouldBeTrue)
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var out bytes.Buffer
		ratebatch.ShowHelp(&out)

		Convey("Then every flag is documented", func() {
			for _, flag := range []string{"-input", "-label", "-k", "-d", "-base", "-log-base", "-initial", "-history", "-state", "-top", "-verbose"} {
				So(out.String(), ShouldContainSubstring, flag+" ")
			}
		})
	})
}

package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/multielo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.KValue, convey.ShouldEqual, 32.0)
			convey.So(cfg.DValue, convey.ShouldEqual, 400.0)
			convey.So(cfg.ScoreBase, convey.ShouldEqual, 1.0)
			convey.So(cfg.LogBase, convey.ShouldEqual, 10.0)
			convey.So(cfg.InitialRating, convey.ShouldEqual, 1000.0)
			convey.So(cfg.KeepHistory, convey.ShouldBeTrue)
			convey.So(cfg.LabelField, convey.ShouldEqual, "date")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, "none")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"an empty addr", func(c *config.Config) { c.Addr = "" }},
			{"an unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"a zero k", func(c *config.Config) { c.KValue = 0 }},
			{"a negative d", func(c *config.Config) { c.DValue = -1 }},
			{"a score base below one", func(c *config.Config) { c.ScoreBase = 0.5 }},
			{"a log base of one", func(c *config.Config) { c.LogBase = 1 }},
			{"an empty label field", func(c *config.Config) { c.LabelField = "" }},
			{"a zero leaderboard limit", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"zero simulation runs", func(c *config.Config) { c.SimulationRuns = 0 }},
			{"a run cap below the default runs", func(c *config.Config) { c.MaxSimulationRuns = c.SimulationRuns - 1 }},
			{"an unknown backend", func(c *config.Config) { c.StoreBackend = "tape" }},
			{"a file backend without a path", func(c *config.Config) { c.StoreBackend = "file" }},
			{"a bolt backend without a path", func(c *config.Config) { c.StoreBackend = "bolt" }},
			{"an s3 backend without a bucket", func(c *config.Config) { c.StoreBackend = "s3" }},
			{"an empty store key", func(c *config.Config) {
				c.StoreBackend, c.StorePath, c.StoreKey = "file", "/tmp/x", ""
			}},
		}

		for _, tc := range cases {
			cfg := config.New(context.Background())
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

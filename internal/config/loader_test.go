package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/multielo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.KValue, convey.ShouldEqual, 32.0)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "none")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MULTIELO_ADDR", ":8080")
			_ = os.Setenv("MULTIELO_K_VALUE", "24")
			_ = os.Setenv("MULTIELO_SCORE_BASE", "1.5")
			_ = os.Setenv("MULTIELO_KEEP_HISTORY", "false")
			_ = os.Setenv("MULTIELO_LABEL_FIELD", "round")
			_ = os.Setenv("MULTIELO_STORE_BACKEND", "bolt")
			_ = os.Setenv("MULTIELO_STORE_PATH", "/var/lib/multielo/state.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.KValue, convey.ShouldEqual, 24.0)
				convey.So(cfg.ScoreBase, convey.ShouldEqual, 1.5)
				convey.So(cfg.KeepHistory, convey.ShouldBeFalse)
				convey.So(cfg.LabelField, convey.ShouldEqual, "round")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "bolt")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/var/lib/multielo/state.db")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
# rating engine
addr: ":9090"
k_value: 16
d_value: 200
log_base: 2.718281828
simulation_runs: 500
max_simulation_runs: 2000
store_backend: s3
store_bucket: ratings
store_gzip: true
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MULTIELO_CONFIG", tmpFile)
			_ = os.Setenv("MULTIELO_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.KValue, convey.ShouldEqual, 16.0)
				convey.So(cfg.DValue, convey.ShouldEqual, 200.0)
				convey.So(cfg.LogBase, convey.ShouldAlmostEqual, 2.718281828, 1e-12)
				convey.So(cfg.SimulationRuns, convey.ShouldEqual, 500)
				convey.So(cfg.MaxSimulationRuns, convey.ShouldEqual, 2000)
				convey.So(cfg.StoreBucket, convey.ShouldEqual, "ratings")
				convey.So(cfg.StoreGzip, convey.ShouldBeTrue)
				convey.So(cfg.InitialRating, convey.ShouldEqual, 1000.0)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MULTIELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MULTIELO_CONFIG", "/nonexistent/multielo.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MULTIELO_K_VALUE", "lots")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an out of range value", func() {
			_ = os.Setenv("MULTIELO_LOG_BASE", "1")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MULTIELO_CONFIG",
		"MULTIELO_ADDR",
		"MULTIELO_K_VALUE",
		"MULTIELO_SCORE_BASE",
		"MULTIELO_LOG_BASE",
		"MULTIELO_KEEP_HISTORY",
		"MULTIELO_LABEL_FIELD",
		"MULTIELO_STORE_BACKEND",
		"MULTIELO_STORE_PATH",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "multielo-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

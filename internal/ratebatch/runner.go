// Package ratebatch runs the batch rating tool: read a file of matchups,
// rate them, persist the state and print the table.
package ratebatch

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/okian/multielo/internal/adapters/ingest"
	"github.com/okian/multielo/internal/adapters/repository"
	service "github.com/okian/multielo/internal/app"
	"github.com/okian/multielo/internal/domain/types"
	"github.com/okian/multielo/pkg/logger"
)

// Stats summarizes one run.
type Stats struct {
	Matchups     int
	Processed    int
	Skipped      int
	Participants int
	Duration     time.Duration
}

// Run rates the batch named by cfg and writes the ratings table to out.
// When the batch fails partway, the matchups before the failing one stay
// applied and are saved.
func Run(ctx context.Context, cfg Config, out io.Writer, log logger.Logger) (Stats, error) {
	start := time.Now()
	var stats Stats

	if err := cfg.Validate(); err != nil {
		return stats, err
	}

	batch, err := ingest.ReadFile(cfg.Input, ingest.WithLabelField(cfg.LabelField))
	if err != nil {
		return stats, fmt.Errorf("read %s: %w", cfg.Input, err)
	}
	stats.Matchups = len(batch.Matchups)
	log.Info(ctx, "batch loaded",
		logger.String("input", cfg.Input),
		logger.Int("matchups", stats.Matchups),
	)

	limit := cfg.Top
	if limit == 0 {
		limit = math.MaxInt32
	}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithEngineParams(cfg.K, cfg.D, cfg.ScoreBase, cfg.LogBase),
		service.WithInitialRating(cfg.InitialRating),
		service.WithKeepHistory(cfg.KeepHistory),
		service.WithLabelField(cfg.LabelField),
		service.WithMaxLeaderboardLimit(limit),
	}
	if cfg.StatePath != "" {
		store, err := openState(cfg)
		if err != nil {
			return stats, err
		}
		opts = append(opts, service.WithStateStore(store))
	}

	svc, err := service.New(opts...)
	if err != nil {
		return stats, err
	}
	if err := svc.Start(ctx); err != nil {
		return stats, err
	}

	res, batchErr := svc.SubmitBatch(ctx, batch)
	stats.Processed, stats.Skipped = res.Processed, res.Skipped

	var entries []types.RatingEntry
	if batchErr == nil {
		entries, err = svc.Leaderboard(ctx, limit)
		if err != nil {
			batchErr = err
		}
	}
	if n, ok := svc.GetStats()["participants"].(int); ok {
		stats.Participants = n
	}
	if err := svc.Stop(); err != nil {
		return stats, fmt.Errorf("save state: %w", err)
	}
	stats.Duration = time.Since(start)
	if batchErr != nil {
		return stats, batchErr
	}

	log.Info(ctx, "batch rated",
		logger.Int("processed", stats.Processed),
		logger.Int("skipped", stats.Skipped),
		logger.Int("participants", stats.Participants),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, writeTable(out, entries)
}

func openState(cfg Config) (*repository.StateStore, error) {
	blobs, err := repository.NewFileStore(filepath.Dir(cfg.StatePath))
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", cfg.StatePath, err)
	}
	opts := []repository.StateOption{repository.WithKey(filepath.Base(cfg.StatePath))}
	if !cfg.KeepHistory {
		opts = append(opts, repository.WithoutHistory())
	}
	return repository.NewStateStore(blobs, opts...), nil
}

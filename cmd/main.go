package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/multielo/internal/adapters/http/api"
	"github.com/okian/multielo/internal/adapters/http/swagger"
	"github.com/okian/multielo/internal/adapters/repository"
	service "github.com/okian/multielo/internal/app"
	"github.com/okian/multielo/internal/config"
	"github.com/okian/multielo/pkg/logger"
	"github.com/okian/multielo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our registry carries its own system gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and the HTTP server and blocks until ctx is done
// or one of them fails.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	err = g.Wait()
	if stopErr := svc.Stop(); stopErr != nil {
		err = errors.Join(err, fmt.Errorf("stop service: %w", stopErr))
	}
	log.Info(ctx, "server stopped")
	return err
}

// buildService wires persistence and the rating service from cfg.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithEngineParams(cfg.KValue, cfg.DValue, cfg.ScoreBase, cfg.LogBase),
		service.WithInitialRating(cfg.InitialRating),
		service.WithKeepHistory(cfg.KeepHistory),
		service.WithLabelField(cfg.LabelField),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		service.WithSimulationRuns(cfg.SimulationRuns),
		service.WithMaxSimulationRuns(cfg.MaxSimulationRuns),
	}

	blobs, err := repository.NewBlobStore(ctx, repository.Config{
		Backend: cfg.StoreBackend,
		Path:    cfg.StorePath,
		Bucket:  cfg.StoreBucket,
		Gzip:    cfg.StoreGzip,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	if blobs != nil {
		stateOpts := []repository.StateOption{
			repository.WithKey(cfg.StoreKey),
			repository.WithLogger(log.Named("state")),
		}
		if !cfg.KeepHistory {
			stateOpts = append(stateOpts, repository.WithoutHistory())
		}
		opts = append(opts, service.WithStateStore(repository.NewStateStore(blobs, stateOpts...)))
	}

	svc, err := service.New(opts...)
	if err != nil {
		if blobs != nil {
			_ = blobs.Close()
		}
		return nil, err
	}
	return svc, nil
}

func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the participants gauge.
			_ = svc.GetStats()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

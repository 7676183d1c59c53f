package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/multielo/internal/ratebatch"
	"github.com/okian/multielo/pkg/logger"
)

func main() {
	def := ratebatch.DefaultConfig()
	cfg := def

	fs := flag.NewFlagSet("ratebatch", flag.ExitOnError)
	fs.Usage = func() { ratebatch.ShowHelp(os.Stderr) }
	fs.StringVar(&cfg.Input, "input", "", "batch file (.csv or .jsonl)")
	fs.StringVar(&cfg.LabelField, "label", def.LabelField, "label column or key")
	fs.Float64Var(&cfg.K, "k", def.K, "rating swing")
	fs.Float64Var(&cfg.D, "d", def.D, "rating spread")
	fs.Float64Var(&cfg.ScoreBase, "base", def.ScoreBase, "score base, 1 is linear")
	fs.Float64Var(&cfg.LogBase, "log-base", def.LogBase, "base of the logistic curve")
	fs.Float64Var(&cfg.InitialRating, "initial", def.InitialRating, "rating of new participants")
	fs.BoolVar(&cfg.KeepHistory, "history", def.KeepHistory, "keep every rating snapshot")
	fs.StringVar(&cfg.StatePath, "state", "", "state file loaded before and saved after the run")
	fs.IntVar(&cfg.Top, "top", 0, "rows to print, 0 for all")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "debug logging on stderr")
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := ratebatch.NewLogger(os.Stderr, cfg.Verbose)
	if _, err := ratebatch.Run(ctx, cfg, os.Stdout, log); err != nil {
		log.Error(ctx, "ratebatch failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

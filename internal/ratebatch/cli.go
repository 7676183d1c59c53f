package ratebatch

import (
	"io"
	"log/slog"

	"github.com/okian/multielo/pkg/logger"
)

// NewLogger returns a text logger on w at info level, or debug when
// verbose is set.
func NewLogger(w io.Writer, verbose bool) logger.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logger.New(w, logger.WithFormat("text"), logger.WithLevel(level))
}

// ShowHelp prints usage information for the batch tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `ratebatch
=========

Rates a batch of ranked matchups with multiplayer Elo and prints the table.

Usage:
  ratebatch -input FILE [options]

Input:
  .csv     header row; the label column plus one column per place, best
           first. Tied participants share a cell separated by "|".
  .jsonl   one object per line: {"<label>": "...", "id": "...", "places": [...]}
           where a place is null, "id" or ["id", ...].

Options:
  -input string     batch file (required)
  -label string     label column or key (default "date")
  -k float          rating swing (default 32)
  -d float          rating spread (default 400)
  -base float       score base, 1 is linear (default 1)
  -log-base float   base of the logistic curve (default 10)
  -initial float    rating of new participants (default 1000)
  -history          keep every rating snapshot (default true)
  -state string     state file loaded before and saved after the run
  -top int          rows to print, 0 for all (default 0)
  -verbose          debug logging on stderr

Ratings accumulate in the state file: feeding the same input twice
applies it twice.

Examples:
  ratebatch -input games.csv
  ratebatch -input season.jsonl -label round -base 1.5 -state ratings.json -top 20
`)
}

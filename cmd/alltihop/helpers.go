package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"log/slog"

	"alltihop/internal/catalog"
	"alltihop/internal/config"
	"alltihop/internal/logging"
)

// recordRun persists run history best-effort: the catalog is an audit aid,
// never a prerequisite, so failures only warn.
func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, run catalog.Run) {
	store, err := catalog.Open(cfg.Paths.Catalog)
	if err != nil {
		logger.Warn("run catalog unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, run); err != nil {
		logger.Warn("failed to record run", logging.Error(err))
	}
}

func runMode(apply bool) string {
	if apply {
		return catalog.ModeApply
	}
	return catalog.ModeDryRun
}

func printNotes(out io.Writer, notes []string) {
	for _, note := range notes {
		fmt.Fprintf(out, "WARN: %s\n", note)
	}
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

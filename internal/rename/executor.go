package rename

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"alltihop/internal/fileutil"
	"alltihop/internal/logging"
	"alltihop/internal/oplog"
	"alltihop/internal/services"
)

// ExecuteOptions control a single executor run.
type ExecuteOptions struct {
	// Apply performs the moves; when false the executor only reports.
	Apply bool
	// Log receives one record per performed move. Required when Apply is set.
	Log *oplog.Appender
	// RunID tags log records from this invocation. Generated when empty.
	RunID string
	// Now stamps applied_at; defaults to time.Now.
	Now func() time.Time
}

// Summary is the per-run outcome reported back to the CLI.
type Summary struct {
	RunID          string
	Planned        int
	Applied        int
	Skipped        int
	LegacyFailures int
	Notes          []string
	Records        []oplog.Record
}

// Executor applies rename plans. Every performed move is followed by exactly
// one flushed log append; a failed legacy artifact never suppresses the
// record, and a failed log append aborts the run so disk and log cannot
// drift apart silently.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor constructs an executor.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logging.NewComponentLogger(logger, "executor")}
}

// Execute runs the plan. Dry runs touch nothing and append nothing.
func (e *Executor) Execute(ctx context.Context, plan *Plan, opts ExecuteOptions) (*Summary, error) {
	logger := logging.WithContext(ctx, e.logger)
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	summary := &Summary{RunID: opts.RunID, Planned: len(plan.Operations)}
	summary.Notes = append(summary.Notes, plan.Notes...)

	if !opts.Apply {
		for _, op := range plan.Operations {
			logger.Info(
				"would rename",
				logging.String("kind", string(op.Kind)),
				logging.String(logging.FieldPiece, op.ShortID),
				logging.String("src", op.Src),
				logging.String("dst", op.Dst),
			)
		}
		return summary, nil
	}
	if opts.Log == nil {
		return summary, services.Wrap(services.ErrConfiguration, "renaming", "open log", "Applying renames requires an open rename log", nil)
	}

	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		opLogger := logger.With(
			logging.String("kind", string(op.Kind)),
			logging.String(logging.FieldPiece, op.ShortID),
		)

		if _, err := os.Stat(op.Src); err != nil {
			summary.Skipped++
			summary.Notes = append(summary.Notes, fmt.Sprintf("%s: source %s no longer present", op.ShortID, op.Src))
			opLogger.Warn("source missing, skipping", logging.String("src", op.Src))
			continue
		}

		// The plan may be minutes old; resolve the destination again right
		// before the move and refuse to overwrite anything.
		dst, err := fileutil.UniquePath(op.Dst)
		if err != nil {
			summary.Skipped++
			summary.Notes = append(summary.Notes, fmt.Sprintf("%s: cannot resolve destination for %s: %v", op.ShortID, op.Src, err))
			opLogger.Warn("destination resolution failed", logging.Error(err))
			continue
		}
		if occupied, err := fileutil.PathExists(dst); err != nil || occupied {
			if err == nil && fileutil.SameFile(op.Src, dst) {
				opLogger.Info("already in place", logging.String("dst", dst))
			} else {
				summary.Notes = append(summary.Notes, fmt.Sprintf("%s: destination %s occupied, skipping", op.ShortID, dst))
				opLogger.Warn("destination occupied, skipping", logging.String("dst", dst))
			}
			summary.Skipped++
			continue
		}

		if err := fileutil.MoveFile(op.Src, dst); err != nil {
			summary.Skipped++
			summary.Notes = append(summary.Notes, fmt.Sprintf("%s: move failed: %v", op.ShortID, err))
			opLogger.Warn("move failed", logging.String("src", op.Src), logging.String("dst", dst), logging.Error(err))
			continue
		}

		outcome := fileutil.OutcomeNone
		switch op.LegacyMode {
		case LegacyLink:
			outcome, err = fileutil.EnsureLink(dst, op.Src)
		case LegacyCopy:
			outcome, err = fileutil.EnsureCopy(dst, op.Src)
		default:
			err = nil
		}
		if err != nil {
			summary.LegacyFailures++
			summary.Notes = append(summary.Notes, fmt.Sprintf("%s: legacy %s failed: %v", op.ShortID, op.LegacyMode, err))
			opLogger.Warn("legacy artifact failed", logging.String("legacy_mode", string(op.LegacyMode)), logging.Error(err))
			outcome = fileutil.OutcomeNone
		}

		record := oplog.Record{
			Kind:         string(op.Kind),
			ShortID:      op.ShortID,
			Title:        op.Title,
			Src:          op.Src,
			Dst:          dst,
			LegacyMode:   string(op.LegacyMode),
			LegacyResult: string(outcome),
			RunID:        opts.RunID,
			AppliedAt:    opts.Now().UTC().Format(time.RFC3339),
		}
		if err := opts.Log.Append(record); err != nil {
			// The move happened but the log did not record it. Stop the run
			// immediately so the operator sees the gap while it is one line.
			return summary, services.Wrap(services.ErrTransient, "renaming", "append log", fmt.Sprintf("Renamed %s but failed to write the log record", dst), err)
		}
		summary.Records = append(summary.Records, record)
		summary.Applied++
		opLogger.Info(
			"renamed",
			logging.String("src", op.Src),
			logging.String("dst", dst),
			logging.String("legacy_result", string(outcome)),
		)
	}
	return summary, nil
}

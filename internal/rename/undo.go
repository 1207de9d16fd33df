package rename

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"alltihop/internal/fileutil"
	"alltihop/internal/logging"
	"alltihop/internal/oplog"
)

// UndoOptions control a reversal run.
type UndoOptions struct {
	// Apply performs the restores; when false the engine only reports.
	Apply bool
}

// UndoAction records what happened (or would happen) for one log record.
type UndoAction struct {
	Record        oplog.Record
	Restored      bool
	RemovedLegacy bool
	Note          string
}

// UndoReport summarizes a reversal run.
type UndoReport struct {
	Total         int
	Restored      int
	AlreadyUndone int
	Failures      int
	Actions       []UndoAction
}

// Undo replays log records in reverse chronological order, restoring each
// file to its original path. The destination is checked first: when it no
// longer exists the record is reported and skipped, so a file that was
// already restored to src is never deleted as a legacy artifact. Running undo
// against an already-undone log is a no-op.
func Undo(ctx context.Context, records []oplog.Record, opts UndoOptions, logger *slog.Logger) (*UndoReport, error) {
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "undo"))
	report := &UndoReport{Total: len(records)}
	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec := records[i]
		action := UndoAction{Record: rec}
		recLogger := log.With(
			logging.String(logging.FieldPiece, rec.ShortID),
			logging.String("dst", rec.Dst),
		)

		dstExists, err := fileutil.PathExists(rec.Dst)
		if err != nil {
			report.Failures++
			action.Note = fmt.Sprintf("cannot inspect %s: %v", rec.Dst, err)
			report.Actions = append(report.Actions, action)
			recLogger.Warn("undo probe failed", logging.Error(err))
			continue
		}
		if !dstExists {
			report.AlreadyUndone++
			action.Note = "renamed file missing; already undone or moved externally"
			report.Actions = append(report.Actions, action)
			recLogger.Info("nothing to undo")
			continue
		}

		// Whatever sits at the original path is the legacy artifact left by
		// the rename, including broken symlinks, so lstat rather than stat.
		if info, lerr := os.Lstat(rec.Src); lerr == nil {
			if info.IsDir() {
				report.Failures++
				action.Note = fmt.Sprintf("unexpected directory at %s", rec.Src)
				report.Actions = append(report.Actions, action)
				recLogger.Warn("original path occupied by a directory, skipping")
				continue
			}
			if opts.Apply {
				if rerr := os.Remove(rec.Src); rerr != nil {
					report.Failures++
					action.Note = fmt.Sprintf("cannot remove legacy artifact: %v", rerr)
					report.Actions = append(report.Actions, action)
					recLogger.Warn("legacy artifact removal failed", logging.Error(rerr))
					continue
				}
			}
			action.RemovedLegacy = true
		}

		if opts.Apply {
			if merr := fileutil.MoveFile(rec.Dst, rec.Src); merr != nil {
				report.Failures++
				action.Note = fmt.Sprintf("restore failed: %v", merr)
				report.Actions = append(report.Actions, action)
				recLogger.Warn("restore failed", logging.Error(merr))
				continue
			}
			recLogger.Info("restored", logging.String("src", rec.Src), logging.Bool("removed_legacy", action.RemovedLegacy))
		} else {
			recLogger.Info("would restore", logging.String("src", rec.Src), logging.Bool("remove_legacy", action.RemovedLegacy))
		}
		action.Restored = true
		report.Restored++
		report.Actions = append(report.Actions, action)
	}
	return report, nil
}

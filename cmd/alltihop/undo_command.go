package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alltihop/internal/catalog"
	"alltihop/internal/oplog"
	"alltihop/internal/rename"
	"alltihop/internal/services"
)

func newUndoCommand(cc *commandContext) *cobra.Command {
	var apply bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse every rename recorded in the log",
		Long: "Replays the rename log newest-first, deleting legacy artifacts and moving\n" +
			"each file back to its original path. The log itself is never modified, so\n" +
			"undoing an already-undone archive is a safe no-op.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}

			records, skippedLines, err := oplog.ReadLog(cfg.Paths.RenameLog)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No rename log found; nothing to undo.")
					return nil
				}
				return services.Wrap(services.ErrConfiguration, "undoing", "read log", fmt.Sprintf("Cannot read rename log at %s", cfg.Paths.RenameLog), err)
			}

			doApply := apply && !dryRun
			runID := uuid.NewString()
			ctx := services.WithRunID(cmd.Context(), runID)
			started := time.Now()

			report, err := rename.Undo(ctx, records, rename.UndoOptions{Apply: doApply}, logger)
			recordRun(ctx, cfg, logger, catalog.Run{
				RunID:      runID,
				Command:    "undo",
				Mode:       runMode(doApply),
				LegacyMode: "none",
				Planned:    report.Total,
				Applied:    report.Restored,
				Skipped:    report.AlreadyUndone,
				Warnings:   report.Failures,
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			if err != nil {
				return err
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, undoOutput{
					RunID:          runID,
					Applied:        doApply,
					Total:          report.Total,
					Restored:       report.Restored,
					AlreadyUndone:  report.AlreadyUndone,
					Failures:       report.Failures,
					SkippedLines:   skippedLines,
					Actions:        actionRows(report),
				})
			}

			out := cmd.OutOrStdout()
			if skippedLines > 0 {
				fmt.Fprintf(out, "WARN: skipped %d blank or malformed log line(s)\n", skippedLines)
			}
			rows := make([][]string, 0, len(report.Actions))
			for _, action := range report.Actions {
				status := "restored"
				switch {
				case action.Note != "" && !action.Restored:
					status = action.Note
				case !doApply:
					status = "would restore"
				}
				rows = append(rows, []string{
					action.Record.ShortID,
					filepath.Base(action.Record.Dst),
					filepath.Base(action.Record.Src),
					status,
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Piece", "From", "To", "Status"}, rows))
			}
			if doApply {
				fmt.Fprintf(out, "Restored %d of %d records (%d already undone, %d failures).\n", report.Restored, report.Total, report.AlreadyUndone, report.Failures)
			} else {
				fmt.Fprintf(out, "Would restore %d of %d records. Use --apply to execute.\n", report.Restored, report.Total)
			}
			if report.Failures > 0 {
				return services.Wrap(services.ErrTransient, "undoing", "restore files", fmt.Sprintf("%d record(s) could not be restored", report.Failures), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Perform the restores")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without touching files")
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")
	return cmd
}

type undoActionRow struct {
	ShortID       string `json:"short_id"`
	Src           string `json:"src"`
	Dst           string `json:"dst"`
	Restored      bool   `json:"restored"`
	RemovedLegacy bool   `json:"removed_legacy"`
	Note          string `json:"note,omitempty"`
}

type undoOutput struct {
	RunID          string          `json:"run_id"`
	Applied        bool            `json:"applied"`
	Total          int             `json:"total"`
	Restored       int             `json:"restored"`
	AlreadyUndone  int             `json:"already_undone"`
	Failures       int             `json:"failures"`
	SkippedLines   int             `json:"skipped_lines,omitempty"`
	Actions        []undoActionRow `json:"actions"`
}

func actionRows(report *rename.UndoReport) []undoActionRow {
	rows := make([]undoActionRow, 0, len(report.Actions))
	for _, action := range report.Actions {
		rows = append(rows, undoActionRow{
			ShortID:       action.Record.ShortID,
			Src:           action.Record.Src,
			Dst:           action.Record.Dst,
			Restored:      action.Restored,
			RemovedLegacy: action.RemovedLegacy,
			Note:          action.Note,
		})
	}
	return rows
}

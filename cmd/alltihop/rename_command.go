package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alltihop/internal/catalog"
	"alltihop/internal/oplog"
	"alltihop/internal/rename"
	"alltihop/internal/services"
)

func newRenameCommand(cc *commandContext) *cobra.Command {
	var apply bool
	var dryRun bool
	var keepLink bool
	var keepCopy bool

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename piece assets to portable, collision-free names",
		Long: "Computes Username - Title filenames for every piece's audio, cover, and\n" +
			"attachment, then applies the moves. Without --apply this is a dry run.\n" +
			"Every performed move is appended to the rename log for undo.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cc.ensureLogger()
			if err != nil {
				return err
			}
			export, username, err := cc.loadExport()
			if err != nil {
				return err
			}

			mode, err := rename.ParseLegacyMode(cfg.Rename.LegacyMode)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "renaming", "resolve legacy mode", err.Error(), nil)
			}
			switch {
			case keepLink:
				mode = rename.LegacyLink
			case keepCopy:
				mode = rename.LegacyCopy
			}

			doApply := apply && !dryRun
			runID := uuid.NewString()
			ctx := services.WithRunID(cmd.Context(), runID)
			started := time.Now()

			planner := rename.NewPlanner(rename.Options{
				PiecesDir:      cfg.Paths.PiecesDir,
				Username:       username,
				PreserveBlanks: cfg.Rename.PreserveBlanks,
				LegacyMode:     mode,
			}, logger)
			plan, err := planner.Plan(ctx, export.Pieces)
			if err != nil {
				return err
			}

			opts := rename.ExecuteOptions{Apply: doApply, RunID: runID}
			if doApply {
				appender, err := oplog.OpenAppender(cfg.Paths.RenameLog)
				if err != nil {
					return services.Wrap(services.ErrConfiguration, "renaming", "open log", fmt.Sprintf("Cannot open rename log at %s", cfg.Paths.RenameLog), err)
				}
				defer appender.Close()
				opts.Log = appender
			}

			summary, execErr := rename.NewExecutor(logger).Execute(ctx, plan, opts)
			recordRun(ctx, cfg, logger, catalog.Run{
				RunID:      runID,
				Command:    "rename",
				Mode:       runMode(doApply),
				LegacyMode: string(mode),
				Planned:    summary.Planned,
				Applied:    summary.Applied,
				Skipped:    summary.Skipped,
				Warnings:   len(summary.Notes),
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			if execErr != nil {
				return execErr
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, renameOutput{
					RunID:          summary.RunID,
					Applied:        doApply,
					LegacyMode:     string(mode),
					Planned:        summary.Planned,
					Performed:      summary.Applied,
					Skipped:        summary.Skipped,
					LegacyFailures: summary.LegacyFailures,
					Notes:          summary.Notes,
					Operations:     planRows(plan),
					Records:        summary.Records,
				})
			}

			out := cmd.OutOrStdout()
			if len(plan.Operations) > 0 {
				rows := make([][]string, 0, len(plan.Operations))
				for _, op := range plan.Operations {
					rows = append(rows, []string{
						string(op.Kind),
						op.ShortID,
						filepath.Base(op.Src),
						filepath.Base(op.Dst),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Kind", "Piece", "From", "To"}, rows))
			}
			printNotes(out, summary.Notes)
			if doApply {
				fmt.Fprintf(out, "Applied %d of %d operations (skipped %d). Run id %s.\n", summary.Applied, summary.Planned, summary.Skipped, summary.RunID)
			} else {
				fmt.Fprintf(out, "Planned %d operations. Use --apply to execute.\n", summary.Planned)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Perform the renames")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without touching files")
	cmd.Flags().BoolVar(&keepLink, "keep-link", false, "Leave a hardlink (or symlink) at the original name")
	cmd.Flags().BoolVar(&keepCopy, "keep-copy", false, "Leave an independent copy at the original name")
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")
	cmd.MarkFlagsMutuallyExclusive("keep-link", "keep-copy")
	return cmd
}

type operationRow struct {
	Kind    string `json:"kind"`
	ShortID string `json:"short_id"`
	Src     string `json:"src"`
	Dst     string `json:"dst"`
}

type renameOutput struct {
	RunID          string         `json:"run_id"`
	Applied        bool           `json:"applied"`
	LegacyMode     string         `json:"legacy_mode"`
	Planned        int            `json:"planned"`
	Performed      int            `json:"performed"`
	Skipped        int            `json:"skipped"`
	LegacyFailures int            `json:"legacy_failures"`
	Notes          []string       `json:"notes,omitempty"`
	Operations     []operationRow `json:"operations"`
	Records        []oplog.Record `json:"records,omitempty"`
}

func planRows(plan *rename.Plan) []operationRow {
	rows := make([]operationRow, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		rows = append(rows, operationRow{
			Kind:    string(op.Kind),
			ShortID: op.ShortID,
			Src:     op.Src,
			Dst:     op.Dst,
		})
	}
	return rows
}

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alltihop/internal/catalog"
	"alltihop/internal/services"
	"alltihop/internal/tagging"
)

func newTagCommand(cc *commandContext) *cobra.Command {
	var apply bool
	var dryRun bool
	var noOverwriteMeta bool

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Embed tags, artwork, and archival JSON into renamed audio files",
		Long: "Writes title, artist, comment, date, BPM, cover art, and the complete piece\n" +
			"JSON into each piece's MP4/M4A audio via AtomicParsley, and drops a\n" +
			"<base>.meta.json sidecar next to it.",
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

			tagger, err := tagging.New(cfg.Tagging.Binary, cfg.Tagging.TimeoutSecs)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "tagging", "resolve binary", err.Error(), nil)
			}

			doApply := apply && !dryRun
			runID := uuid.NewString()
			ctx := services.WithRunID(cmd.Context(), runID)
			started := time.Now()

			overwriteMeta := cfg.Tagging.OverwriteMeta
			if noOverwriteMeta {
				overwriteMeta = false
			}

			service := tagging.NewService(tagger, logger)
			report, err := service.TagPieces(ctx, export.Pieces, tagging.ServiceOptions{
				PiecesDir:      cfg.Paths.PiecesDir,
				Username:       username,
				PreserveBlanks: cfg.Rename.PreserveBlanks,
				OverwriteMeta:  overwriteMeta,
				Apply:          doApply,
			})
			if report != nil {
				recordRun(ctx, cfg, logger, catalog.Run{
					RunID:      runID,
					Command:    "tag",
					Mode:       runMode(doApply),
					LegacyMode: "none",
					Planned:    report.Planned,
					Applied:    report.Tagged,
					Skipped:    report.Planned - report.Tagged,
					Warnings:   len(report.Notes),
					StartedAt:  started,
					FinishedAt: time.Now(),
				})
			}
			if err != nil {
				return err
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, tagOutput{
					RunID:           runID,
					Applied:         doApply,
					Planned:         report.Planned,
					Tagged:          report.Tagged,
					SidecarsWritten: report.SidecarsWritten,
					FieldFailures:   report.FieldFailures,
					Notes:           report.Notes,
				})
			}

			out := cmd.OutOrStdout()
			printNotes(out, report.Notes)
			if doApply {
				fmt.Fprintf(out, "Tagged %d piece(s), wrote %d sidecar(s), %d field failure(s).\n", report.Tagged, report.SidecarsWritten, report.FieldFailures)
			} else {
				fmt.Fprintf(out, "Planned tagging for %d piece(s). Use --apply to execute.\n", report.Planned)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Perform the tagging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without touching files")
	cmd.Flags().BoolVar(&noOverwriteMeta, "no-overwrite-meta", false, "Keep existing .meta.json sidecars")
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")
	return cmd
}

type tagOutput struct {
	RunID           string   `json:"run_id"`
	Applied         bool     `json:"applied"`
	Planned         int      `json:"planned"`
	Tagged          int      `json:"tagged"`
	SidecarsWritten int      `json:"sidecars_written"`
	FieldFailures   int      `json:"field_failures"`
	Notes           []string `json:"notes,omitempty"`
}

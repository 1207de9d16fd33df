package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"alltihop/internal/catalog"
)

func newRunsCommand(cc *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Paths.Catalog)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					formatTimestamp(run.StartedAt),
					run.Command,
					run.Mode,
					run.LegacyMode,
					strconv.Itoa(run.Planned),
					strconv.Itoa(run.Applied),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Warnings),
					run.RunID,
				})
			}
			headers := []string{"Started", "Command", "Mode", "Legacy", "Planned", "Applied", "Skipped", "Warnings", "Run ID"}
			fmt.Fprintln(out, renderTable(headers, rows, 5, 6, 7, 8))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alltihop/internal/catalog"
	"alltihop/internal/deps"
	"alltihop/internal/metadata"
	"alltihop/internal/oplog"
)

func newDoctorCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the archive layout, rename log, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}

			type check struct {
				Name   string `json:"name"`
				OK     bool   `json:"ok"`
				Detail string `json:"detail"`
			}
			var checks []check
			add := func(name string, ok bool, detail string) {
				checks = append(checks, check{Name: name, OK: ok, Detail: detail})
			}

			if export, err := metadata.Load(cfg.Paths.Metadata); err != nil {
				add("metadata dump", false, err.Error())
			} else {
				add("metadata dump", true, fmt.Sprintf("%d piece(s), user %q", len(export.Pieces), export.DefaultUsername()))
			}

			if info, err := os.Stat(cfg.Paths.PiecesDir); err != nil || !info.IsDir() {
				add("pieces directory", false, fmt.Sprintf("%s is not a directory", cfg.Paths.PiecesDir))
			} else {
				add("pieces directory", true, cfg.Paths.PiecesDir)
			}

			if records, skippedLines, err := oplog.ReadLog(cfg.Paths.RenameLog); os.IsNotExist(err) {
				add("rename log", true, "not created yet")
			} else if err != nil {
				add("rename log", false, err.Error())
			} else if skippedLines > 0 {
				add("rename log", false, fmt.Sprintf("%d record(s), %d blank or malformed line(s)", len(records), skippedLines))
			} else {
				add("rename log", true, fmt.Sprintf("%d record(s)", len(records)))
			}

			if store, err := catalog.Open(cfg.Paths.Catalog); err != nil {
				add("run catalog", false, err.Error())
			} else {
				add("run catalog", true, store.Path())
				store.Close()
			}

			for _, status := range deps.Check(deps.ForConfig(cfg)) {
				detail := status.Detail
				if status.Available {
					detail = status.Command
				} else if status.Optional {
					detail += " (optional)"
				}
				add(status.Name, status.Available, detail)
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, checks)
			}

			rows := make([][]string, 0, len(checks))
			healthy := true
			for _, item := range checks {
				mark := "ok"
				if !item.OK {
					mark = "FAIL"
					healthy = false
				}
				rows = append(rows, []string{item.Name, mark, item.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows))
			if !healthy {
				fmt.Fprintln(out, "Some checks failed; rename and undo work without optional tools, tagging needs AtomicParsley.")
			}
			return nil
		},
	}
}

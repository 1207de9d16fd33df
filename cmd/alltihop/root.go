package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var preserveBlanksFlag bool

	ctx := newCommandContext(&configFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "alltihop",
		Short:         "Archive tool: rename, tag, and restore exported music pieces",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("preserve-blanks") {
				ctx.overrides.preserveBlanks = &preserveBlanksFlag
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.overrides.root, "root", "", "Archive root directory")
	flags.StringVar(&ctx.overrides.meta, "meta", "", "Metadata dump path (default <root>/dump/alltihop.json)")
	flags.StringVar(&ctx.overrides.piecesDir, "pieces-dir", "", "Piece folders directory (default <root>/dump/assets/pieces)")
	flags.StringVar(&ctx.overrides.renameLog, "log", "", "Rename log path (default <root>/rename_log.jsonl)")
	flags.StringVar(&ctx.overrides.username, "username", "", "Name used in generated filenames (default from the export)")
	flags.BoolVar(&preserveBlanksFlag, "preserve-blanks", false, "Keep spaces in filenames instead of underscores")
	flags.BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON output")

	rootCmd.AddCommand(newRenameCommand(ctx))
	rootCmd.AddCommand(newUndoCommand(ctx))
	rootCmd.AddCommand(newTagCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

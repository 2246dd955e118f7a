package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scorecard-mcp/internal/ocr"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scorecard-mcp %s\n", Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "  Tesseract:  %s\n", ocr.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

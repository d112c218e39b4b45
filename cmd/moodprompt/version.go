package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/m3rciful/moodprompt/core/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "moodprompt %s\n", buildinfo.Version)
		fmt.Fprintf(out, "  Go:     %s\n", runtime.Version())
		fmt.Fprintf(out, "  Commit: %s\n", buildinfo.Commit)
		fmt.Fprintf(out, "  Date:   %s\n", buildinfo.Date)
	},
}

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reconciler %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
		fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

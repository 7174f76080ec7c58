package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "maciespectre version %s (commit %s, built %s)\n", GetVersion(), orUnknown(commit), orUnknown(date))
	},
}

// GetVersion returns the current version.
func GetVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

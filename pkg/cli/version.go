package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("%s %s (commit: %s, built: %s)\n", name, version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

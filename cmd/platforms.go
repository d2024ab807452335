package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/job-finder/internal/collectors"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the supported job platforms",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range collectors.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

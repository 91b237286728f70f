package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IbtissamELANSARI/school-management-app/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		info := version.Get()
		if short {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}

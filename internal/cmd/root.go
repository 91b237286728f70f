package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schooladmin",
	Short: "Administration console for the school-management backend",
	Long: `schooladmin is the terminal front end of the school-management system.
It signs in against the backend's cookie-session API and manages reference
data such as secteurs: listing, searching, sorting, CSV export, and the
usual create/update/delete operations, gated by your permissions.

Run 'schooladmin browse' for the interactive console, or use the auth and
secteur subcommands directly for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL (overrides config and SCHOOLADMIN_BASE_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

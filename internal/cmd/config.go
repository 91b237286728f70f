package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IbtissamELANSARI/school-management-app/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
	Long: `Inspect the configuration the console runs with.

Values come from defaults, the config file, a .env file, and
SCHOOLADMIN_* environment variables, in that order.

Examples:
  schooladmin config view
  schooladmin config path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "base_url:    %s\n", a.cfg.BaseURL)
		fmt.Fprintf(out, "path_prefix: %s\n", a.cfg.PathPrefix)
		fmt.Fprintf(out, "timeout:     %s\n", a.cfg.Timeout)
		fmt.Fprintf(out, "locale:      %s\n", a.cfg.Locale)
		fmt.Fprintf(out, "log_level:   %s\n", a.cfg.LogLevel)
		fmt.Fprintf(out, "log_format:  %s\n", a.cfg.LogFormat)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

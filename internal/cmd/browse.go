package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/IbtissamELANSARI/school-management-app/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive console",
	Long: `Open the full-screen interactive console.

The console starts on the login screen, or directly on the secteurs list
when a stored session is found. Keys are listed on the ? help screen.

Examples:
  schooladmin browse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		app := tui.New(cmd.Context(), a.session, newSecteurController(a))
		_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

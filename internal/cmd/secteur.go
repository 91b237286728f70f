package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	apperrors "github.com/IbtissamELANSARI/school-management-app/internal/errors"
	"github.com/IbtissamELANSARI/school-management-app/internal/listview"
)

var secteurCmd = &cobra.Command{
	Use:   "secteur",
	Short: "Manage secteurs",
	Long: `Manage the secteurs reference data of the school-management backend.

Listing supports client-side search, exact-value filters, locale-aware
sorting and CSV export. Mutations are gated by the permissions of the
signed-in user.

Examples:
  schooladmin secteur list --search tique --sort nom
  schooladmin secteur create --nom "Informatique" --description "Filière technique"
  schooladmin secteur export --output secteurs.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var secteurListCmd = &cobra.Command{
	Use:   "list",
	Short: "List secteurs",
	Long: `List secteurs, optionally narrowed by search and filters.

Search matches a case-insensitive substring of the nom. Filters are
exact matches given as key=value and combine conjunctively. Sorting
compares with French collation by default.

Examples:
  schooladmin secteur list
  schooladmin secteur list --search tique
  schooladmin secteur list --filter description=Tertiaire --sort nom --desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireAbility(a, "view"); err != nil {
			return err
		}

		model, err := loadSecteurs(cmd, a)
		if err != nil {
			return err
		}

		if csv, _ := cmd.Flags().GetBool("csv"); csv {
			return model.ExportCSV(cmd.OutOrStdout())
		}

		printSecteurs(cmd, model.Items())
		fmt.Fprintf(cmd.OutOrStdout(), "%d/%d secteurs\n", model.Len(), model.Total())
		return nil
	},
}

var secteurGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one secteur",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := requireAbility(a, "view"); err != nil {
			return err
		}

		id, err := parseSecteurID(args[0])
		if err != nil {
			return err
		}

		secteur, err := a.client.Secteurs().Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %d\n", secteur.ID)
		fmt.Fprintf(out, "Nom:         %s\n", secteur.Nom)
		fmt.Fprintf(out, "Description: %s\n", secteur.Description)
		return nil
	},
}

var secteurCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a secteur",
	Long: `Create a secteur. Flags left empty are prompted for interactively.

Examples:
  schooladmin secteur create --nom "Informatique" --description "Filière technique"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireAbility(a, "create"); err != nil {
			return err
		}

		in, err := secteurInput(cmd)
		if err != nil {
			return err
		}

		secteur, err := a.client.Secteurs().Create(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Secteur créé: %d %s\n", secteur.ID, secteur.Nom)
		return nil
	},
}

var secteurUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a secteur",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireAbility(a, "edit"); err != nil {
			return err
		}

		id, err := parseSecteurID(args[0])
		if err != nil {
			return err
		}

		in, err := secteurInput(cmd)
		if err != nil {
			return err
		}

		secteur, err := a.client.Secteurs().Update(cmd.Context(), id, in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Secteur mis à jour: %d %s\n", secteur.ID, secteur.Nom)
		return nil
	},
}

var secteurDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a secteur",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireAbility(a, "delete"); err != nil {
			return err
		}

		id, err := parseSecteurID(args[0])
		if err != nil {
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed := false
			prompt := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Supprimer le secteur %d ?", id)).
					Affirmative("Supprimer").
					Negative("Annuler").
					Value(&confirmed),
			))
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Annulé.")
				return nil
			}
		}

		if err := a.client.Secteurs().Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Secteur supprimé: %d\n", id)
		return nil
	},
}

var secteurExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export secteurs as CSV",
	Long: `Export the secteurs list as CSV, honoring the same search, filter
and sort flags as list.

Examples:
  schooladmin secteur export --output secteurs.csv
  schooladmin secteur export --search tique`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireAbility(a, "view"); err != nil {
			return err
		}

		model, err := loadSecteurs(cmd, a)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" || output == "-" {
			return model.ExportCSV(cmd.OutOrStdout())
		}

		f, err := os.Create(output)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeStoreWrite, "create export file", err)
		}
		defer f.Close()

		if err := model.ExportCSV(f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exporté: %s\n", output)
		return nil
	},
}

// loadSecteurs fetches the list and narrows its model per the shared
// listing flags (search, filter, sort, desc).
func loadSecteurs(cmd *cobra.Command, a *app) (*listview.Model[api.Secteur], error) {
	ctrl := newSecteurController(a)
	items, err := ctrl.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	ctrl.Apply(items)

	model := ctrl.Model()
	if search, _ := cmd.Flags().GetString("search"); search != "" {
		model.SetSearch(search)
	}
	filters, _ := cmd.Flags().GetStringSlice("filter")
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrCodeResourceValidation, "invalid filter %q, expected key=value", f)
		}
		model.SetFilter(key, value)
	}
	if sortKey, _ := cmd.Flags().GetString("sort"); sortKey != "" {
		model.ToggleSort(sortKey)
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			model.ToggleSort(sortKey)
		}
	}
	return model, nil
}

// newSecteurController wires the generic list controller for secteurs,
// the same assembly the interactive console uses.
func newSecteurController(a *app) *listview.Controller[api.Secteur, api.SecteurInput] {
	model := listview.New(a.cfg.Locale, "nom",
		listview.Field[api.Secteur]{Key: "nom", Value: func(s api.Secteur) string { return s.Nom }},
		listview.Field[api.Secteur]{Key: "description", Value: func(s api.Secteur) string { return s.Description }},
	)
	return listview.NewController(a.client.Secteurs(), model)
}

func printSecteurs(cmd *cobra.Command, items []api.Secteur) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOM\tDESCRIPTION")
	for _, s := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Nom, s.Description)
	}
	w.Flush()
}

func parseSecteurID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, apperrors.Newf(apperrors.ErrCodeResourceValidation, "invalid secteur id %q", arg)
	}
	return id, nil
}

// requireAbility refuses an operation up front when the signed-in user
// lacks the permission, instead of letting the backend reject it.
func requireAbility(a *app, action string) error {
	state := a.session.State()
	if !state.Authenticated {
		return apperrors.New(apperrors.ErrCodeAuthNotAuthenticated, "not authenticated")
	}
	if state.Ability().Cannot(action + "_secteurs") {
		return apperrors.Newf(apperrors.ErrCodeAuthUnauthorized, "missing permission %s_secteurs", action)
	}
	return nil
}

func secteurInput(cmd *cobra.Command) (api.SecteurInput, error) {
	nom, _ := cmd.Flags().GetString("nom")
	description, _ := cmd.Flags().GetString("description")

	if nom == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Nom").
				Validate(validateCredential("nom")).
				Value(&nom),
			huh.NewInput().
				Title("Description").
				Value(&description),
		))
		if err := form.Run(); err != nil {
			return api.SecteurInput{}, err
		}
	}

	return api.SecteurInput{Nom: nom, Description: description}, nil
}

func init() {
	secteurListCmd.Flags().String("search", "", "case-insensitive substring search on nom")
	secteurListCmd.Flags().StringSlice("filter", nil, "exact-match filter, key=value (repeatable)")
	secteurListCmd.Flags().String("sort", "", "sort by field (nom, description)")
	secteurListCmd.Flags().Bool("desc", false, "sort descending")
	secteurListCmd.Flags().Bool("csv", false, "print the list as CSV")

	secteurCreateCmd.Flags().String("nom", "", "secteur name")
	secteurCreateCmd.Flags().String("description", "", "secteur description")

	secteurUpdateCmd.Flags().String("nom", "", "secteur name")
	secteurUpdateCmd.Flags().String("description", "", "secteur description")

	secteurDeleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	secteurExportCmd.Flags().String("search", "", "case-insensitive substring search on nom")
	secteurExportCmd.Flags().StringSlice("filter", nil, "exact-match filter, key=value (repeatable)")
	secteurExportCmd.Flags().String("sort", "", "sort by field (nom, description)")
	secteurExportCmd.Flags().Bool("desc", false, "sort descending")
	secteurExportCmd.Flags().String("output", "", "write CSV to this file instead of stdout")

	secteurCmd.AddCommand(secteurListCmd)
	secteurCmd.AddCommand(secteurGetCmd)
	secteurCmd.AddCommand(secteurCreateCmd)
	secteurCmd.AddCommand(secteurUpdateCmd)
	secteurCmd.AddCommand(secteurDeleteCmd)
	secteurCmd.AddCommand(secteurExportCmd)

	rootCmd.AddCommand(secteurCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	apperrors "github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend session",
	Long: `Manage the cookie-based session against the school-management backend.

The auth command provides subcommands for registering, logging in, logging
out, and checking who the current session belongs to. Session cookies and
the signed-in user are stored under your user configuration directory, so a
login carries over to later invocations.

Subcommands:
  register  Create a new account and sign in
  login     Sign in with email and password
  logout    Sign out and clear the stored session
  status    Verify the stored session against the backend
  whoami    Show the signed-in user and their permissions

Examples:
  schooladmin auth login --email admin@school.test
  schooladmin auth status
  schooladmin auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in to the school-management backend with your email and password.

Flags left empty are prompted for interactively. With --remember the
session is kept across machine restarts; without it the session only
lives as long as your terminal session.

Examples:
  schooladmin auth login --email admin@school.test --remember
  schooladmin auth login`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		remember, _ := cmd.Flags().GetBool("remember")

		if email == "" || password == "" {
			if err := promptLogin(&email, &password); err != nil {
				return err
			}
		}

		if err := a.session.Login(cmd.Context(), email, password, remember); err != nil {
			return err
		}

		state := a.session.State()
		fmt.Printf("Connecté: %s <%s>\n", state.User.Name, state.User.Email)
		return nil
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account on the backend and sign in as it.

Flags left empty are prompted for interactively. A freshly registered
account is signed in with a remembered session.

Examples:
  schooladmin auth register --name "Ibtissam" --email admin@school.test`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		confirmation := password

		if name == "" || email == "" || password == "" {
			if err := promptRegister(&name, &email, &password, &confirmation); err != nil {
				return err
			}
		}

		if err := a.session.Signup(cmd.Context(), name, email, password, confirmation); err != nil {
			return err
		}

		state := a.session.State()
		fmt.Printf("Compte créé: %s <%s>\n", state.User.Name, state.User.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Long: `Sign out of the backend and clear the stored session.

The backend is told to invalidate the session; the local state is cleared
even when that call fails, so logout always leaves you signed out.

Examples:
  schooladmin auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		state := a.session.State()
		if !state.Authenticated {
			fmt.Println("Aucune session active.")
			return nil
		}
		if state.User != nil {
			fmt.Printf("Déconnexion: %s\n", state.User.Email)
		}

		a.session.Logout(cmd.Context())
		fmt.Println("Déconnecté.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify the stored session against the backend",
	Long: `Verify that the stored session is still accepted by the backend.

The stored user is refreshed from the backend so the roles and permissions
shown by whoami stay current. A rejected session is cleared locally.

Examples:
  schooladmin auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if !a.session.State().Authenticated {
			fmt.Println("Non connecté.")
			return apperrors.New(apperrors.ErrCodeAuthNotAuthenticated, "not authenticated")
		}

		if err := a.session.CheckAuth(cmd.Context()); err != nil {
			fmt.Println("Session expirée. Reconnectez-vous avec 'schooladmin auth login'.")
			return err
		}

		state := a.session.State()
		fmt.Printf("Connecté: %s <%s>\n", state.User.Name, state.User.Email)
		if state.RememberMe {
			fmt.Println("Session mémorisée.")
		}
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and their permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		state := a.session.State()
		if !state.Authenticated || state.User == nil {
			fmt.Println("Non connecté.")
			return apperrors.New(apperrors.ErrCodeAuthNotAuthenticated, "not authenticated")
		}

		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if err := a.session.RefreshPermissions(cmd.Context()); err != nil {
				return err
			}
			state = a.session.State()
		}

		fmt.Printf("Nom:    %s\n", state.User.Name)
		fmt.Printf("Email:  %s\n", state.User.Email)
		if len(state.User.Roles) > 0 {
			fmt.Printf("Rôles:  %s\n", strings.Join(state.User.Roles, ", "))
		}
		if actions := state.Ability().Actions(); len(actions) > 0 {
			fmt.Printf("Droits: %s\n", strings.Join(actions, ", "))
		}
		return nil
	},
}

func promptLogin(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Validate(validateCredential("email")).
				Value(email),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Validate(validateCredential("mot de passe")).
				Value(password),
		),
	).Run()
}

func promptRegister(name, email, password, confirmation *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nom").
				Validate(validateCredential("nom")).
				Value(name),
			huh.NewInput().
				Title("Email").
				Validate(validateCredential("email")).
				Value(email),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Validate(validateCredential("mot de passe")).
				Value(password),
			huh.NewInput().
				Title("Confirmation").
				EchoMode(huh.EchoModePassword).
				Validate(validateCredential("confirmation")).
				Value(confirmation),
		),
	).Run()
}

func validateCredential(label string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("le champ %s est requis", label)
		}
		return nil
	}
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password (prompted when omitted)")
	authLoginCmd.Flags().Bool("remember", false, "keep the session across restarts")

	authRegisterCmd.Flags().String("name", "", "display name")
	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password (prompted when omitted)")

	authWhoamiCmd.Flags().Bool("refresh", false, "refetch the permission list first")

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authWhoamiCmd)

	rootCmd.AddCommand(authCmd)
}

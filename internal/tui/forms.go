package tui

import (
	"strings"

	"github.com/charmbracelet/huh"
)

// loginValues backs the login form fields.
type loginValues struct {
	Email      string
	Password   string
	RememberMe bool
}

// validateRequired rejects blank input before it reaches the network.
func validateRequired(label string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return &fieldError{label + " is required"}
		}
		return nil
	}
}

// validateEmail is the form-level check; the backend stays authoritative.
func validateEmail(v string) error {
	if !strings.Contains(v, "@") {
		return &fieldError{"enter a valid email address"}
	}
	return nil
}

type fieldError struct{ msg string }

func (e *fieldError) Error() string { return e.msg }

func newLoginForm(v *loginValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("vous@exemple.com").
				Validate(validateEmail).
				Value(&v.Email),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&v.Password),
			huh.NewConfirm().
				Title("Se souvenir de moi ?").
				Value(&v.RememberMe),
		),
	)
}

// signupValues backs the signup form fields.
type signupValues struct {
	Name         string
	Email        string
	Password     string
	Confirmation string
}

func newSignupForm(v *signupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nom complet").
				Validate(validateRequired("name")).
				Value(&v.Name),
			huh.NewInput().
				Title("Email").
				Validate(validateEmail).
				Value(&v.Email),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&v.Password),
			huh.NewInput().
				Title("Confirmation").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("confirmation")).
				Value(&v.Confirmation),
		),
	)
}

// secteurValues backs the create/edit form fields.
type secteurValues struct {
	Nom         string
	Description string
}

func newSecteurForm(v *secteurValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nom").
				Validate(validateRequired("nom")).
				Value(&v.Nom),
			huh.NewInput().
				Title("Description").
				Value(&v.Description),
		),
	)
}

func newConfirmForm(title string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Supprimer").
				Negative("Annuler").
				Value(confirmed),
		),
	)
}

package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("École — Console d'administration"))
	b.WriteString("\n")

	switch a.view {
	case ViewLogin:
		b.WriteString(a.styles.Subtitle.Render("Connexion (ctrl+s pour créer un compte)"))
		b.WriteString("\n")
		b.WriteString(a.form.View())
	case ViewSignup:
		b.WriteString(a.styles.Subtitle.Render("Créer un compte (esc pour revenir)"))
		b.WriteString("\n")
		b.WriteString(a.form.View())
	case ViewSecteurs:
		b.WriteString(a.secteursView())
	case ViewSecteurForm:
		title := "Nouveau secteur"
		if a.editing != nil {
			title = fmt.Sprintf("Modifier le secteur %q", a.editing.Nom)
		}
		b.WriteString(a.styles.Subtitle.Render(title))
		b.WriteString("\n")
		b.WriteString(a.form.View())
	case ViewConfirmDelete:
		b.WriteString(a.form.View())
	case ViewHelp:
		b.WriteString(a.helpView())
	}

	if a.busy {
		b.WriteString("\n")
		b.WriteString(a.sp.View())
		b.WriteString(a.styles.Status.Render(" chargement…"))
	}
	if a.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render(a.errMsg))
	}
	if a.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Success.Render(a.infoMsg))
	}

	return b.String()
}

func (a *App) secteursView() string {
	var b strings.Builder

	state := a.session.State()
	who := ""
	if state.User != nil {
		who = fmt.Sprintf(" — %s", state.User.Name)
	}
	b.WriteString(a.styles.Subtitle.Render(fmt.Sprintf(
		"Secteurs (%d/%d)%s", a.ctrl.Model().Len(), a.ctrl.Model().Total(), who)))
	b.WriteString("\n")

	if a.searching || a.search.Value() != "" {
		b.WriteString(a.search.View())
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Border.Render(a.table.View()))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render(
		"/ rechercher · s/S trier · n nouveau · e modifier · d supprimer · x exporter · r recharger · L déconnexion · ? aide · q quitter"))
	return b.String()
}

func (a *App) helpView() string {
	keys := [][2]string{
		{"/", "rechercher dans les noms"},
		{"s", "trier par nom (re-presser inverse l'ordre)"},
		{"S", "trier par description"},
		{"n", "créer un secteur"},
		{"e", "modifier le secteur sélectionné"},
		{"d", "supprimer le secteur sélectionné"},
		{"x", "exporter la vue courante en CSV"},
		{"r", "recharger depuis le serveur"},
		{"L", "se déconnecter"},
		{"q", "quitter"},
	}

	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Raccourcis (esc pour revenir)"))
	b.WriteString("\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s  %s\n", a.styles.Key.Render(k[0]), a.styles.Muted.Render(k[1])))
	}
	return b.String()
}

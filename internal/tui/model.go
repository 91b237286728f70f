// Package tui is the interactive shell of the console: a bubbletea program
// that routes between the login, signup, and secteur views. Route access is
// ability-gated the same way the non-interactive commands are.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/listview"
	"github.com/IbtissamELANSARI/school-management-app/internal/session"
)

// Actions the secteur routes are gated on.
const (
	actionViewSecteurs   = "view_secteurs"
	actionCreateSecteurs = "create_secteurs"
	actionEditSecteurs   = "edit_secteurs"
	actionDeleteSecteurs = "delete_secteurs"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewLogin is the sign-in form
	ViewLogin ViewType = iota
	// ViewSignup is the account-creation form
	ViewSignup
	// ViewSecteurs is the secteur listing table
	ViewSecteurs
	// ViewSecteurForm is the create/edit form
	ViewSecteurForm
	// ViewConfirmDelete is the delete confirmation prompt
	ViewConfirmDelete
	// ViewHelp is the keybinding reference
	ViewHelp
)

// App is the bubbletea model for the console shell.
type App struct {
	ctx     context.Context
	session *session.Store
	ctrl    *listview.Controller[api.Secteur, api.SecteurInput]

	view     ViewType
	prevView ViewType

	form        *huh.Form
	login       *loginValues
	signup      *signupValues
	secteur     *secteurValues
	editing     *api.Secteur
	deleteReady bool
	target      *api.Secteur

	table     table.Model
	search    textinput.Model
	searching bool

	sp   spinner.Model
	busy bool

	errMsg  string
	infoMsg string

	width    int
	height   int
	quitting bool

	styles Styles
}

// New creates the shell. An already-restored session skips the login form
// and goes straight to the secteur view (CheckAuth still validates it).
func New(ctx context.Context, sess *session.Store, ctrl *listview.Controller[api.Secteur, api.SecteurInput]) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	search := textinput.New()
	search.Placeholder = "rechercher…"
	search.Prompt = "/ "

	app := &App{
		ctx:     ctx,
		session: sess,
		ctrl:    ctrl,
		sp:      sp,
		search:  search,
		table:   newSecteurTable(nil),
		styles:  DefaultStyles(),
	}

	if state := sess.State(); state.Authenticated {
		if state.Ability().Can(actionViewSecteurs) {
			app.view = ViewSecteurs
		} else {
			app.view = ViewHelp
		}
	} else {
		app.showLogin()
	}
	return app
}

func newSecteurTable(rows []table.Row) table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Nom", Width: 28},
			{Title: "Description", Width: 42},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
}

func (a *App) showLogin() {
	a.view = ViewLogin
	a.login = &loginValues{}
	a.form = newLoginForm(a.login)
}

func (a *App) showSignup() {
	a.view = ViewSignup
	a.signup = &signupValues{}
	a.form = newSignupForm(a.signup)
}

func (a *App) showSecteurForm(editing *api.Secteur) {
	a.view = ViewSecteurForm
	a.editing = editing
	a.secteur = &secteurValues{}
	if editing != nil {
		a.secteur.Nom = editing.Nom
		a.secteur.Description = editing.Description
	}
	a.form = newSecteurForm(a.secteur)
}

func (a *App) syncTable() {
	items := a.ctrl.Model().Items()
	rows := make([]table.Row, len(items))
	for i, s := range items {
		rows[i] = table.Row{strconv.Itoa(s.ID), s.Nom, s.Description}
	}
	a.table.SetRows(rows)
}

// selected returns the secteur under the table cursor.
func (a *App) selected() *api.Secteur {
	row := a.table.SelectedRow()
	if row == nil {
		return nil
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return nil
	}
	for _, s := range a.ctrl.Model().Items() {
		if s.ID == id {
			return &s
		}
	}
	return nil
}

// Messages delivered by async commands. Commands only talk to the backend;
// the fetched list rides the message and is applied in Update, so the shared
// listing model is never touched off the program loop.
type (
	authDoneMsg    struct{ err error }
	sessionGoneMsg struct{}
	listLoadedMsg  struct {
		items []api.Secteur
		err   error
	}
	mutationDoneMsg struct {
		items []api.Secteur
		err   error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
)

func (a *App) loginCmd(v loginValues) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: a.session.Login(a.ctx, v.Email, v.Password, v.RememberMe)}
	}
}

func (a *App) signupCmd(v signupValues) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{err: a.session.Signup(a.ctx, v.Name, v.Email, v.Password, v.Confirmation)}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.Logout(a.ctx)
		return sessionGoneMsg{}
	}
}

func (a *App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := a.ctrl.Load(a.ctx)
		return listLoadedMsg{items: items, err: err}
	}
}

func (a *App) createCmd(in api.SecteurInput) tea.Cmd {
	return func() tea.Msg {
		items, err := a.ctrl.Create(a.ctx, in)
		return mutationDoneMsg{items: items, err: err}
	}
}

func (a *App) updateCmd(id int, in api.SecteurInput) tea.Cmd {
	return func() tea.Msg {
		items, err := a.ctrl.Update(a.ctx, id, in)
		return mutationDoneMsg{items: items, err: err}
	}
}

func (a *App) deleteCmd(id int) tea.Cmd {
	return func() tea.Msg {
		items, err := a.ctrl.Delete(a.ctx, id)
		return mutationDoneMsg{items: items, err: err}
	}
}

// exportCmd renders the current projection before the command goroutine
// starts, so only the file write happens off the loop.
func (a *App) exportCmd() tea.Cmd {
	var buf bytes.Buffer
	if err := a.ctrl.Model().ExportCSV(&buf); err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}
	data := buf.Bytes()
	return func() tea.Msg {
		path := "secteurs.csv"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.sp.Tick}
	if a.view == ViewSecteurs {
		a.busy = true
		cmds = append(cmds, a.loadCmd())
	}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.sp, cmd = a.sp.Update(msg)
		return a, cmd

	case authDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.errMsg = a.session.State().Err
			// The form was consumed; rebuild it for another attempt.
			if a.view == ViewSignup {
				a.showSignup()
			} else {
				a.showLogin()
			}
			return a, a.form.Init()
		}
		a.errMsg = ""
		state := a.session.State()
		if state.Ability().Cannot(actionViewSecteurs) {
			a.infoMsg = fmt.Sprintf("Connecté en tant que %s (aucun accès aux secteurs)", state.User.Name)
			a.view = ViewHelp
			return a, nil
		}
		a.view = ViewSecteurs
		a.busy = true
		return a, a.loadCmd()

	case sessionGoneMsg:
		a.busy = false
		a.errMsg = ""
		a.infoMsg = "Déconnecté."
		a.showLogin()
		return a, a.form.Init()

	case listLoadedMsg:
		a.busy = false
		if msg.err != nil {
			a.errMsg = listview.UIMessage(msg.err)
			return a, nil
		}
		a.errMsg = ""
		a.ctrl.Apply(msg.items)
		a.syncTable()
		return a, nil

	case mutationDoneMsg:
		a.busy = false
		a.view = ViewSecteurs
		if msg.err != nil {
			a.errMsg = listview.UIMessage(msg.err)
			return a, nil
		}
		a.errMsg = ""
		a.ctrl.Apply(msg.items)
		a.syncTable()
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.errMsg = listview.UIMessage(msg.err)
		} else {
			a.infoMsg = fmt.Sprintf("Export écrit dans %s", msg.path)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			return a, tea.Quit
		}
	}

	switch a.view {
	case ViewLogin, ViewSignup, ViewSecteurForm, ViewConfirmDelete:
		return a.updateForm(msg)
	case ViewSecteurs:
		return a.updateSecteurs(msg)
	case ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q":
				a.quitting = true
				return a, tea.Quit
			case "esc":
				a.view = a.prevView
			}
		}
		return a, nil
	}
	return a, nil
}

// updateForm delegates to the embedded huh form and dispatches on completion.
func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		switch a.view {
		case ViewSignup:
			a.showLogin()
			return a, a.form.Init()
		case ViewSecteurForm, ViewConfirmDelete:
			a.view = ViewSecteurs
			return a, nil
		}
	}

	if key, ok := msg.(tea.KeyMsg); ok && a.view == ViewLogin && key.String() == "ctrl+s" {
		a.showSignup()
		return a, a.form.Init()
	}

	next, cmd := a.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		switch a.view {
		case ViewLogin:
			a.busy = true
			return a, tea.Batch(cmd, a.loginCmd(*a.login))
		case ViewSignup:
			a.busy = true
			return a, tea.Batch(cmd, a.signupCmd(*a.signup))
		case ViewSecteurForm:
			a.busy = true
			in := api.SecteurInput{Nom: a.secteur.Nom, Description: a.secteur.Description}
			if a.editing != nil {
				return a, tea.Batch(cmd, a.updateCmd(a.editing.ID, in))
			}
			return a, tea.Batch(cmd, a.createCmd(in))
		case ViewConfirmDelete:
			if a.deleteReady && a.target != nil {
				a.busy = true
				return a, tea.Batch(cmd, a.deleteCmd(a.target.ID))
			}
			a.view = ViewSecteurs
			return a, cmd
		}
	}
	return a, cmd
}

func (a *App) updateSecteurs(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}

	if a.searching {
		switch key.String() {
		case "enter", "esc":
			a.searching = false
			a.search.Blur()
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			a.ctrl.Model().SetSearch(a.search.Value())
			a.syncTable()
			return a, cmd
		}
		return a, nil
	}

	ab := a.session.State().Ability()

	switch key.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "?":
		a.prevView = a.view
		a.view = ViewHelp
		return a, nil
	case "/":
		a.searching = true
		a.search.Focus()
		return a, textinput.Blink
	case "r":
		a.busy = true
		return a, a.loadCmd()
	case "s":
		a.ctrl.Model().ToggleSort("nom")
		a.syncTable()
		return a, nil
	case "S":
		a.ctrl.Model().ToggleSort("description")
		a.syncTable()
		return a, nil
	case "x":
		return a, a.exportCmd()
	case "n":
		if ab.Cannot(actionCreateSecteurs) {
			a.errMsg = "Erreur: permission create_secteurs manquante"
			return a, nil
		}
		a.showSecteurForm(nil)
		return a, a.form.Init()
	case "e":
		if ab.Cannot(actionEditSecteurs) {
			a.errMsg = "Erreur: permission edit_secteurs manquante"
			return a, nil
		}
		if s := a.selected(); s != nil {
			a.showSecteurForm(s)
			return a, a.form.Init()
		}
		return a, nil
	case "d":
		if ab.Cannot(actionDeleteSecteurs) {
			a.errMsg = "Erreur: permission delete_secteurs manquante"
			return a, nil
		}
		if s := a.selected(); s != nil {
			a.target = s
			a.deleteReady = false
			a.view = ViewConfirmDelete
			a.form = newConfirmForm(
				fmt.Sprintf("Supprimer le secteur %q ?", s.Nom), &a.deleteReady)
			return a, a.form.Init()
		}
		return a, nil
	case "L":
		a.busy = true
		return a, a.logoutCmd()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/auth"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const statusDuration = 4 * time.Second

type sessionState int

const (
	loginView sessionState = iota
	projectListView
	projectFormView
	projectDetailView
)

// Options wires the TUI to its services
type Options struct {
	Session        *auth.Session
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
	ShowHelp       bool
	// CopyText defaults to the system clipboard
	CopyText func(string) error
}

func (o *Options) defaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.CopyText == nil {
		o.CopyText = clipboard.WriteAll
	}
}

// client returns an authenticated API client
func (o *Options) client(ctx context.Context) (*api.Client, error) {
	return o.Session.Client(ctx)
}

type App struct {
	opts Options

	state    sessionState
	user     *models.User
	login    *LoginModel
	list     *ProjectListModel
	creator  *ProjectFormModel
	detail   *ProjectDetailModel
	width    int
	height   int
	status   string
	statusID int
}

// NewApp starts on the project list when a session is stored, otherwise on
// the sign-in screen
func NewApp(opts Options) *App {
	opts.defaults()
	a := &App{opts: opts}
	if user, err := opts.Session.User(); err == nil && user != nil {
		a.user = user
		a.state = projectListView
		a.list = NewProjectListModel(&a.opts, user)
	} else {
		a.state = loginView
		a.login = NewLoginModel(&a.opts)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	switch a.state {
	case projectListView:
		return a.list.Init()
	default:
		return a.login.Init()
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case StatusMsg:
		a.status = string(msg)
		a.statusID++
		id := a.statusID
		return a, tea.Tick(statusDuration, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })

	case clearStatusMsg:
		if msg.id == a.statusID {
			a.status = ""
		}
		return a, nil

	case signedInMsg:
		a.user = msg.user
		return a.switchTo(SwitchViewMsg{view: projectListView})

	case SwitchViewMsg:
		return a.switchTo(msg)
	}

	return a, a.route(msg)
}

// route forwards a message to the active view. Results of background
// commands started by other views are routed the same way and ignored there.
func (a *App) route(msg tea.Msg) tea.Cmd {
	switch a.state {
	case loginView:
		return a.login.Update(msg)
	case projectListView:
		return a.list.Update(msg)
	case projectFormView:
		return a.creator.Update(msg)
	case projectDetailView:
		return a.detail.Update(msg)
	}
	return nil
}

func (a *App) switchTo(msg SwitchViewMsg) (tea.Model, tea.Cmd) {
	a.opts.Logger.Debug("switching view", "view", msg.view, "project", msg.projectID)
	a.state = msg.view
	switch msg.view {
	case loginView:
		a.user = nil
		a.login = NewLoginModel(&a.opts)
		a.resize()
		return a, a.login.Init()
	case projectListView:
		if a.list == nil {
			a.list = NewProjectListModel(&a.opts, a.user)
		}
		a.list.user = a.user
		a.resize()
		return a, a.list.Init()
	case projectFormView:
		a.creator = NewProjectFormModel(&a.opts)
		a.resize()
		return a, a.creator.Init()
	case projectDetailView:
		a.detail = NewProjectDetailModel(&a.opts, a.user, msg.projectID)
		a.resize()
		return a, a.detail.Init()
	}
	return a, nil
}

func (a *App) resize() {
	if a.width == 0 {
		return
	}
	bodyHeight := max(a.height-3, 5)
	if a.login != nil {
		a.login.SetSize(a.width, bodyHeight)
	}
	if a.list != nil {
		a.list.SetSize(a.width, bodyHeight)
	}
	if a.creator != nil {
		a.creator.SetSize(a.width, bodyHeight)
	}
	if a.detail != nil {
		a.detail.SetSize(a.width, bodyHeight)
	}
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var title, content string
	switch a.state {
	case loginView:
		title, content = "Sign in", a.login.View()
	case projectListView:
		title, content = "Projects", a.list.View()
	case projectFormView:
		title, content = "New Project", a.creator.View()
	case projectDetailView:
		title, content = a.detail.Title(), a.detail.View()
	default:
		content = "Unknown view"
	}

	view := lipgloss.JoinVertical(lipgloss.Left, renderHeader(a.width, title, a.user), "", content)
	if a.status != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, StatusBarStyle.Render(a.status))
	}
	return view
}

// StatusMsg shows a transient message in the status bar
type StatusMsg string

type clearStatusMsg struct{ id int }

// SwitchViewMsg moves the app to another view
type SwitchViewMsg struct {
	view      sessionState
	projectID int
}

type signedInMsg struct{ user *models.User }

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg(text) }
}

func switchCmd(view sessionState, projectID int) tea.Cmd {
	return func() tea.Msg { return SwitchViewMsg{view: view, projectID: projectID} }
}

// errorCmd reports a load failure; an expired session returns to sign-in
func errorCmd(err error) tea.Cmd {
	if errors.Is(err, form.ErrNotSignedIn) || api.IsUnauthorized(err) {
		return tea.Batch(statusCmd("Your session has ended. Please sign in again."), switchCmd(loginView, 0))
	}
	msg, _ := form.UserMessage(err, "Something went wrong. Please try again.")
	return statusCmd(msg)
}

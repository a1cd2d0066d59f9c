package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// LoginModel is the sign-in screen with a sign-up toggle
type LoginModel struct {
	opts     *Options
	signIn   *FormView
	signUp   *FormView
	register bool
	width    int
}

func NewLoginModel(opts *Options) *LoginModel {
	m := &LoginModel{
		opts:   opts,
		signIn: NewFormView(opts.Session.SignInForm(), opts.RequestTimeout),
		signUp: NewFormView(opts.Session.SignUpForm(), opts.RequestTimeout),
		width:  60,
	}
	m.signIn.SetShowHelp(false)
	m.signUp.SetShowHelp(false)
	return m
}

func (m *LoginModel) active() *FormView {
	if m.register {
		return m.signUp
	}
	return m.signIn
}

func (m *LoginModel) Init() tea.Cmd {
	return m.active().Init()
}

func (m *LoginModel) SetSize(width, _ int) {
	m.width = min(width, 70)
	m.signIn.SetWidth(m.width)
	m.signUp.SetWidth(m.width)
}

func (m *LoginModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formSavedMsg:
		if msg.view != m.signIn && msg.view != m.signUp {
			return nil
		}
		user, err := m.opts.Session.User()
		if err != nil || user == nil {
			user = userFromEntity(msg.outcome.Entity)
		}
		m.opts.Logger.Info("signed in from tui", "username", user.Username)
		return tea.Batch(
			func() tea.Msg { return signedInMsg{user: user} },
			statusCmd("Welcome, "+user.DisplayName()),
		)

	case tea.KeyMsg:
		switch key := msg.String(); {
		case Shortcuts.SignUp.Matches(key):
			m.register = !m.register
			return m.active().Init()
		case key == "esc":
			if m.register {
				m.register = false
				return m.signIn.Init()
			}
			return tea.Quit
		}
	}

	_, cmd := m.active().Update(msg)
	return cmd
}

func (m *LoginModel) View() string {
	var b strings.Builder
	if m.register {
		b.WriteString(renderTitle("Create an account") + "\n\n")
	} else {
		b.WriteString(renderTitle("Sign in to buildtrack") + "\n\n")
	}
	b.WriteString(m.active().View())
	b.WriteString("\n")
	if m.register {
		b.WriteString(renderHelp(m.width, "tab next field", GetShortcutHelp("create account", Shortcuts.Save), GetShortcutHelp("back to sign in", Shortcuts.SignUp), "esc back"))
	} else {
		b.WriteString(renderHelp(m.width, "tab next field", GetShortcutHelp("sign in", Shortcuts.Save), GetShortcutHelp("create account", Shortcuts.SignUp), "esc quit"))
		if tip := GetTerminalSetupMessage(); tip != "" {
			b.WriteString("\n" + HintStyle.Render(tip))
		}
	}
	return ContentPaddingStyle.Render(b.String())
}

// userFromEntity reads the signed-in user out of a sign-in form result
func userFromEntity(e *form.Entity) *models.User {
	if e == nil {
		return &models.User{}
	}
	return &models.User{
		Username: e.Values.String("username"),
		Email:    e.Values.String("email"),
		Role:     e.Values.String("role"),
	}
}

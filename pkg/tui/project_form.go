package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

// ProjectFormModel is the multi-section create-project wizard
type ProjectFormModel struct {
	opts    *Options
	view    *FormView
	confirm *ConfirmationModel
	width   int
}

func NewProjectFormModel(opts *Options) *ProjectFormModel {
	return &ProjectFormModel{
		opts:    opts,
		view:    NewFormView(newProjectController(opts, nil), opts.RequestTimeout),
		confirm: NewConfirmation(),
		width:   80,
	}
}

// newProjectController builds a create controller, or an edit controller
// when entity is set
func newProjectController(opts *Options, entity *form.Entity) *form.Controller {
	gw := form.NewGateway(form.ProjectSchema,
		api.NewProjectCollaborator(opts.Session.Base()),
		opts.Session,
		form.WithLogger(opts.Logger),
		form.WithFailureMessage("Failed to save project. Please try again."),
	)
	if entity == nil {
		return form.NewCreateController(form.ProjectSchema, gw)
	}
	return form.NewEditController(form.ProjectSchema, gw, entity)
}

func (m *ProjectFormModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m *ProjectFormModel) SetSize(width, _ int) {
	m.width = width
	m.view.SetWidth(min(width-4, 90))
}

func (m *ProjectFormModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formSavedMsg:
		if msg.view != m.view {
			return nil
		}
		id, err := strconv.Atoi(msg.outcome.NavigateTo)
		if err != nil {
			m.opts.Logger.Warn("created project has no numeric id", "id", msg.outcome.NavigateTo)
			return tea.Batch(statusCmd("Project created"), switchCmd(projectListView, 0))
		}
		m.opts.Logger.Info("project created", "id", id)
		return tea.Batch(statusCmd("Project created"), switchCmd(projectDetailView, id))

	case tea.KeyMsg:
		if m.confirm.Active() {
			return m.confirm.Update(msg)
		}
		if msg.String() == "esc" {
			if !m.view.Controller().Dirty() {
				return switchCmd(projectListView, 0)
			}
			m.confirm.ShowInline("Discard this project?", true,
				func() tea.Cmd { return switchCmd(projectListView, 0) }, nil)
			return nil
		}
	}

	_, cmd := m.view.Update(msg)
	return cmd
}

func (m *ProjectFormModel) View() string {
	var b strings.Builder
	b.WriteString(renderTitle("Create a project") + "\n\n")
	b.WriteString(m.view.View())
	if m.confirm.Active() {
		b.WriteString("\n" + m.confirm.View())
	}
	return ContentPaddingStyle.Render(b.String())
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type detailTab int

const (
	detailsTab detailTab = iota
	resourcesTab
	chatTab
	updatesTab
)

var detailTabs = []string{"Details", "Resources", "Chat", "Updates"}

type projectLoadedMsg struct {
	projectID int
	project   *models.Project
	entity    *form.Entity
	room      *models.ChatRoom
	err       error
}

// ProjectDetailModel shows one project. The details tab is the edit form,
// read-only unless the user supervises the project.
type ProjectDetailModel struct {
	opts      *Options
	user      *models.User
	projectID int

	project   *models.Project
	edit      *FormView
	resources *ResourcePane
	chat      *ChatPane

	tab     detailTab
	loading bool
	width   int
	height  int
}

func NewProjectDetailModel(opts *Options, user *models.User, projectID int) *ProjectDetailModel {
	return &ProjectDetailModel{opts: opts, user: user, projectID: projectID, width: 80, height: 20}
}

// Title is the project title once loaded
func (m *ProjectDetailModel) Title() string {
	if m.project == nil {
		return "Project"
	}
	return m.project.Title
}

// CanEdit reports whether the user supervises this project
func (m *ProjectDetailModel) CanEdit() bool {
	return m.project != nil && m.user.IsSupervisor() &&
		m.project.Supervisor != nil && m.project.Supervisor.ID == m.user.ID
}

func (m *ProjectDetailModel) Init() tea.Cmd {
	m.loading = true
	return m.load()
}

func (m *ProjectDetailModel) load() tea.Cmd {
	opts, id := m.opts, m.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
		defer cancel()
		msg := projectLoadedMsg{projectID: id}
		c, err := opts.client(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		if msg.project, err = c.GetProject(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		if msg.entity, err = c.ProjectEntity(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		room, err := c.RoomForProject(ctx, id)
		if err != nil && !api.IsNotFound(err) {
			msg.err = err
			return msg
		}
		msg.room = room
		return msg
	}
}

func (m *ProjectDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.edit != nil {
		m.edit.SetWidth(min(width-4, 90))
	}
	if m.resources != nil {
		m.resources.SetWidth(width - 2)
	}
	if m.chat != nil {
		m.chat.SetSize(width-2, height-4)
	}
}

func (m *ProjectDetailModel) loaded(msg projectLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		m.opts.Logger.Warn("loading project failed", "project", m.projectID, "error", msg.err)
		if api.IsNotFound(msg.err) {
			return tea.Batch(statusCmd("Project not found"), switchCmd(projectListView, 0))
		}
		return errorCmd(msg.err)
	}

	m.project = msg.project
	var cmds []tea.Cmd
	if m.edit == nil {
		m.edit = NewFormView(newProjectController(m.opts, msg.entity), m.opts.RequestTimeout)
		m.edit.SetReadOnly(!m.CanEdit())
		m.edit.SetShowHelp(false)
		cmds = append(cmds, m.edit.Init())
	} else if !m.edit.Controller().Dirty() {
		m.edit.Controller().Load(msg.entity)
		m.edit.Sync()
	}
	if m.resources == nil {
		m.resources = NewResourcePane(m.opts, m.projectID, m.CanEdit())
		cmds = append(cmds, m.resources.Load())
	}
	if m.chat == nil && msg.room != nil {
		m.chat = NewChatPane(m.opts, m.user, msg.room.ID, m.project.Title)
		cmds = append(cmds, m.chat.Init())
	}
	m.SetSize(m.width, m.height)
	return tea.Batch(cmds...)
}

func (m *ProjectDetailModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case projectLoadedMsg:
		if msg.projectID != m.projectID {
			return nil
		}
		return m.loaded(msg)

	case formSavedMsg:
		if m.edit != nil && msg.view == m.edit {
			m.opts.Logger.Info("project updated", "id", m.projectID)
			return tea.Batch(statusCmd("Project saved"), m.load())
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// background results go to whichever pane started them
	var cmds []tea.Cmd
	if m.edit != nil {
		_, cmd := m.edit.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.resources != nil {
		cmds = append(cmds, m.resources.Update(msg))
	}
	if m.chat != nil {
		cmds = append(cmds, m.chat.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (m *ProjectDetailModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.project == nil {
		if msg.String() == "esc" {
			return switchCmd(projectListView, 0)
		}
		return nil
	}

	if Shortcuts.NextTab.Matches(msg.String()) && !m.busyEditing() {
		return m.selectTab(detailTab((int(m.tab) + 1) % len(detailTabs)))
	}

	switch m.tab {
	case detailsTab:
		if msg.String() == "esc" {
			if m.edit.Controller().Dirty() {
				return m.edit.Cancel()
			}
			return switchCmd(projectListView, 0)
		}
		if msg.String() == "y" && m.edit.ReadOnly() {
			if err := m.opts.CopyText(m.project.Summary()); err != nil {
				return statusCmd("Failed to copy: " + err.Error())
			}
			return statusCmd("Copied project summary to clipboard")
		}
		_, cmd := m.edit.Update(msg)
		return cmd

	case resourcesTab:
		if msg.String() == "esc" && !m.resources.Editing() {
			return switchCmd(projectListView, 0)
		}
		return m.resources.Update(msg)

	case chatTab:
		if msg.String() == "esc" {
			return switchCmd(projectListView, 0)
		}
		if m.chat == nil {
			return nil
		}
		return m.chat.Update(msg)

	case updatesTab:
		switch msg.String() {
		case "esc":
			return switchCmd(projectListView, 0)
		case "r":
			if m.chat != nil {
				return m.chat.poller.FetchCmd(m.opts.RequestTimeout)
			}
		}
	}
	return nil
}

// busyEditing keeps the tab shortcut from leaving an open resource form
func (m *ProjectDetailModel) busyEditing() bool {
	return m.tab == resourcesTab && m.resources != nil && m.resources.Editing()
}

func (m *ProjectDetailModel) selectTab(tab detailTab) tea.Cmd {
	m.tab = tab
	if m.chat == nil {
		return nil
	}
	if tab == chatTab {
		m.chat.refresh()
		return m.chat.Focus()
	}
	m.chat.Blur()
	return nil
}

func (m *ProjectDetailModel) View() string {
	if m.project == nil {
		if m.loading {
			return ContentPaddingStyle.Render(DescriptionStyle.Render("Loading project..."))
		}
		return ContentPaddingStyle.Render(EmptyStyle.Render("Project unavailable. Press esc to go back."))
	}

	var b strings.Builder
	b.WriteString(m.renderTabs() + "\n\n")

	switch m.tab {
	case detailsTab:
		b.WriteString(m.renderSummary() + "\n\n")
		b.WriteString(m.edit.View())
		keys := []string{GetShortcutHelp("tab", Shortcuts.NextTab), "ctrl+n/ctrl+p section", "alt+1..5 jump"}
		if m.edit.ReadOnly() {
			keys = append(keys, "y copy summary")
		} else {
			keys = append(keys, "tab field", GetShortcutHelp("save", Shortcuts.Save), "esc discard")
		}
		keys = append(keys, "esc back")
		b.WriteString(renderHelp(m.width, keys...))
	case resourcesTab:
		b.WriteString(m.resources.View())
	case chatTab:
		if m.chat == nil {
			b.WriteString(EmptyStyle.Render("This project has no chat room."))
		} else {
			b.WriteString(m.chat.View())
		}
	case updatesTab:
		if m.chat == nil {
			b.WriteString(EmptyStyle.Render("This project has no chat room."))
		} else {
			b.WriteString(m.chat.UpdatesView() + "\n")
			b.WriteString(renderHelp(m.width, GetShortcutHelp("tab", Shortcuts.NextTab), "r refresh", "esc back"))
		}
	}
	return ContentPaddingStyle.Render(b.String())
}

func (m *ProjectDetailModel) renderTabs() string {
	tabs := make([]string, 0, len(detailTabs))
	for i, name := range detailTabs {
		if detailTab(i) == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *ProjectDetailModel) renderSummary() string {
	p := m.project
	supervisor := "unassigned"
	if p.Supervisor != nil {
		supervisor = p.Supervisor.DisplayName()
	}
	used := p.BudgetUsed()
	lines := []string{
		StatusBadgeStyle(p.Status).Render(models.StatusLabel(p.Status)) + "  " + DescriptionStyle.Render(p.Location),
		fmt.Sprintf("%s → %s   supervisor %s   %d/%d workers",
			p.StartDate, p.EndDate, supervisor, p.CurrentWorkerCount, p.EstimatedWorkers),
		fmt.Sprintf("budget %s   spent %s %s",
			models.FormatMoney(float64(p.Budget)),
			models.FormatMoney(float64(p.CurrentSpending)),
			BudgetStyle(used).Render(fmt.Sprintf("(%.0f%%)", used*100))),
	}
	return strings.Join(lines, "\n")
}

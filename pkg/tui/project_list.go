package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type projectsLoadedMsg struct {
	projects []models.Project
	err      error
}

// ProjectListModel is the dashboard: every project the user can see
type ProjectListModel struct {
	opts     *Options
	user     *models.User
	projects []models.Project
	filter   string // status filter, empty for all
	search   *SearchBar
	cursor   int
	offset   int
	loading  bool
	width    int
	height   int
}

func NewProjectListModel(opts *Options, user *models.User) *ProjectListModel {
	return &ProjectListModel{opts: opts, user: user, search: NewSearchBar(), width: 80, height: 20}
}

func (m *ProjectListModel) Init() tea.Cmd {
	m.loading = true
	return m.load()
}

func (m *ProjectListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.SetWidth(width - 4)
}

func (m *ProjectListModel) load() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
		defer cancel()
		c, err := opts.client(ctx)
		if err != nil {
			return projectsLoadedMsg{err: err}
		}
		projects, err := c.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

// visible applies the status filter and search query
func (m *ProjectListModel) visible() []models.Project {
	var out []models.Project
	for _, p := range m.projects {
		if m.filter != "" && p.Status != m.filter {
			continue
		}
		if !m.search.Matches(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *ProjectListModel) selected() (models.Project, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return models.Project{}, false
	}
	return visible[m.cursor], true
}

func (m *ProjectListModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.opts.Logger.Warn("loading projects failed", "error", msg.err)
			return errorCmd(msg.err)
		}
		m.projects = msg.projects
		m.cursor = min(m.cursor, max(len(m.visible())-1, 0))
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *ProjectListModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.search.Active() {
		return m.handleSearchKey(msg)
	}

	visible := m.visible()
	switch msg.String() {
	case "/":
		return m.search.SetActive(true)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "enter":
		if p, ok := m.selected(); ok {
			return switchCmd(projectDetailView, p.ID)
		}
	case "n":
		if !m.user.IsSupervisor() {
			return statusCmd("Only supervisors can create projects")
		}
		return switchCmd(projectFormView, 0)
	case "r":
		m.loading = true
		return m.load()
	case "s":
		m.filter = nextStatusFilter(m.filter)
		m.cursor = 0
		m.offset = 0
	case "y":
		p, ok := m.selected()
		if !ok {
			return nil
		}
		if err := m.opts.CopyText(p.Summary()); err != nil {
			return statusCmd("Failed to copy: " + err.Error())
		}
		return statusCmd("Copied " + p.Title + " to clipboard")
	case "L":
		if err := m.opts.Session.Logout(); err != nil {
			return statusCmd("Failed to sign out: " + err.Error())
		}
		return tea.Batch(statusCmd("Signed out"), switchCmd(loginView, 0))
	case "esc":
		if m.search.Value() != "" {
			m.search.Reset()
			m.cursor = 0
			return nil
		}
		return tea.Quit
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *ProjectListModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		m.cursor = 0
		return nil
	case "enter", "down":
		m.search.SetActive(false)
		return nil
	}
	cmd := m.search.Update(msg)
	m.cursor = 0
	m.offset = 0
	return cmd
}

// nextStatusFilter cycles all → each status → all
func nextStatusFilter(current string) string {
	statuses := models.ProjectStatuses()
	if current == "" {
		return statuses[0]
	}
	for i, s := range statuses {
		if s == current && i+1 < len(statuses) {
			return statuses[i+1]
		}
	}
	return ""
}

func (m *ProjectListModel) View() string {
	var b strings.Builder

	heading := "All projects"
	if m.filter != "" {
		heading = models.StatusLabel(m.filter) + " projects"
	}
	b.WriteString(SectionHeaderStyle.Render(heading))
	if m.loading {
		b.WriteString(DescriptionStyle.Render("  loading..."))
	}
	b.WriteString("\n")
	if m.search.Active() || m.search.Value() != "" {
		b.WriteString(m.search.View())
	}
	b.WriteString("\n")

	visible := m.visible()
	if len(visible) == 0 && !m.loading {
		empty := "No projects yet."
		if len(m.projects) > 0 {
			empty = "No projects match."
		} else if m.user.IsSupervisor() {
			empty += " Press n to create one."
		}
		b.WriteString(EmptyStyle.Render(empty) + "\n")
	}

	rows := max(m.height-9, 3)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	end := min(m.offset+rows, len(visible))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(visible[i], i == m.cursor) + "\n")
	}

	b.WriteString("\n")
	keys := []string{"↑/↓ move", "enter open", "/ search", "s filter", "y copy", "r reload"}
	if m.user.IsSupervisor() {
		keys = append(keys, "n new")
	}
	keys = append(keys, "L sign out", "q quit")
	if m.opts.ShowHelp {
		b.WriteString(renderHelp(m.width, keys...))
	}
	return ContentPaddingStyle.Render(b.String())
}

func (m *ProjectListModel) renderRow(p models.Project, selected bool) string {
	titleWidth := max(m.width-60, 16)
	title := p.Title
	if lipgloss.Width(title) > titleWidth {
		title = title[:titleWidth-1] + "…"
	}
	budget := BudgetStyle(p.BudgetUsed()).Render(fmt.Sprintf("%3.0f%%", p.BudgetUsed()*100))
	line := fmt.Sprintf("%-*s %s  %s → %s  %s  %d/%d workers",
		titleWidth, title,
		StatusBadgeStyle(p.Status).Render(fmt.Sprintf("%-11s", models.StatusLabel(p.Status))),
		p.StartDate, p.EndDate,
		budget,
		p.CurrentWorkerCount, p.EstimatedWorkers,
	)
	if selected {
		return SelectedStyle.Render("▸ ") + line
	}
	return "  " + line
}

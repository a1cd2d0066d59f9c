package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// SearchBar filters the project list by title and location
type SearchBar struct {
	input    textinput.Model
	isActive bool
	width    int
}

func NewSearchBar() *SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search projects by title or location..."
	ti.CharLimit = 100
	ti.Width = 50

	return &SearchBar{input: ti}
}

// SetActive sets whether keystrokes go to the search bar
func (s *SearchBar) SetActive(active bool) tea.Cmd {
	s.isActive = active
	if active {
		return s.input.Focus()
	}
	s.input.Blur()
	return nil
}

func (s *SearchBar) Active() bool { return s.isActive }

func (s *SearchBar) SetWidth(width int) {
	s.width = width
	// borders, padding and the icon
	s.input.Width = max(width-12, 10)
}

func (s *SearchBar) Value() string {
	return s.input.Value()
}

func (s *SearchBar) SetValue(value string) {
	s.input.SetValue(value)
	s.input.CursorEnd()
}

func (s *SearchBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// Reset clears the query and deactivates the bar
func (s *SearchBar) Reset() {
	s.input.SetValue("")
	s.SetActive(false)
}

// Matches reports whether p fits the current query
func (s *SearchBar) Matches(p models.Project) bool {
	query := strings.ToLower(strings.TrimSpace(s.input.Value()))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Location), query)
}

func (s *SearchBar) View() string {
	borderColor := ColorInactive
	if s.isActive {
		borderColor = ColorActive
	}

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Width(max(s.width-4, 10)).
		Padding(0, 1)

	var searchIcon string
	if s.isActive {
		searchIcon = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorActive)).
			Foreground(lipgloss.Color(ColorWhite)).
			Bold(true).
			Padding(0, 1).
			Render("⌕")
	} else {
		// same width as the active icon
		searchIcon = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal)).
			Bold(true).
			Render(" ⌕ ")
	}

	content := lipgloss.JoinHorizontal(lipgloss.Center, searchIcon, " ", s.input.View())
	return searchStyle.Render(content)
}

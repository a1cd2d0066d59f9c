package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// Version is set by the build
var Version = "0.1.0"

func renderHeader(width int, title string, user *models.User) string {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	userStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim))

	logo := logoStyle.Render("▙▖ buildtrack") + userStyle.Render(" v"+Version)
	right := logo
	if user != nil {
		right = userStyle.Render(user.DisplayName()+" ("+user.Role+")  ") + logo
	}

	contentWidth := max(width-2, 0)
	left := titleStyle.Render(title)
	gap := max(contentWidth-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1).
		Width(width).
		Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}

// renderTitle draws a view title block: white text on black
func renderTitle(text string) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite)).
		Background(lipgloss.Color("0")).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// renderHelp renders a key help line
func renderHelp(width int, keys ...string) string {
	line := ""
	for i, k := range keys {
		if i > 0 {
			line += " • "
		}
		line += k
	}
	return HelpStyle.Width(width).Render(line)
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// Color constants
const (
	ColorActive   = "170" // Purple/magenta for active elements
	ColorInactive = "240" // Gray for inactive elements
	ColorSelected = "236" // Dark gray for background selection
	ColorNormal   = "245" // Light gray for normal text
	ColorDim      = "241" // Dimmer gray
	ColorVeryDim  = "242" // Even dimmer gray
	ColorWarning  = "214" // Orange/yellow for warnings
	ColorDanger   = "196" // Red for dangerous actions
	ColorSuccess  = "28"  // Green for success
	ColorWhite    = "255"
	ColorDark     = "235"
	ColorBorder   = "243"
	ColorPrimary  = "33" // Blue for primary actions
	ColorError    = "196"
)

// Common styles
var (
	ActiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorActive))

	InactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorInactive))

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorActive)).
			Background(lipgloss.Color(ColorSelected)).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorDim))

	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorWarning))

	ContentPaddingStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				PaddingRight(1)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorVeryDim)).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorNormal)).
			Bold(true)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorActive)).
				Bold(true)

	RequiredMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorDanger))

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorDim))

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorVeryDim))

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWhite)).
			Background(lipgloss.Color(ColorActive)).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorNormal)).
				Padding(0, 1)

	LockedTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorInactive)).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	BotBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)

	UserBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorPrimary)).
			Padding(0, 1)

	UpdateBadgeStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(ColorWarning)).
				Foreground(lipgloss.Color(ColorDark)).
				Padding(0, 1).
				Bold(true)
)

// StatusBadgeStyle colors a project status chip
func StatusBadgeStyle(status string) lipgloss.Style {
	bg := ColorInactive
	switch status {
	case models.StatusPlanning:
		bg = ColorPrimary
	case models.StatusInProgress:
		bg = ColorWarning
	case models.StatusCompleted:
		bg = ColorSuccess
	case models.StatusOnHold:
		bg = ColorDanger
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(ColorWhite)).
		Padding(0, 1).
		Bold(true)
}

// RiskLevelStyle colors a risk level
func RiskLevelStyle(level string) lipgloss.Style {
	color := ColorNormal
	switch level {
	case models.RiskLow:
		color = ColorSuccess
	case models.RiskMedium:
		color = ColorWarning
	case models.RiskHigh, models.RiskCritical:
		color = ColorDanger
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(level == models.RiskCritical)
}

// BudgetStyle warns as spending approaches the budget
func BudgetStyle(used float64) lipgloss.Style {
	switch {
	case used >= 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDanger)).Bold(true)
	case used >= 0.8:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
}

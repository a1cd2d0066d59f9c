package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// NewTable returns a table with a bold header row
func NewTable(columns ...string) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	header := make([]any, len(columns))
	bold := color.New(color.Bold)
	for i, c := range columns {
		header[i] = bold.Sprint(c)
	}
	tbl.AddRow(header...)
	return tbl
}

// OutputResults writes data as JSON or YAML. Text output is the caller's
// job, so FormatText only prints data with %v.
func OutputResults(w io.Writer, format string, data any) error {
	switch OutputFormat(format) {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)

	case FormatYAML:
		yamlData, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(yamlData)
		return err

	case FormatText:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ProjectTable renders the project list
func ProjectTable(projects []models.Project) *uitable.Table {
	tbl := NewTable("ID", "TITLE", "STATUS", "DATES", "BUDGET", "WORKERS", "SUPERVISOR")
	for _, p := range projects {
		supervisor := ""
		if p.Supervisor != nil {
			supervisor = p.Supervisor.DisplayName()
		}
		tbl.AddRow(
			p.ID,
			TruncateString(p.Title, 40),
			StatusText(p.Status),
			p.StartDate+" → "+p.EndDate,
			fmt.Sprintf("%s (%.0f%%)", models.FormatMoney(float64(p.Budget)), p.BudgetUsed()*100),
			fmt.Sprintf("%d/%d", p.CurrentWorkerCount, p.EstimatedWorkers),
			supervisor,
		)
	}
	return tbl
}

// WorkerTable renders project worker assignments
func WorkerTable(workers []models.ProjectWorker) *uitable.Table {
	tbl := NewTable("ID", "NAME", "EMAIL", "ROLE", "ASSIGNED")
	for _, w := range workers {
		email := ""
		if w.Worker != nil {
			email = w.Worker.Email
		}
		tbl.AddRow(w.ID, w.Worker.DisplayName(), email, w.RoleDescription, w.AssignedAt)
	}
	return tbl
}

// TimelineTable renders timeline events
func TimelineTable(events []models.TimelineEvent) *uitable.Table {
	tbl := NewTable("ID", "TITLE", "DATES", "DONE", "MILESTONE")
	for _, e := range events {
		milestone := ""
		if e.IsMilestone {
			milestone = "◆"
		}
		tbl.AddRow(e.ID, TruncateString(e.Title, 40), e.StartDate+" → "+e.EndDate, fmt.Sprintf("%d%%", e.CompletionPercentage), milestone)
	}
	return tbl
}

// SupplierTable renders suppliers
func SupplierTable(suppliers []models.Supplier) *uitable.Table {
	tbl := NewTable("ID", "NAME", "MATERIALS", "CONTACT", "RELIABILITY", "LEAD TIME")
	for _, s := range suppliers {
		tbl.AddRow(s.ID, s.Name, TruncateString(s.MaterialsProvided, 32), s.ContactPerson, fmt.Sprintf("%.0f", float64(s.ReliabilityScore)), fmt.Sprintf("%dd", s.LeadTimeDays))
	}
	return tbl
}

// RiskTable renders risks
func RiskTable(risks []models.Risk) *uitable.Table {
	tbl := NewTable("ID", "TITLE", "LEVEL", "CATEGORY", "P×I")
	for _, r := range risks {
		tbl.AddRow(r.ID, TruncateString(r.Title, 40), RiskText(r.RiskLevel), r.RiskCategory, fmt.Sprintf("%.2f×%d", float64(r.Probability), r.Impact))
	}
	return tbl
}

// StatusText colors a project status label
func StatusText(status string) string {
	label := models.StatusLabel(status)
	switch status {
	case models.StatusCompleted:
		return color.GreenString(label)
	case models.StatusInProgress:
		return color.CyanString(label)
	case models.StatusOnHold:
		return color.YellowString(label)
	default:
		return label
	}
}

// RiskText colors a risk level
func RiskText(level string) string {
	label := models.HumanizeKey(level)
	switch level {
	case models.RiskCritical:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case models.RiskHigh:
		return color.RedString(label)
	case models.RiskMedium:
		return color.YellowString(label)
	default:
		return label
	}
}

// TruncateString truncates a string to the specified length in runes
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// Indent prefixes every line of s
func Indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

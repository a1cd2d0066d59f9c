package models

import (
	"fmt"
	"strings"
)

// Summary is the plain-text digest copied to the clipboard
func (p *Project) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", p.Title, StatusLabel(p.Status))
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	fmt.Fprintf(&b, "Dates: %s to %s\n", p.StartDate, p.EndDate)
	fmt.Fprintf(&b, "Budget: %s (spent %s, %.0f%%)\n", FormatMoney(float64(p.Budget)), FormatMoney(float64(p.CurrentSpending)), p.BudgetUsed()*100)
	fmt.Fprintf(&b, "Workers: %d of %d estimated\n", p.CurrentWorkerCount, p.EstimatedWorkers)
	if p.Supervisor != nil {
		fmt.Fprintf(&b, "Supervisor: %s\n", p.Supervisor.DisplayName())
	}
	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	return b.String()
}

// FormatMoney renders an amount with thousands separators and two decimals
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	whole, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := range len(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	return sign + string(out) + "." + frac
}

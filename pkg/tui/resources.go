package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type resourceKind int

const (
	timelineResource resourceKind = iota
	workerResource
	supplierResource
	riskResource
)

var resourceKinds = []resourceKind{timelineResource, workerResource, supplierResource, riskResource}

func (k resourceKind) String() string {
	switch k {
	case timelineResource:
		return "Timeline"
	case workerResource:
		return "Workers"
	case supplierResource:
		return "Suppliers"
	case riskResource:
		return "Risks"
	}
	return "Unknown"
}

type resourcesLoadedMsg struct {
	projectID int
	timeline  []models.TimelineEvent
	workers   []models.ProjectWorker
	suppliers []models.Supplier
	risks     []models.Risk
	err       error
}

type workerRemovedMsg struct {
	projectID int
	name      string
	err       error
}

// ResourcePane lists a project's timeline, workers, suppliers and risks.
// Supervisors add entries through single-section forms.
type ResourcePane struct {
	opts      *Options
	projectID int
	canEdit   bool

	kind      resourceKind
	cursor    int
	timeline  []models.TimelineEvent
	workers   []models.ProjectWorker
	suppliers []models.Supplier
	risks     []models.Risk
	loading   bool

	adding  *FormView
	confirm *ConfirmationModel
	width   int
}

func NewResourcePane(opts *Options, projectID int, canEdit bool) *ResourcePane {
	return &ResourcePane{
		opts:      opts,
		projectID: projectID,
		canEdit:   canEdit,
		confirm:   NewConfirmation(),
		width:     80,
	}
}

func (p *ResourcePane) SetWidth(w int) {
	p.width = w
	if p.adding != nil {
		p.adding.SetWidth(min(w-4, 80))
	}
}

// Editing reports whether an add or edit form is open
func (p *ResourcePane) Editing() bool { return p.adding != nil || p.confirm.Active() }

func (p *ResourcePane) Load() tea.Cmd {
	p.loading = true
	opts, id := p.opts, p.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
		defer cancel()
		msg := resourcesLoadedMsg{projectID: id}
		c, err := opts.client(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		if msg.timeline, err = c.ListTimeline(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		if msg.workers, err = c.ListWorkers(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		if msg.suppliers, err = c.ListSuppliers(ctx, id); err != nil {
			msg.err = err
			return msg
		}
		msg.risks, msg.err = c.ListRisks(ctx, id)
		return msg
	}
}

func (p *ResourcePane) count() int {
	switch p.kind {
	case timelineResource:
		return len(p.timeline)
	case workerResource:
		return len(p.workers)
	case supplierResource:
		return len(p.suppliers)
	case riskResource:
		return len(p.risks)
	}
	return 0
}

func (p *ResourcePane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resourcesLoadedMsg:
		if msg.projectID != p.projectID {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.opts.Logger.Warn("loading resources failed", "project", p.projectID, "error", msg.err)
			return errorCmd(msg.err)
		}
		p.timeline, p.workers, p.suppliers, p.risks = msg.timeline, msg.workers, msg.suppliers, msg.risks
		p.cursor = min(p.cursor, max(p.count()-1, 0))
		return nil

	case workerRemovedMsg:
		if msg.projectID != p.projectID {
			return nil
		}
		if msg.err != nil {
			return errorCmd(msg.err)
		}
		return tea.Batch(statusCmd("Removed "+msg.name), p.Load())

	case formSavedMsg:
		if p.adding == nil || msg.view != p.adding {
			return nil
		}
		kind := p.kind
		p.adding = nil
		return tea.Batch(statusCmd(kind.String()+" saved"), p.Load())

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.adding != nil {
		_, cmd := p.adding.Update(msg)
		return cmd
	}
	return nil
}

func (p *ResourcePane) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.confirm.Active() {
		return p.confirm.Update(msg)
	}
	if p.adding != nil {
		if msg.String() == "esc" {
			p.adding = nil
			return nil
		}
		_, cmd := p.adding.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "left", "[":
		p.kind = resourceKinds[(int(p.kind)+len(resourceKinds)-1)%len(resourceKinds)]
		p.cursor = 0
	case "right", "]":
		p.kind = resourceKinds[(int(p.kind)+1)%len(resourceKinds)]
		p.cursor = 0
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < p.count()-1 {
			p.cursor++
		}
	case "r":
		return p.Load()
	case "a":
		if !p.canEdit {
			return statusCmd("Only the project supervisor can add " + strings.ToLower(p.kind.String()))
		}
		return p.openForm(nil)
	case "e":
		if !p.canEdit || p.kind != timelineResource || p.cursor >= len(p.timeline) {
			return nil
		}
		return p.openForm(timelineEntity(p.timeline[p.cursor]))
	case "x":
		if !p.canEdit || p.kind != workerResource || p.cursor >= len(p.workers) {
			return nil
		}
		return p.confirmRemove(p.workers[p.cursor])
	}
	return nil
}

// openForm opens the add form for the current kind, or an edit form for a
// timeline event
func (p *ResourcePane) openForm(entity *form.Entity) tea.Cmd {
	base := p.opts.Session.Base()
	var schema *form.Schema
	var collab *api.ResourceCollaborator
	switch p.kind {
	case timelineResource:
		schema, collab = form.TimelineEventSchema, api.NewTimelineCollaborator(base, p.projectID)
	case workerResource:
		schema, collab = form.WorkerSchema, api.NewWorkerCollaborator(base, p.projectID)
	case supplierResource:
		schema, collab = form.SupplierSchema, api.NewSupplierCollaborator(base, p.projectID)
	case riskResource:
		schema, collab = form.RiskSchema, api.NewRiskCollaborator(base, p.projectID)
	}
	gw := form.NewGateway(schema, collab, p.opts.Session,
		form.WithLogger(p.opts.Logger),
		form.WithFailureMessage("Failed to save. Please try again."))

	var ctrl *form.Controller
	if entity == nil {
		ctrl = form.NewCreateController(schema, gw)
	} else {
		ctrl = form.NewEditController(schema, gw, entity)
	}
	p.adding = NewFormView(ctrl, p.opts.RequestTimeout)
	p.adding.SetWidth(min(p.width-4, 80))
	return p.adding.Init()
}

func (p *ResourcePane) confirmRemove(w models.ProjectWorker) tea.Cmd {
	name := w.Worker.DisplayName()
	opts, projectID, id := p.opts, p.projectID, w.ID
	p.confirm.Show(ConfirmationConfig{
		Title:       "Remove worker",
		Message:     fmt.Sprintf("Remove %s from this project?", name),
		Warning:     "Their assignment history is deleted.",
		Destructive: true,
		Type:        ConfirmTypeDialog,
		Width:       min(p.width-4, 60),
	}, func() tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
			defer cancel()
			c, err := opts.client(ctx)
			if err == nil {
				err = c.RemoveWorker(ctx, id)
			}
			return workerRemovedMsg{projectID: projectID, name: name, err: err}
		}
	}, nil)
	return nil
}

func timelineEntity(e models.TimelineEvent) *form.Entity {
	return &form.Entity{
		ID: strconv.Itoa(e.ID),
		Values: form.Values{
			"title":                 e.Title,
			"description":           e.Description,
			"start_date":            e.StartDate,
			"end_date":              e.EndDate,
			"completion_percentage": float64(e.CompletionPercentage),
			"is_milestone":          e.IsMilestone,
		},
	}
}

func (p *ResourcePane) View() string {
	var b strings.Builder

	tabs := make([]string, 0, len(resourceKinds))
	for _, k := range resourceKinds {
		if k == p.kind {
			tabs = append(tabs, ActiveTabStyle.Render(k.String()))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(k.String()))
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	if p.adding != nil {
		verb := "Add"
		if p.adding.Controller().Mode() == form.ModeUpdate {
			verb = "Edit"
		}
		b.WriteString(SectionHeaderStyle.Render(verb+" "+strings.TrimSuffix(strings.ToLower(p.kind.String()), "s")) + "\n\n")
		b.WriteString(p.adding.View())
		return b.String()
	}

	if p.loading && p.count() == 0 {
		b.WriteString(DescriptionStyle.Render("loading...") + "\n")
	} else if p.count() == 0 {
		b.WriteString(EmptyStyle.Render("Nothing here yet.") + "\n")
	}
	for i, line := range p.rows() {
		if i == p.cursor {
			b.WriteString(SelectedStyle.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if p.confirm.Active() {
		b.WriteString("\n" + p.confirm.View() + "\n")
	}

	b.WriteString("\n")
	keys := []string{"←/→ kind", "↑/↓ move", "r reload"}
	if p.canEdit {
		keys = append(keys, "a add")
		switch p.kind {
		case timelineResource:
			keys = append(keys, "e edit")
		case workerResource:
			keys = append(keys, "x remove")
		}
	}
	b.WriteString(renderHelp(p.width, keys...))
	return b.String()
}

func (p *ResourcePane) rows() []string {
	var rows []string
	switch p.kind {
	case timelineResource:
		for _, e := range p.timeline {
			mark := " "
			if e.IsMilestone {
				mark = "◆"
			}
			rows = append(rows, fmt.Sprintf("%s %s → %s  %-30s %3d%%", mark, e.StartDate, e.EndDate, e.Title, e.CompletionPercentage))
		}
	case workerResource:
		for _, w := range p.workers {
			role := w.RoleDescription
			if role == "" {
				role = "worker"
			}
			rows = append(rows, fmt.Sprintf("%-24s %-20s %s", w.Worker.DisplayName(), role, DescriptionStyle.Render(w.Worker.Email)))
		}
	case supplierResource:
		for _, s := range p.suppliers {
			rows = append(rows, fmt.Sprintf("%-24s %-30s %5.1f  %d days", s.Name, s.MaterialsProvided, float64(s.ReliabilityScore), s.LeadTimeDays))
		}
	case riskResource:
		for _, r := range p.risks {
			level := RiskLevelStyle(r.RiskLevel).Render(fmt.Sprintf("%-8s", r.RiskLevel))
			state := ""
			if r.IsResolved {
				state = SuccessStyle.Render(" resolved")
			}
			rows = append(rows, fmt.Sprintf("%s %-30s p=%.2f impact=%d%s", level, r.Title, float64(r.Probability), r.Impact, state))
		}
	}
	return rows
}

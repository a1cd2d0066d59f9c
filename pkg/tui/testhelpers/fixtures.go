package testhelpers

import (
	"strconv"

	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// ProjectPayload is a valid create payload
func ProjectPayload(title string) map[string]any {
	return map[string]any{
		"title":             title,
		"description":       "Four lane crossing over the river",
		"location":          "Riverside",
		"status":            models.StatusPlanning,
		"start_date":        "2025-04-01",
		"end_date":          "2025-12-15",
		"budget":            "500000.00",
		"current_spending":  "125000.00",
		"estimated_workers": 12,
	}
}

// CreateProject creates a project as the signed-in supervisor
func (e *TestEnvironment) CreateProject(title string) *models.Project {
	e.t.Helper()
	ctx, cancel := e.ctx()
	defer cancel()
	c := e.Client()
	rec, err := c.CreateProject(ctx, ProjectPayload(title))
	if err != nil {
		e.t.Fatalf("create project: %v", err)
	}
	id, err := strconv.Atoi(form.Display(rec["id"]))
	if err != nil {
		e.t.Fatalf("create project: bad id %v", rec["id"])
	}
	p, err := c.GetProject(ctx, id)
	if err != nil {
		e.t.Fatalf("get project: %v", err)
	}
	return p
}

// AssignWorker adds the seeded worker to a project
func (e *TestEnvironment) AssignWorker(projectID int) {
	e.t.Helper()
	ctx, cancel := e.ctx()
	defer cancel()
	if _, err := e.Client().AddWorker(ctx, projectID, demoapi.WorkerEmail, "Crane operator"); err != nil {
		e.t.Fatalf("add worker: %v", err)
	}
}

// PostMessage sends a chat message to a project's room
func (e *TestEnvironment) PostMessage(projectID int, content string, isUpdate bool) {
	e.t.Helper()
	ctx, cancel := e.ctx()
	defer cancel()
	c := e.Client()
	room, err := c.RoomForProject(ctx, projectID)
	if err != nil {
		e.t.Fatalf("room: %v", err)
	}
	if _, err := c.SendMessage(ctx, room.ID, content, isUpdate); err != nil {
		e.t.Fatalf("send: %v", err)
	}
}

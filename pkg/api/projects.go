package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

func projectQuery(projectID int) url.Values {
	return url.Values{"project_id": {strconv.Itoa(projectID)}}
}

// ListProjects returns the projects visible to the signed-in user
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project with its nested resources
func (c *Client) GetProject(ctx context.Context, id int) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/", id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProjectRecord fetches a project as a flat record for seeding edit forms
func (c *Client) ProjectRecord(ctx context.Context, id int) (map[string]any, error) {
	return c.doValues(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/", id), nil)
}

// CreateProject posts a new project and returns the stored record
func (c *Client) CreateProject(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPost, "/api/projects/", payload)
}

// UpdateProject patches the given fields of a project
func (c *Client) UpdateProject(ctx context.Context, id int, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPatch, fmt.Sprintf("/api/projects/%d/", id), payload)
}

// AddWorker assigns a worker, found by email, to a project
func (c *Client) AddWorker(ctx context.Context, projectID int, email, roleDescription string) (map[string]any, error) {
	body := map[string]any{"email": email, "role_description": roleDescription}
	return c.doValues(ctx, http.MethodPost, fmt.Sprintf("/api/projects/%d/add_worker/", projectID), body)
}

// ListWorkers returns a project's worker assignments
func (c *Client) ListWorkers(ctx context.Context, projectID int) ([]models.ProjectWorker, error) {
	var workers []models.ProjectWorker
	if err := c.do(ctx, http.MethodGet, "/api/project-workers/", projectQuery(projectID), nil, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// RemoveWorker deletes one assignment
func (c *Client) RemoveWorker(ctx context.Context, assignmentID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/project-workers/%d/", assignmentID), nil, nil, nil)
}

// ListSuppliers returns a project's suppliers
func (c *Client) ListSuppliers(ctx context.Context, projectID int) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := c.do(ctx, http.MethodGet, "/api/project-suppliers/", projectQuery(projectID), nil, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// CreateSupplier adds a supplier; payload carries the project id
func (c *Client) CreateSupplier(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPost, "/api/project-suppliers/", payload)
}

// ListRisks returns a project's risks
func (c *Client) ListRisks(ctx context.Context, projectID int) ([]models.Risk, error) {
	var risks []models.Risk
	if err := c.do(ctx, http.MethodGet, "/api/project-risks/", projectQuery(projectID), nil, &risks); err != nil {
		return nil, err
	}
	return risks, nil
}

// CreateRisk adds a risk; payload carries the project id
func (c *Client) CreateRisk(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPost, "/api/project-risks/", payload)
}

// ListTimeline returns a project's timeline events ordered by start date
func (c *Client) ListTimeline(ctx context.Context, projectID int) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	if err := c.do(ctx, http.MethodGet, "/api/project-timeline/", projectQuery(projectID), nil, &events); err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate < events[j].StartDate
	})
	return events, nil
}

// CreateTimelineEvent adds an event; payload carries the project id
func (c *Client) CreateTimelineEvent(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPost, "/api/project-timeline/", payload)
}

// UpdateTimelineEvent patches an event
func (c *Client) UpdateTimelineEvent(ctx context.Context, id int, payload map[string]any) (map[string]any, error) {
	return c.doValues(ctx, http.MethodPatch, fmt.Sprintf("/api/project-timeline/%d/", id), payload)
}

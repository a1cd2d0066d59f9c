package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

// ErrUnsupported is returned for operations a resource does not offer
var ErrUnsupported = errors.New("operation not supported for this resource")

type createFunc func(c *Client, ctx context.Context, payload map[string]any) (map[string]any, error)

type updateFunc func(c *Client, ctx context.Context, id int, payload map[string]any) (map[string]any, error)

// ResourceCollaborator adapts one REST resource to form.Collaborator. Sub
// resources add their project id to every created record.
type ResourceCollaborator struct {
	client    *Client
	projectID int
	create    createFunc
	update    updateFunc
}

var _ form.Collaborator = (*ResourceCollaborator)(nil)

// NewProjectCollaborator persists projects
func NewProjectCollaborator(c *Client) *ResourceCollaborator {
	return &ResourceCollaborator{client: c, create: (*Client).CreateProject, update: (*Client).UpdateProject}
}

// NewWorkerCollaborator assigns workers to a project by email
func NewWorkerCollaborator(c *Client, projectID int) *ResourceCollaborator {
	return &ResourceCollaborator{
		client: c,
		create: func(c *Client, ctx context.Context, payload map[string]any) (map[string]any, error) {
			return c.AddWorker(ctx, projectID, form.Display(payload["email"]), form.Display(payload["role_description"]))
		},
	}
}

// NewSupplierCollaborator adds suppliers to a project
func NewSupplierCollaborator(c *Client, projectID int) *ResourceCollaborator {
	return &ResourceCollaborator{client: c, projectID: projectID, create: (*Client).CreateSupplier}
}

// NewRiskCollaborator adds risks to a project
func NewRiskCollaborator(c *Client, projectID int) *ResourceCollaborator {
	return &ResourceCollaborator{client: c, projectID: projectID, create: (*Client).CreateRisk}
}

// NewTimelineCollaborator adds and edits a project's timeline events
func NewTimelineCollaborator(c *Client, projectID int) *ResourceCollaborator {
	return &ResourceCollaborator{
		client:    c,
		projectID: projectID,
		create:    (*Client).CreateTimelineEvent,
		update:    (*Client).UpdateTimelineEvent,
	}
}

func (r *ResourceCollaborator) Create(ctx context.Context, token string, payload form.Values) (*form.Entity, error) {
	body := map[string]any(payload.Clone())
	if r.projectID != 0 {
		body["project"] = r.projectID
	}
	rec, err := r.create(r.client.WithToken(token), ctx, body)
	if err != nil {
		return nil, err
	}
	return entityFrom(rec)
}

func (r *ResourceCollaborator) Update(ctx context.Context, token, id string, payload form.Values) (*form.Entity, error) {
	if r.update == nil {
		return nil, ErrUnsupported
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", id, err)
	}
	rec, err := r.update(r.client.WithToken(token), ctx, n, map[string]any(payload))
	if err != nil {
		return nil, err
	}
	return entityFrom(rec)
}

// ProjectEntity fetches a project as a form entity for edit flows
func (c *Client) ProjectEntity(ctx context.Context, id int) (*form.Entity, error) {
	rec, err := c.ProjectRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return entityFrom(rec)
}

func entityFrom(rec map[string]any) (*form.Entity, error) {
	raw, ok := rec["id"]
	if !ok || raw == nil {
		return nil, errors.New("response has no id")
	}
	return &form.Entity{ID: form.Display(raw), Values: form.Values(rec)}, nil
}

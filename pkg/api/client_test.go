package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
)

func newDemo(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(demoapi.New().Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func signIn(t *testing.T, c *Client, username, password string) *Client {
	t.Helper()
	pair, err := c.Login(context.Background(), username, password)
	require.NoError(t, err)
	return c.WithToken(pair.Access)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantFields map[string][]string
	}{
		{
			name:       "detail",
			status:     403,
			body:       `{"detail": "You do not have permission to perform this action."}`,
			wantDetail: "You do not have permission to perform this action.",
		},
		{
			name:       "field map",
			status:     400,
			body:       `{"title": ["This field is required."], "end_date": ["Bad.", "Worse."]}`,
			wantFields: map[string][]string{"title": {"This field is required."}, "end_date": {"Bad.", "Worse."}},
		},
		{
			name:       "non field errors become detail",
			status:     400,
			body:       `{"non_field_errors": ["Dates overlap."]}`,
			wantDetail: "Dates overlap.",
		},
		{
			name:       "html body",
			status:     502,
			body:       `<html>Bad Gateway</html>`,
			wantDetail: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.wantDetail, e.Detail)
			assert.Equal(t, tt.wantFields, e.Fields)
		})
	}
}

func TestErrorIsDetailedError(t *testing.T) {
	var err error = &Error{Status: 400, Fields: map[string][]string{"title": {"Required."}}}
	var detailed form.DetailedError
	require.True(t, errors.As(err, &detailed))
	assert.Equal(t, map[string]string{"title": "Required."}, detailed.FieldMessages())

	msg, fields := form.UserMessage(err, form.DefaultFailureMessage)
	assert.Equal(t, "title: Required.", msg)
	assert.Equal(t, "Required.", fields["title"])
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "username": "sam", "role": "worker"})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	user, err := c.WithToken("abc").Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
	assert.Equal(t, "sam", user.Username)
	assert.Empty(t, c.Token())
}

func TestClient_Unauthorized(t *testing.T) {
	c := newDemo(t)
	_, err := c.Profile(context.Background())
	assert.True(t, IsUnauthorized(err))

	_, err = c.Login(context.Background(), "supervisor", "nope")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "No active account found with the given credentials", apiErr.Detail)
}

func TestClient_ProjectFlow(t *testing.T) {
	ctx := context.Background()
	base := newDemo(t)
	c := signIn(t, base, demoapi.SupervisorUsername, demoapi.SupervisorPassword)

	collab := NewProjectCollaborator(base)
	ctrl := form.NewCreateController(form.ProjectSchema, form.NewGateway(form.ProjectSchema, collab, form.StaticToken(c.Token())))
	for field, raw := range map[string]string{
		"title":      "Metro Bridge",
		"budget":     "500000",
		"status":     "planning",
		"start_date": "2025-01-01",
		"end_date":   "2025-06-01",
	} {
		_, err := ctrl.Set(field, raw)
		require.NoError(t, err)
	}
	outcome, err := ctrl.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.NavigateTo)

	id, err := strconv.Atoi(outcome.NavigateTo)
	require.NoError(t, err)

	entity, err := c.ProjectEntity(ctx, id)
	require.NoError(t, err)
	edit := form.NewEditController(form.ProjectSchema, form.NewGateway(form.ProjectSchema, collab, form.StaticToken(c.Token())), entity)
	assert.Equal(t, 500000.0, edit.Value("budget"))

	_, err = edit.Set("budget", "250000")
	require.NoError(t, err)
	_, err = edit.Submit(ctx)
	require.NoError(t, err)

	p, err := c.GetProject(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 250000, p.Budget)
	assert.Equal(t, "Metro Bridge", p.Title)

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestClient_ServerValidationMapsOntoForm(t *testing.T) {
	ctx := context.Background()
	base := newDemo(t)
	c := signIn(t, base, demoapi.SupervisorUsername, demoapi.SupervisorPassword)

	created, err := c.CreateProject(ctx, map[string]any{"title": "Tower", "start_date": "2025-01-01", "end_date": "2025-03-01", "status": "planning"})
	require.NoError(t, err)
	pid, _ := strconv.Atoi(form.Display(created["id"]))

	// bypasses the local schema so the server's field map comes back
	_, err = NewSupplierCollaborator(base, pid).Create(ctx, c.Token(), form.Values{"name": "Steel Co"})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.FieldMessages(), "materials_provided")
}

func TestClient_SubResources(t *testing.T) {
	ctx := context.Background()
	base := newDemo(t)
	c := signIn(t, base, demoapi.SupervisorUsername, demoapi.SupervisorPassword)

	created, err := c.CreateProject(ctx, map[string]any{"title": "Tower", "start_date": "2025-01-01", "end_date": "2025-03-01", "status": "planning"})
	require.NoError(t, err)
	pid, err := strconv.Atoi(form.Display(created["id"]))
	require.NoError(t, err)
	token := form.StaticToken(c.Token())

	t.Run("workers", func(t *testing.T) {
		ctrl := form.NewCreateController(form.WorkerSchema, form.NewGateway(form.WorkerSchema, NewWorkerCollaborator(base, pid), token))
		_, _ = ctrl.Set("email", demoapi.WorkerEmail)
		_, _ = ctrl.Set("role_description", "Crane operator")
		_, err := ctrl.Submit(ctx)
		require.NoError(t, err)

		workers, err := c.ListWorkers(ctx, pid)
		require.NoError(t, err)
		require.Len(t, workers, 1)
		assert.Equal(t, "Crane operator", workers[0].RoleDescription)

		require.NoError(t, c.RemoveWorker(ctx, workers[0].ID))
		workers, err = c.ListWorkers(ctx, pid)
		require.NoError(t, err)
		assert.Empty(t, workers)
	})

	t.Run("unknown worker email surfaces detail", func(t *testing.T) {
		gw := form.NewGateway(form.WorkerSchema, NewWorkerCollaborator(base, pid), token)
		ctrl := form.NewCreateController(form.WorkerSchema, gw)
		_, _ = ctrl.Set("email", "ghost@example.com")
		_, err := ctrl.Submit(ctx)
		require.Error(t, err)
		assert.Equal(t, "No worker found with this email", ctrl.Err())
	})

	t.Run("suppliers and risks", func(t *testing.T) {
		sup := form.NewCreateController(form.SupplierSchema, form.NewGateway(form.SupplierSchema, NewSupplierCollaborator(base, pid), token))
		_, _ = sup.Set("name", "Steel Co")
		_, _ = sup.Set("materials_provided", "Rebar")
		_, err := sup.Submit(ctx)
		require.NoError(t, err)

		risk := form.NewCreateController(form.RiskSchema, form.NewGateway(form.RiskSchema, NewRiskCollaborator(base, pid), token))
		_, _ = risk.Set("title", "Flood")
		_, _ = risk.Set("description", "River rises in spring")
		_, _ = risk.Set("risk_level", "high")
		_, err = risk.Submit(ctx)
		require.NoError(t, err)

		suppliers, err := c.ListSuppliers(ctx, pid)
		require.NoError(t, err)
		require.Len(t, suppliers, 1)
		assert.EqualValues(t, 80, suppliers[0].ReliabilityScore)

		risks, err := c.ListRisks(ctx, pid)
		require.NoError(t, err)
		require.Len(t, risks, 1)
		assert.Equal(t, "high", risks[0].RiskLevel)
	})

	t.Run("timeline sorted and editable", func(t *testing.T) {
		collab := NewTimelineCollaborator(base, pid)
		for _, ev := range []form.Values{
			{"title": "Deck", "start_date": "2025-02-01", "end_date": "2025-02-20"},
			{"title": "Piles", "start_date": "2025-01-05", "end_date": "2025-01-30"},
		} {
			_, err := collab.Create(ctx, c.Token(), ev)
			require.NoError(t, err)
		}
		events, err := c.ListTimeline(ctx, pid)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "Piles", events[0].Title)

		_, err = collab.Update(ctx, c.Token(), strconv.Itoa(events[0].ID), form.Values{"completion_percentage": 50.0})
		require.NoError(t, err)
		events, err = c.ListTimeline(ctx, pid)
		require.NoError(t, err)
		assert.Equal(t, 50, events[0].CompletionPercentage)
	})

	t.Run("suppliers cannot be updated", func(t *testing.T) {
		_, err := NewSupplierCollaborator(base, pid).Update(ctx, c.Token(), "1", form.Values{})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestClient_Chat(t *testing.T) {
	ctx := context.Background()
	base := newDemo(t)
	c := signIn(t, base, demoapi.SupervisorUsername, demoapi.SupervisorPassword)

	created, err := c.CreateProject(ctx, map[string]any{"title": "Tower", "start_date": "2025-01-01", "end_date": "2025-03-01", "status": "planning"})
	require.NoError(t, err)
	pid, _ := strconv.Atoi(form.Display(created["id"]))

	room, err := c.RoomForProject(ctx, pid)
	require.NoError(t, err)

	_, err = c.SendMessage(ctx, room.ID, "Morning all", false)
	require.NoError(t, err)
	_, err = c.SendMessage(ctx, room.ID, "Slab poured", true)
	require.NoError(t, err)

	msgs, err := c.Messages(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsUpdate)

	_, err = c.RoomForProject(ctx, 9999)
	assert.True(t, IsNotFound(err))
}

func TestClient_RegisterAndRefresh(t *testing.T) {
	ctx := context.Background()
	c := newDemo(t)

	_, err := c.Register(ctx, Registration{Username: "casey", Email: "casey@example.com", Password: "longenough", Password2: "longenough"})
	require.NoError(t, err)

	pair, err := c.Login(ctx, "casey", "longenough")
	require.NoError(t, err)

	refreshed, err := c.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Access)
	assert.Equal(t, pair.Refresh, refreshed.Refresh)
}

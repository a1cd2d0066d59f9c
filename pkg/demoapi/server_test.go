package demoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type harness struct {
	t   *testing.T
	srv *httptest.Server
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	srv := httptest.NewServer(New(opts...).Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv}
}

func (h *harness) call(method, path, token string, body any, out any) int {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) login(username, password string) string {
	h.t.Helper()
	var pair models.TokenPair
	status := h.call(http.MethodPost, "/api/token/", "", map[string]string{"username": username, "password": password}, &pair)
	require.Equal(h.t, http.StatusOK, status)
	require.NotEmpty(h.t, pair.Access)
	return pair.Access
}

func (h *harness) createProject(token string) models.Project {
	h.t.Helper()
	var p models.Project
	status := h.call(http.MethodPost, "/api/projects/", token, map[string]any{
		"title":      "Metro Bridge",
		"budget":     500000,
		"status":     "planning",
		"start_date": "2025-01-01",
		"end_date":   "2025-06-01",
	}, &p)
	require.Equal(h.t, http.StatusCreated, status)
	return p
}

func TestToken(t *testing.T) {
	h := newHarness(t)

	var body map[string]any
	status := h.call(http.MethodPost, "/api/token/", "", map[string]string{"username": "supervisor", "password": "wrong"}, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No active account found with the given credentials", body["detail"])

	status = h.call(http.MethodPost, "/api/token/", "", map[string]string{}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "username")

	var pair models.TokenPair
	status = h.call(http.MethodPost, "/api/token/", "", map[string]string{"username": SupervisorUsername, "password": SupervisorPassword}, &pair)
	require.Equal(t, http.StatusOK, status)

	var refreshed models.TokenPair
	status = h.call(http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, refreshed.Access)

	status = h.call(http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Access}, &body)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestExpiredAccessToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	h := newHarness(t, WithClock(clock), WithAccessTTL(time.Minute))
	token := h.login(SupervisorUsername, SupervisorPassword)

	var user models.User
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/profile/", token, nil, &user))
	assert.Equal(t, SupervisorUsername, user.Username)

	now = now.Add(2 * time.Minute)
	var body map[string]any
	assert.Equal(t, http.StatusUnauthorized, h.call(http.MethodGet, "/api/profile/", token, nil, &body))
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	var errs map[string][]string
	status := h.call(http.MethodPost, "/api/register/", "", map[string]string{
		"username": "supervisor", "email": "x", "password": "longenough", "password2": "different",
	}, &errs)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	var user models.User
	status = h.call(http.MethodPost, "/api/register/", "", map[string]string{
		"username": "casey", "email": "casey@example.com", "password": "longenough", "password2": "longenough",
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.RoleWorker, user.Role)
	h.login("casey", "longenough")
}

func TestProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	sup := h.login(SupervisorUsername, SupervisorPassword)
	worker := h.login(WorkerUsername, WorkerPassword)

	t.Run("workers cannot create projects", func(t *testing.T) {
		var body map[string]any
		status := h.call(http.MethodPost, "/api/projects/", worker, map[string]any{"title": "x"}, &body)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Only supervisors can create projects.", body["detail"])
	})

	t.Run("validation errors are per field", func(t *testing.T) {
		var errs map[string][]string
		status := h.call(http.MethodPost, "/api/projects/", sup, map[string]any{
			"title": "", "start_date": "2025-06-01", "end_date": "2025-01-01",
		}, &errs)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, errs, "title")
		assert.Equal(t, []string{"End date must be after start date."}, errs["end_date"])
	})

	p := h.createProject(sup)
	assert.Equal(t, models.Amount(500000), p.Budget)
	assert.Equal(t, SupervisorUsername, p.Supervisor.Username)

	t.Run("hidden from unassigned workers", func(t *testing.T) {
		var list []models.Project
		require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/projects/", worker, nil, &list))
		assert.Empty(t, list)
		var body map[string]any
		assert.Equal(t, http.StatusNotFound, h.call(http.MethodGet, "/api/projects/"+itoa(p.ID)+"/", worker, nil, &body))
	})

	t.Run("patch by supervisor", func(t *testing.T) {
		var updated models.Project
		status := h.call(http.MethodPatch, "/api/projects/"+itoa(p.ID)+"/", sup, map[string]any{"budget": "250000"}, &updated)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, models.Amount(250000), updated.Budget)
		assert.Equal(t, "Metro Bridge", updated.Title)
	})

	t.Run("add and remove worker", func(t *testing.T) {
		var body map[string]any
		status := h.call(http.MethodPost, "/api/projects/"+itoa(p.ID)+"/add_worker/", sup, map[string]string{"email": "nobody@example.com"}, &body)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "No worker found with this email", body["detail"])

		var pw models.ProjectWorker
		status = h.call(http.MethodPost, "/api/projects/"+itoa(p.ID)+"/add_worker/", sup, map[string]string{"email": WorkerEmail, "role_description": "Rigger"}, &pw)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Rigger", pw.RoleDescription)

		status = h.call(http.MethodPost, "/api/projects/"+itoa(p.ID)+"/add_worker/", sup, map[string]string{"email": WorkerEmail}, &body)
		assert.Equal(t, http.StatusBadRequest, status)

		var detail models.Project
		require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/projects/"+itoa(p.ID)+"/", worker, nil, &detail))
		assert.Equal(t, 1, detail.CurrentWorkerCount)
		assert.Len(t, detail.Workers, 1)

		status = h.call(http.MethodPatch, "/api/projects/"+itoa(p.ID)+"/", worker, map[string]any{"title": "mine"}, &body)
		assert.Equal(t, http.StatusForbidden, status)

		assert.Equal(t, http.StatusNoContent, h.call(http.MethodDelete, "/api/project-workers/"+itoa(pw.ID)+"/", sup, nil, nil))
		var workers []models.ProjectWorker
		require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/project-workers/?project_id="+itoa(p.ID), sup, nil, &workers))
		assert.Empty(t, workers)
	})
}

func TestSubResources(t *testing.T) {
	h := newHarness(t)
	sup := h.login(SupervisorUsername, SupervisorPassword)
	p := h.createProject(sup)
	pid := itoa(p.ID)

	var supplier models.Supplier
	require.Equal(t, http.StatusCreated, h.call(http.MethodPost, "/api/project-suppliers/", sup, map[string]any{
		"project": p.ID, "name": "Steel Co", "materials_provided": "Rebar",
	}, &supplier))
	assert.Equal(t, models.Amount(80), supplier.ReliabilityScore)
	assert.Equal(t, 7, supplier.LeadTimeDays)

	var risk models.Risk
	require.Equal(t, http.StatusCreated, h.call(http.MethodPost, "/api/project-risks/", sup, map[string]any{
		"project": p.ID, "title": "Flooding", "description": "River bank",
	}, &risk))
	assert.Equal(t, models.RiskMedium, risk.RiskLevel)
	assert.Equal(t, "other", risk.RiskCategory)
	assert.Equal(t, 5, risk.Impact)

	for _, ev := range []map[string]any{
		{"project": p.ID, "title": "Deck", "start_date": "2025-04-01", "end_date": "2025-05-01"},
		{"project": p.ID, "title": "Piles", "start_date": "2025-01-10", "end_date": "2025-02-01", "is_milestone": true},
	} {
		require.Equal(t, http.StatusCreated, h.call(http.MethodPost, "/api/project-timeline/", sup, ev, nil))
	}
	var events []models.TimelineEvent
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/project-timeline/?project_id="+pid, sup, nil, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "Piles", events[0].Title)

	var patched models.TimelineEvent
	require.Equal(t, http.StatusOK, h.call(http.MethodPatch, "/api/project-timeline/"+itoa(events[1].ID)+"/", sup, map[string]any{"completion_percentage": 40}, &patched))
	assert.Equal(t, 40, patched.CompletionPercentage)

	var errs map[string][]string
	assert.Equal(t, http.StatusBadRequest, h.call(http.MethodPost, "/api/project-suppliers/", sup, map[string]any{"name": "x"}, &errs))
	assert.Contains(t, errs, "project")
}

func TestChat(t *testing.T) {
	h := newHarness(t)
	sup := h.login(SupervisorUsername, SupervisorPassword)
	p := h.createProject(sup)

	var rooms []models.ChatRoom
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/chat-rooms/", sup, nil, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, p.ID, rooms[0].Project)
	room := itoa(rooms[0].ID)

	var msg models.Message
	require.Equal(t, http.StatusCreated, h.call(http.MethodPost, "/api/messages/", sup, map[string]any{
		"chat_room_id": rooms[0].ID, "content": "Concrete poured", "is_update": true,
	}, &msg))
	assert.True(t, msg.IsUpdate)

	var msgs []models.Message
	require.Equal(t, http.StatusOK, h.call(http.MethodGet, "/api/messages/?chat_room_id="+room, sup, nil, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Concrete poured", msgs[0].Content)

	worker := h.login(WorkerUsername, WorkerPassword)
	var body map[string]any
	assert.Equal(t, http.StatusNotFound, h.call(http.MethodGet, "/api/messages/?chat_room_id="+room, worker, nil, &body))
}

func itoa(n int) string { return strconv.Itoa(n) }

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/internal/cli"
	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
	th "github.com/buildtrack/buildtrack-terminal/pkg/tui/testhelpers"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// harness runs commands against a demo server with its own config and
// data directory
type harness struct {
	t      *testing.T
	env    *th.TestEnvironment
	config string
	stdin  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := th.NewTestEnvironment(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "buildtrack.yaml")
	content := fmt.Sprintf("api_url: %s\ndata_dir: %s\nlog_level: debug\n", env.Server.URL, dir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &harness{t: t, env: env, config: path}
}

// run executes one command line, returning command output and status
// messages separately
func (h *harness) run(args ...string) (out, msgs string, err error) {
	h.t.Helper()
	var stdout, messages bytes.Buffer
	restore := cli.SetStreams(strings.NewReader(h.stdin), &messages, &messages)
	defer restore()
	h.stdin = ""

	root := NewRootCommand("1.2.3")
	root.SetOut(&stdout)
	root.SetErr(&messages)
	root.SetArgs(append([]string{"--config", h.config, "--no-color"}, args...))
	err = root.ExecuteContext(h.t.Context())
	return stdout.String(), messages.String(), err
}

func (h *harness) mustRun(args ...string) (string, string) {
	h.t.Helper()
	out, msgs, err := h.run(args...)
	require.NoError(h.t, err, "buildtrack %s\n%s", strings.Join(args, " "), msgs)
	return out, msgs
}

func (h *harness) loginSupervisor() {
	h.t.Helper()
	h.mustRun("login", "-u", demoapi.SupervisorUsername, "-p", demoapi.SupervisorPassword)
}

func (h *harness) createProject(title string) {
	h.t.Helper()
	h.mustRun("project", "create",
		"--set", "title="+title,
		"--set", "location=Riverside",
		"--set", "start_date=2025-04-01",
		"--set", "end_date=2025-12-15",
		"--set", "budget=500000",
	)
}

// flat collapses whitespace so wrapped text can be matched
func flat(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	out, _ := h.mustRun("version")
	assert.Equal(t, "buildtrack version 1.2.3\n", out)

	out, _ = h.mustRun("version", "-o", "json")
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "1.2.3", v["version"])
}

func TestInvalidOutputFormat(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("version", "-o", "xml")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "nested", ".buildtrack.yaml")

	_, msgs := h.mustRun("init", "--path", path)
	assert.Contains(t, msgs, "OK: Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_url:")

	_, _, err = h.run("init", "--path", path)
	assert.ErrorContains(t, err, "config file already exists")

	h.mustRun("init", "--path", path, "--force")
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("whoami")
	assert.ErrorIs(t, err, cli.ErrNotSignedIn)

	_, _, err = h.run("login", "-u", "supervisor", "-p", "wrong")
	assert.ErrorContains(t, err, "No active account found with the given credentials")

	// missing credentials are prompted for
	h.stdin = "supervisor\nsupervisor123\n"
	_, msgs := h.mustRun("login")
	assert.Contains(t, msgs, "Username")
	assert.Contains(t, msgs, "OK: Signed in as Sam Site (supervisor)")

	out, _ := h.mustRun("whoami")
	assert.Contains(t, out, "Sam Site")
	assert.Contains(t, out, "Supervisor")
	assert.Contains(t, out, h.env.Server.URL)

	_, msgs = h.mustRun("logout")
	assert.Contains(t, msgs, "OK: Signed out")
	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, cli.ErrNotSignedIn)
}

func TestSignup(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("signup", "-u", "jordan", "-p", "s3cretpass", "--email", "not-an-email")
	assert.Error(t, err)

	_, msgs := h.mustRun("signup", "-u", "jordan", "-p", "s3cretpass",
		"--email", "jordan@example.com", "--first-name", "Jordan", "--last-name", "Lee", "--role", "supervisor")
	assert.Contains(t, msgs, "Signed in as Jordan Lee (supervisor)")

	_, _, err = h.run("signup", "-u", "jordan", "-p", "s3cretpass", "--email", "jordan@example.com")
	require.Error(t, err)
}

func TestProjectCreateAndList(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()

	_, _, err := h.run("project", "create")
	assert.ErrorContains(t, err, "nothing to create")

	// sections are checked in order
	_, _, err = h.run("project", "create", "--set", "title=Harbor Wall", "--set", "start_date=2025-04-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Timeline is incomplete:")
	assert.Contains(t, err.Error(), "end_date")

	_, _, err = h.run("project", "create", "--set", "colour=red")
	assert.ErrorContains(t, err, "colour")

	_, msgs := h.mustRun("project", "create",
		"--set", "title=Metro Bridge",
		"--set", "start_date=2025-04-01",
		"--set", "end_date=2025-12-15",
	)
	assert.Contains(t, msgs, "Created project")
	assert.Contains(t, msgs, "Metro Bridge")
	h.createProject("Harbor Wall")

	out, _ := h.mustRun("projects")
	assert.Contains(t, out, "Metro Bridge")
	assert.Contains(t, out, "Harbor Wall")

	out, _ = h.mustRun("ls", "--search", "harbor")
	assert.NotContains(t, out, "Metro Bridge")
	assert.Contains(t, out, "Harbor Wall")

	_, msgs = h.mustRun("projects", "--status", models.StatusCompleted)
	assert.Contains(t, msgs, "No projects found")

	_, _, err = h.run("projects", "--status", "done")
	assert.ErrorContains(t, err, "invalid status: done")

	out, _ = h.mustRun("projects", "-o", "json")
	var projects []models.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, 2)
}

func TestProjectCreateRequiresSupervisor(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "-u", demoapi.WorkerUsername, "-p", demoapi.WorkerPassword)

	_, _, err := h.run("project", "create", "--set", "title=Metro Bridge")
	assert.ErrorContains(t, err, "only supervisors can create projects")
}

func TestProjectShowAndUpdate(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	out, _ := h.mustRun("project", "show", "metro")
	assert.Contains(t, out, "Metro Bridge [Planning]")
	assert.Contains(t, out, "Location: Riverside")
	assert.NotContains(t, out, "Timeline (")

	out, _ = h.mustRun("project", "show", "metro", "--resources")
	assert.Contains(t, out, "Timeline (0)")
	assert.Contains(t, out, "Risks (0)")

	_, msgs := h.mustRun("project", "update", "metro", "--set", "status=in_progress", "--set", "current_spending=182000")
	assert.Contains(t, msgs, "OK: Updated Metro Bridge (status, current_spending)")

	// values equal to the stored ones are not a change
	_, msgs = h.mustRun("project", "update", "metro", "--set", "status=in_progress")
	assert.Contains(t, msgs, "No changes to save")

	_, _, err := h.run("project", "update", "metro", "--set", "status=finished")
	assert.Error(t, err)

	out, _ = h.mustRun("project", "show", "metro", "-o", "yaml")
	assert.Contains(t, out, "status: in_progress")

	_, _, err = h.run("project", "show", "airport")
	assert.ErrorContains(t, err, "no project found matching 'airport'")
}

func TestProjectUpdatePlace(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	_, _, err := h.run("project", "update", "metro", "--place", "Riverside@north,-0.12")
	assert.ErrorContains(t, err, "latitude must be a number")

	_, msgs := h.mustRun("project", "update", "metro", "--place", "Riverside North@51.5,-0.12")
	assert.Contains(t, msgs, "Updated Metro Bridge (location, latitude, longitude)")

	out, _ := h.mustRun("project", "show", "metro", "-o", "json")
	var p models.Project
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Riverside North", p.Location)
	require.NotNil(t, p.Latitude)
	require.NotNil(t, p.Longitude)
	assert.InDelta(t, 51.5, *p.Latitude, 1e-9)
	assert.InDelta(t, -0.12, *p.Longitude, 1e-9)

	// a place without coordinates clears them
	_, msgs = h.mustRun("project", "update", "metro", "--place", "Riverside North")
	assert.Contains(t, msgs, "Updated Metro Bridge (latitude, longitude)")
}

func TestProjectUpdateWithEditor(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	// the "editor" rewrites the title line in place
	script := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsed -i 's/^title: .*/title: \"Metro Bridge North\"/' \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", script)

	_, msgs := h.mustRun("project", "update", "metro", "--edit")
	assert.Contains(t, msgs, "Updated Metro Bridge North (title)")
}

func TestWorkerAddListRemove(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	_, msgs := h.mustRun("worker", "list", "metro")
	assert.Contains(t, msgs, "No workers assigned to Metro Bridge")

	_, _, err := h.run("worker", "add", "metro", "nobody")
	assert.Error(t, err)

	_, msgs = h.mustRun("worker", "add", "metro", demoapi.WorkerEmail, "--role", "Rigger")
	assert.Contains(t, msgs, "Assigned "+demoapi.WorkerEmail+" to Metro Bridge")

	out, _ := h.mustRun("workers", "list", "metro")
	assert.Contains(t, out, "Wren Walker")
	assert.Contains(t, out, "Rigger")

	_, _, err = h.run("worker", "rm", "metro", "someone")
	assert.ErrorContains(t, err, "no worker 'someone' on Metro Bridge")

	h.stdin = "n\n"
	_, msgs = h.mustRun("worker", "remove", "metro", "worker")
	assert.Contains(t, msgs, "Remove Wren Walker from Metro Bridge?")
	assert.Contains(t, msgs, "Cancelled")

	_, msgs = h.mustRun("worker", "remove", "metro", demoapi.WorkerEmail, "--yes")
	assert.Contains(t, msgs, "OK: Removed Wren Walker from Metro Bridge")

	_, msgs = h.mustRun("worker", "list", "metro")
	assert.Contains(t, msgs, "No workers assigned")
}

func TestClipboard(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	var copied string
	prev := copyText
	t.Cleanup(func() { copyText = prev })
	copyText = func(s string) error {
		copied = s
		return nil
	}

	out, msgs := h.mustRun("clip", "metro", "--print")
	assert.Contains(t, msgs, "Copied Metro Bridge to clipboard")
	assert.Contains(t, copied, "Metro Bridge [Planning]")
	assert.Contains(t, copied, "Supervisor: Sam Site")
	assert.Equal(t, copied, out)

	copyText = func(string) error { return errors.New("no display") }
	_, _, err := h.run("clipboard", "metro")
	assert.ErrorContains(t, err, "failed to copy to clipboard: no display")
}

func TestAsk(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	out, _ := h.mustRun("ask", "metro")
	assert.Contains(t, out, "Questions the Metro Bridge assistant can answer:")
	assert.Contains(t, out, "Has the cement arrived?")

	out, _ = h.mustRun("ask", "metro", "Has", "the", "cement", "arrived?")
	assert.Contains(t, flat(out), "the cement delivery for Metro Bridge arrived")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), answerWidth)
	}

	out, _ = h.mustRun("ask", "metro", "Has the cement arrived?", "-o", "json")
	var answer map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "Has the cement arrived?", answer["question"])
	assert.Equal(t, "Metro Bridge", answer["project"])
}

func TestChat(t *testing.T) {
	h := newHarness(t)
	h.loginSupervisor()
	h.createProject("Metro Bridge")

	_, msgs := h.mustRun("chat", "metro")
	assert.Contains(t, msgs, "No messages yet")

	_, _, err := h.run("chat", "metro", "--update")
	assert.ErrorContains(t, err, "--update needs --post")

	out, msgs := h.mustRun("chat", "metro", "--post", "Morning all")
	assert.Contains(t, msgs, "Posted to Metro Bridge")
	assert.Contains(t, out, "Sam Site")
	assert.Contains(t, out, "  Morning all")
	assert.NotContains(t, out, "[update]")

	out, _ = h.mustRun("chat", "metro", "--post", "Deck pour complete", "--update")
	assert.Contains(t, out, "[update]")

	out, _ = h.mustRun("chat", "metro", "--updates")
	assert.Contains(t, out, "Deck pour complete")
	assert.NotContains(t, out, "Morning all")

	out, _ = h.mustRun("chat", "metro", "-n", "1")
	assert.Contains(t, out, "Deck pour complete")
	assert.NotContains(t, out, "Morning all")

	out, _ = h.mustRun("chat", "metro", "-o", "json")
	var messages []models.Message
	require.NoError(t, json.Unmarshal([]byte(out), &messages))
	require.Len(t, messages, 2)
	assert.True(t, messages[1].IsUpdate)
}

func TestFilterProjects(t *testing.T) {
	projects := []models.Project{
		{Title: "Metro Bridge", Location: "Riverside", Status: models.StatusPlanning},
		{Title: "Harbor Wall", Location: "Docklands", Status: models.StatusInProgress},
		{Title: "Airport Link", Location: "Riverside", Status: models.StatusInProgress},
	}
	tests := []struct {
		status string
		search string
		want   []string
	}{
		{"", "", []string{"Metro Bridge", "Harbor Wall", "Airport Link"}},
		{models.StatusInProgress, "", []string{"Harbor Wall", "Airport Link"}},
		{"", "RIVERSIDE", []string{"Metro Bridge", "Airport Link"}},
		{models.StatusInProgress, "river", []string{"Airport Link"}},
		{models.StatusCompleted, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.search, func(t *testing.T) {
			var got []string
			for _, p := range filterProjects(projects, tt.status, tt.search) {
				got = append(got, p.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindWorker(t *testing.T) {
	workers := []models.ProjectWorker{
		{ID: 7, Worker: &models.User{Username: "wren", Email: "wren@example.com"}},
		{ID: 9},
	}
	tests := []struct {
		ref    string
		wantID int
		found  bool
	}{
		{"7", 7, true},
		{"9", 9, true},
		{"WREN", 7, true},
		{"wren@example.com", 7, true},
		{"nobody", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			w, ok := findWorker(workers, tt.ref)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, w.ID)
		})
	}
}

func TestMessageTime(t *testing.T) {
	assert.Equal(t, "yesterday", messageTime("yesterday"))
	assert.NotEqual(t, "2025-03-04T09:30:00Z", messageTime("2025-03-04T09:30:00Z"))
}

package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
	th "github.com/buildtrack/buildtrack-terminal/pkg/tui/testhelpers"
)

func newList(t *testing.T, env *th.TestEnvironment, user *models.User, clip *fakeClipboard) *ProjectListModel {
	t.Helper()
	opts := testOptions(env, clip)
	m := NewProjectListModel(&opts, user)
	m.SetSize(120, 30)
	th.Settle(m, projectsLoadedMsgFrom(m), th.DefaultWait, 1)
	return m
}

// projectsLoadedMsgFrom runs the initial load synchronously
func projectsLoadedMsgFrom(m *ProjectListModel) tea.Msg {
	msgs := th.Run(m.Init(), th.DefaultWait)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[0]
}

func TestProjectList_LoadsAndNavigates(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginSupervisor()
	env.CreateProject("Metro Bridge")
	second := env.CreateProject("Harbor Wall")

	m := newList(t, env, user, &fakeClipboard{})
	require.Len(t, m.projects, 2)
	assert.False(t, m.loading)

	view := m.View()
	assert.Contains(t, view, "Metro Bridge")
	assert.Contains(t, view, "Harbor Wall")
	assert.Contains(t, view, "n new")

	// newest first
	msgs := th.Run(m.Update(th.Key("enter")), th.DefaultWait)
	sw, ok := th.Find[SwitchViewMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, projectDetailView, sw.view)
	assert.Equal(t, second.ID, sw.projectID)

	m.Update(th.Key("down"))
	m.Update(th.Key("down"))
	assert.Equal(t, 1, m.cursor)
}

func TestProjectList_CreateRequiresSupervisor(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginWorker()
	m := newList(t, env, user, &fakeClipboard{})

	assert.Contains(t, m.View(), "No projects yet.")
	assert.NotContains(t, m.View(), "n new")

	msgs := th.Run(m.Update(th.Key("n")), th.DefaultWait)
	status, ok := th.Find[StatusMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "Only supervisors can create projects", string(status))
	_, switched := th.Find[SwitchViewMsg](msgs)
	assert.False(t, switched)
}

func TestProjectList_StatusFilter(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginSupervisor()
	env.CreateProject("Metro Bridge")
	m := newList(t, env, user, &fakeClipboard{})

	tests := []struct {
		filter  string
		visible int
	}{
		{models.StatusPlanning, 1},
		{models.StatusInProgress, 0},
		{models.StatusCompleted, 0},
		{models.StatusOnHold, 0},
		{"", 1},
	}
	for _, tt := range tests {
		m.Update(th.Key("s"))
		assert.Equal(t, tt.filter, m.filter)
		assert.Len(t, m.visible(), tt.visible, "filter %q", tt.filter)
	}
}

func TestProjectList_CopySummary(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginSupervisor()
	env.CreateProject("Metro Bridge")

	clip := &fakeClipboard{}
	m := newList(t, env, user, clip)
	msgs := th.Run(m.Update(th.Key("y")), th.DefaultWait)
	status, _ := th.Find[StatusMsg](msgs)
	assert.Equal(t, "Copied Metro Bridge to clipboard", string(status))
	assert.Contains(t, clip.Text(), "Metro Bridge [Planning]")
	assert.Contains(t, clip.Text(), "Riverside")

	clip.err = errors.New("no clipboard")
	msgs = th.Run(m.Update(th.Key("y")), th.DefaultWait)
	status, _ = th.Find[StatusMsg](msgs)
	assert.Equal(t, "Failed to copy: no clipboard", string(status))
}

func TestProjectList_Logout(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginWorker()
	m := newList(t, env, user, &fakeClipboard{})

	msgs := th.Run(m.Update(th.Key("L")), th.DefaultWait)
	sw, ok := th.Find[SwitchViewMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, loginView, sw.view)

	cached, err := env.Session.User()
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestProjectList_LoadFailureSignsOut(t *testing.T) {
	env := th.NewTestEnvironment(t)
	m := newList(t, env, nil, &fakeClipboard{})
	// nothing loaded without a session
	assert.Empty(t, m.projects)

	msgs := th.Run(m.Update(projectsLoadedMsg{err: errors.New("boom")}), th.DefaultWait)
	status, _ := th.Find[StatusMsg](msgs)
	assert.Equal(t, "Something went wrong. Please try again.", string(status))
}

func TestNextStatusFilter(t *testing.T) {
	assert.Equal(t, models.StatusPlanning, nextStatusFilter(""))
	assert.Equal(t, models.StatusInProgress, nextStatusFilter(models.StatusPlanning))
	assert.Equal(t, "", nextStatusFilter(models.StatusOnHold))
	assert.Equal(t, "", nextStatusFilter("bogus"))
}

func TestProjectList_Search(t *testing.T) {
	env := th.NewTestEnvironment(t)
	user := env.LoginSupervisor()
	env.CreateProject("Metro Bridge")
	env.CreateProject("Harbor Wall")
	m := newList(t, env, user, &fakeClipboard{})

	m.Update(th.Key("/"))
	require.True(t, m.search.Active())
	for _, k := range th.Type("harbor") {
		m.Update(k)
	}
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Harbor Wall", m.visible()[0].Title)

	// letters go to the query while searching
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "", m.filter)

	m.Update(th.Key("enter"))
	assert.False(t, m.search.Active())
	assert.Len(t, m.visible(), 1)

	// location matches too
	m.search.SetValue("riverside")
	assert.Len(t, m.visible(), 2)

	m.search.SetValue("nowhere")
	assert.Empty(t, m.visible())
	assert.Contains(t, m.View(), "No projects match.")

	// esc clears the query before it quits
	msgs := th.Run(m.Update(th.Key("esc")), th.DefaultWait)
	_, quit := th.Find[tea.QuitMsg](msgs)
	assert.False(t, quit)
	assert.Len(t, m.visible(), 2)
}

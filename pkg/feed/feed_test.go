package feed

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/auth"
	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type memorySource struct {
	mu    sync.Mutex
	msgs  []models.Message
	err   error
	calls int
}

func (m *memorySource) Messages(_ context.Context, roomID int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Message(nil), m.msgs...), nil
}

func (m *memorySource) SendMessage(_ context.Context, roomID int, content string, isUpdate bool) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := models.Message{ID: len(m.msgs) + 1, ChatRoom: roomID, Content: content, IsUpdate: isUpdate}
	m.msgs = append(m.msgs, msg)
	return &msg, nil
}

func TestUpdatesAndSince(t *testing.T) {
	msgs := []models.Message{
		{ID: 1, Content: "hi"},
		{ID: 2, Content: "poured slab", IsUpdate: true},
		{ID: 3, Content: "ok"},
		{ID: 4, Content: "crane down", IsUpdate: true},
	}
	updates := Updates(msgs)
	require.Len(t, updates, 2)
	assert.Equal(t, "poured slab", updates[0].Content)
	assert.Equal(t, "crane down", updates[1].Content)

	assert.Len(t, Since(msgs, 0), 4)
	assert.Len(t, Since(msgs, 2), 2)
	assert.Empty(t, Since(msgs, 4))
	assert.Empty(t, Updates(nil))
}

func TestPoller_FetchReportsOnlyNew(t *testing.T) {
	src := &memorySource{}
	p := NewPoller(src, 7, time.Second, nil)
	ctx := context.Background()

	b := p.Fetch(ctx)
	require.NoError(t, b.Err)
	assert.Empty(t, b.New)

	_, _ = src.SendMessage(ctx, 7, "one", false)
	_, _ = src.SendMessage(ctx, 7, "two", true)
	b = p.Fetch(ctx)
	assert.Len(t, b.New, 2)
	assert.Len(t, b.Messages, 2)

	b = p.Fetch(ctx)
	assert.Empty(t, b.New)
	assert.Len(t, b.Messages, 2)
}

func TestPoller_FetchErrorKeepsLastMessages(t *testing.T) {
	src := &memorySource{}
	p := NewPoller(src, 7, time.Second, nil)
	ctx := context.Background()
	_, _ = src.SendMessage(ctx, 7, "one", false)
	require.NoError(t, p.Fetch(ctx).Err)

	src.err = errors.New("boom")
	b := p.Fetch(ctx)
	assert.EqualError(t, b.Err, "boom")
	assert.Len(t, b.Messages, 1)
}

func TestPoller_Send(t *testing.T) {
	src := &memorySource{}
	p := NewPoller(src, 7, time.Second, nil)

	b := p.Send(context.Background(), "  ", false)
	assert.ErrorIs(t, b.Err, ErrEmptyMessage)
	assert.Zero(t, src.calls)

	b = p.Send(context.Background(), "Slab poured", true)
	require.NoError(t, b.Err)
	require.Len(t, b.Messages, 1)
	assert.True(t, b.Messages[0].IsUpdate)
	assert.Equal(t, 1, src.calls)
}

func TestPoller_Run(t *testing.T) {
	src := &memorySource{}
	p := NewPoller(src, 7, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var batches int
	err := p.Run(ctx, func(Batch) {
		batches++
		if batches == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, batches)
}

func TestPoller_Cmds(t *testing.T) {
	src := &memorySource{}
	p := NewPoller(src, 7, time.Millisecond, nil)

	msg := p.SendCmd("hello", false, time.Second)()
	batch, ok := msg.(BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch.Messages, 1)

	msg = p.FetchCmd(time.Second)()
	batch, ok = msg.(BatchMsg)
	require.True(t, ok)
	assert.Empty(t, batch.New)

	tick, ok := p.Tick()().(TickMsg)
	require.True(t, ok)
	assert.Equal(t, 7, tick.Room)
}

func TestFromSession(t *testing.T) {
	srv := httptest.NewServer(demoapi.New().Handler())
	defer srv.Close()
	ctx := context.Background()

	session := auth.NewSession(api.New(srv.URL), auth.NewStore(filepath.Join(t.TempDir(), "auth")))
	_, err := session.Login(ctx, demoapi.SupervisorUsername, demoapi.SupervisorPassword)
	require.NoError(t, err)
	c, err := session.Client(ctx)
	require.NoError(t, err)

	_, err = c.CreateProject(ctx, map[string]any{"title": "Tower", "start_date": "2025-01-01", "end_date": "2025-03-01", "status": "planning"})
	require.NoError(t, err)
	rooms, err := c.ChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	p := NewPoller(FromSession(session), rooms[0].ID, time.Second, nil)
	b := p.Send(ctx, "Morning all", false)
	require.NoError(t, b.Err)
	require.Len(t, b.New, 1)
	assert.Equal(t, "Morning all", b.New[0].Content)
	assert.Equal(t, demoapi.SupervisorUsername, b.New[0].Sender.Username)
}

// Package feed keeps a project's chat room and updates in sync with the
// server by polling.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildtrack/buildtrack-terminal/pkg/auth"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

var ErrEmptyMessage = errors.New("message is empty")

// Source reads and writes chat messages
type Source interface {
	Messages(ctx context.Context, roomID int) ([]models.Message, error)
	SendMessage(ctx context.Context, roomID int, content string, isUpdate bool) (*models.Message, error)
}

// sessionSource resolves a freshly authenticated client per call
type sessionSource struct {
	session *auth.Session
}

// FromSession returns a Source that refreshes tokens as needed
func FromSession(s *auth.Session) Source {
	return sessionSource{session: s}
}

func (s sessionSource) Messages(ctx context.Context, roomID int) ([]models.Message, error) {
	c, err := s.session.Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Messages(ctx, roomID)
}

func (s sessionSource) SendMessage(ctx context.Context, roomID int, content string, isUpdate bool) (*models.Message, error) {
	c, err := s.session.Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(ctx, roomID, content, isUpdate)
}

// Batch is the result of one fetch
type Batch struct {
	Room     int
	Messages []models.Message
	// New holds messages not seen by an earlier fetch
	New []models.Message
	Err error
}

// Poller fetches one room's messages at a fixed interval
type Poller struct {
	src      Source
	room     int
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	messages []models.Message
	lastID   int
}

// NewPoller returns a poller for room
func NewPoller(src Source, room int, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{src: src, room: room, interval: interval, logger: logger}
}

// Room returns the chat room id
func (p *Poller) Room() int { return p.room }

// Fetch reloads the room
func (p *Poller) Fetch(ctx context.Context) Batch {
	msgs, err := p.src.Messages(ctx, p.room)
	if err != nil {
		p.logger.Warn("fetching messages failed", "room", p.room, "error", err)
		return Batch{Room: p.room, Messages: p.Messages(), Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fresh := Since(msgs, p.lastID)
	p.messages = msgs
	for _, m := range fresh {
		p.lastID = max(p.lastID, m.ID)
	}
	if len(fresh) > 0 {
		p.logger.Debug("new messages", "room", p.room, "count", len(fresh))
	}
	return Batch{Room: p.room, Messages: append([]models.Message(nil), msgs...), New: fresh}
}

// Send posts a message and refetches so the caller sees it in order
func (p *Poller) Send(ctx context.Context, content string, isUpdate bool) Batch {
	content = strings.TrimSpace(content)
	if content == "" {
		return Batch{Room: p.room, Messages: p.Messages(), Err: ErrEmptyMessage}
	}
	if _, err := p.src.SendMessage(ctx, p.room, content, isUpdate); err != nil {
		p.logger.Warn("sending message failed", "room", p.room, "error", err)
		return Batch{Room: p.room, Messages: p.Messages(), Err: err}
	}
	return p.Fetch(ctx)
}

// Messages returns the last fetched messages
func (p *Poller) Messages() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Message(nil), p.messages...)
}

// Run fetches immediately and then every interval until ctx is done,
// handing each batch to fn
func (p *Poller) Run(ctx context.Context, fn func(Batch)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	fn(p.Fetch(ctx))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(p.Fetch(ctx))
		}
	}
}

// TickMsg asks the owner of a poller to fetch again
type TickMsg struct {
	Room int
}

// BatchMsg delivers a Batch to a bubbletea model
type BatchMsg Batch

// Tick schedules the next poll
func (p *Poller) Tick() tea.Cmd {
	room := p.room
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return TickMsg{Room: room}
	})
}

// FetchCmd fetches in the background
func (p *Poller) FetchCmd(timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return BatchMsg(p.Fetch(ctx))
	}
}

// SendCmd sends in the background
func (p *Poller) SendCmd(content string, isUpdate bool, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return BatchMsg(p.Send(ctx, content, isUpdate))
	}
}

// Updates keeps only project updates
func Updates(msgs []models.Message) []models.Message {
	var out []models.Message
	for _, m := range msgs {
		if m.IsUpdate {
			out = append(out, m)
		}
	}
	return out
}

// Since keeps messages with an id above lastID
func Since(msgs []models.Message, lastID int) []models.Message {
	var out []models.Message
	for _, m := range msgs {
		if m.ID > lastID {
			out = append(out, m)
		}
	}
	return out
}

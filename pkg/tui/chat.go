package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/buildtrack/buildtrack-terminal/pkg/chatbot"
	"github.com/buildtrack/buildtrack-terminal/pkg/feed"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// assistantReplyMsg delivers a bot reply once its typing delay has passed
type assistantReplyMsg struct {
	conv    *chatbot.Conversation
	pending chatbot.Pending
}

// ChatPane is a project's team chat with an assistant mode. Team messages
// are polled from the server; assistant replies are local.
type ChatPane struct {
	opts   *Options
	user   *models.User
	poller *feed.Poller

	viewport viewport.Model
	input    textinput.Model
	asUpdate bool

	assistant bool
	conv      *chatbot.Conversation

	sending  bool
	err      string
	lastPoll time.Time
	width    int
	height   int
}

func NewChatPane(opts *Options, user *models.User, room int, projectTitle string) *ChatPane {
	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.Prompt = "› "
	in.CharLimit = 2000

	vp := viewport.New(60, 10)

	return &ChatPane{
		opts:     opts,
		user:     user,
		poller:   feed.NewPoller(feed.FromSession(opts.Session), room, opts.PollInterval, opts.Logger),
		viewport: vp,
		input:    in,
		conv:     chatbot.NewConversation(chatbot.New(projectTitle, nil)),
		width:    60,
		height:   14,
	}
}

// Init fetches the room and starts polling
func (c *ChatPane) Init() tea.Cmd {
	c.lastPoll = time.Now()
	return tea.Batch(c.poller.FetchCmd(c.opts.RequestTimeout), c.poller.Tick())
}

func (c *ChatPane) Focus() tea.Cmd {
	return c.input.Focus()
}

func (c *ChatPane) Blur() {
	c.input.Blur()
}

func (c *ChatPane) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.input.Width = max(width-6, 10)
	c.viewport.Width = width
	c.viewport.Height = max(height-5, 3)
	c.refresh()
}

// Messages returns the last fetched team messages
func (c *ChatPane) Messages() []models.Message {
	return c.poller.Messages()
}

func (c *ChatPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case feed.TickMsg:
		if msg.Room != c.poller.Room() {
			return nil
		}
		// a second chain of ticks for the same room dies here
		if time.Since(c.lastPoll) < c.opts.PollInterval/2 {
			return nil
		}
		c.lastPoll = time.Now()
		return tea.Batch(c.poller.FetchCmd(c.opts.RequestTimeout), c.poller.Tick())

	case feed.BatchMsg:
		if msg.Room != c.poller.Room() {
			return nil
		}
		c.sending = false
		if msg.Err != nil {
			if errors.Is(msg.Err, feed.ErrEmptyMessage) {
				return nil
			}
			c.err = "Could not reach the chat. Retrying..."
			return nil
		}
		c.err = ""
		if !c.assistant {
			c.refresh()
		}
		return nil

	case assistantReplyMsg:
		if msg.conv != c.conv {
			return nil
		}
		c.conv.Deliver(msg.pending)
		if c.assistant {
			c.refresh()
		}
		return nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}
	return nil
}

func (c *ChatPane) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch {
	case key == "enter":
		return c.send()
	case Shortcuts.PostUpdate.Matches(key):
		if !c.assistant {
			c.asUpdate = !c.asUpdate
		}
		return nil
	case Shortcuts.Assistant.Matches(key):
		c.assistant = !c.assistant
		c.err = ""
		if c.assistant {
			c.input.Placeholder = "Ask the assistant about this project..."
		} else {
			c.input.Placeholder = "Type a message..."
		}
		c.refresh()
		return nil
	case key == "pgup" || key == "pgdown" || key == "ctrl+up" || key == "ctrl+down":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *ChatPane) send() tea.Cmd {
	text := strings.TrimSpace(c.input.Value())
	if text == "" {
		return nil
	}

	if c.assistant {
		pending, err := c.conv.Ask(text)
		if errors.Is(err, chatbot.ErrTyping) {
			c.err = "The assistant is still typing"
			return nil
		}
		if err != nil {
			return nil
		}
		c.input.Reset()
		c.err = ""
		c.refresh()
		conv := c.conv
		return tea.Tick(pending.Delay, func(time.Time) tea.Msg {
			return assistantReplyMsg{conv: conv, pending: pending}
		})
	}

	if c.sending {
		return nil
	}
	c.sending = true
	c.input.Reset()
	isUpdate := c.asUpdate
	c.asUpdate = false
	return c.poller.SendCmd(text, isUpdate, c.opts.RequestTimeout)
}

// refresh re-renders the transcript and scrolls to the newest message
func (c *ChatPane) refresh() {
	var content string
	if c.assistant {
		content = c.renderConversation()
	} else {
		content = c.renderMessages(c.poller.Messages(), "No messages yet. Say hello to the team.")
	}
	c.viewport.SetContent(content)
	c.viewport.GotoBottom()
}

func (c *ChatPane) bubbleWidth() int {
	return max(c.width*3/4, 20)
}

func (c *ChatPane) renderMessages(msgs []models.Message, empty string) string {
	if len(msgs) == 0 {
		return EmptyStyle.Render(empty)
	}
	var b strings.Builder
	for _, m := range msgs {
		own := c.user != nil && m.Sender != nil && m.Sender.ID == c.user.ID
		b.WriteString(c.renderMessage(m, own) + "\n")
	}
	return b.String()
}

func (c *ChatPane) renderMessage(m models.Message, own bool) string {
	name := "unknown"
	if m.Sender != nil {
		name = m.Sender.DisplayName()
	}
	header := LabelStyle.Render(name) + " " + DescriptionStyle.Render(shortTime(m.CreatedAt))
	if m.IsUpdate {
		header += " " + UpdateBadgeStyle.Render("UPDATE")
	}
	body := wordwrap.String(m.Content, c.bubbleWidth()-4)
	style := BotBubbleStyle
	if own {
		style = UserBubbleStyle
	}
	bubble := style.Render(header + "\n" + body)
	if own {
		return lipgloss.PlaceHorizontal(c.width, lipgloss.Right, bubble)
	}
	return bubble
}

func (c *ChatPane) renderConversation() string {
	var b strings.Builder
	for _, m := range c.conv.Messages() {
		body := wordwrap.String(m.Text, c.bubbleWidth()-4)
		if m.Sender == chatbot.SenderUser {
			bubble := UserBubbleStyle.Render(body)
			b.WriteString(lipgloss.PlaceHorizontal(c.width, lipgloss.Right, bubble) + "\n")
			continue
		}
		b.WriteString(BotBubbleStyle.Render(LabelStyle.Render("Assistant")+"\n"+body) + "\n")
	}
	if c.conv.Typing() {
		b.WriteString(EmptyStyle.Render("Assistant is typing...") + "\n")
	}
	return b.String()
}

// shortTime trims an RFC 3339 timestamp to date and minutes
func shortTime(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Local().Format("Jan 2 15:04")
	}
	return ts
}

func (c *ChatPane) View() string {
	var b strings.Builder
	mode := "Team chat"
	if c.assistant {
		mode = "Project assistant"
	}
	b.WriteString(SectionHeaderStyle.Render(mode) + "\n")
	b.WriteString(c.viewport.View() + "\n")

	switch {
	case c.err != "":
		b.WriteString(ErrorStyle.Render(c.err) + "\n")
	case c.sending:
		b.WriteString(DescriptionStyle.Render("sending...") + "\n")
	case c.asUpdate:
		b.WriteString(UpdateBadgeStyle.Render("posting as project update") + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString(c.input.View() + "\n")

	keys := []string{"enter send", GetShortcutHelp("assistant", Shortcuts.Assistant)}
	if !c.assistant {
		keys = append(keys, GetShortcutHelp("mark as update", Shortcuts.PostUpdate))
	}
	keys = append(keys, "pgup/pgdown scroll")
	b.WriteString(renderHelp(c.width, keys...))
	return b.String()
}

// UpdatesView lists only the messages posted as project updates
func (c *ChatPane) UpdatesView() string {
	updates := feed.Updates(c.poller.Messages())
	var b strings.Builder
	b.WriteString(SectionHeaderStyle.Render(fmt.Sprintf("Project updates (%d)", len(updates))) + "\n\n")
	b.WriteString(c.renderMessages(updates, "No updates posted yet. Mark a chat message with "+Shortcuts.PostUpdate.Get()+" to post one."))
	return b.String()
}

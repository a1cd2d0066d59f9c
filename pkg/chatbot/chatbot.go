// Package chatbot is the scripted project assistant shown in the chat tab.
// It answers from a fixed table and paces its replies like someone typing.
package chatbot

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	fillerMaxLen   = 150
	fillerSkipWith = "Based on my analysis"

	maxLengthDelay = 10 * time.Second
	perCharDelay   = 15 * time.Millisecond
	maxDelay       = 15 * time.Second
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrTyping        = errors.New("assistant is still answering")
)

// Bot answers questions about one project
type Bot struct {
	project string

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a bot for the named project. A nil rnd uses a random seed.
func New(project string, rnd *rand.Rand) *Bot {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if strings.TrimSpace(project) == "" {
		project = "this project"
	}
	return &Bot{project: project, rnd: rnd}
}

// Welcome is the first message of every conversation
func (b *Bot) Welcome() string {
	return b.fill(welcomeMessage)
}

// Respond looks the question up by exact match, then case-insensitive
// match, then substring in either direction, and falls back to a
// generic answer.
func (b *Bot) Respond(question string) string {
	for _, c := range canned {
		if c.question == question {
			return b.fill(c.answer)
		}
	}
	lower := strings.ToLower(question)
	for _, c := range canned {
		if strings.ToLower(c.question) == lower {
			return b.fill(c.answer)
		}
	}
	for _, c := range canned {
		if strings.Contains(question, c.question) || strings.Contains(c.question, question) {
			return b.fill(c.answer)
		}
	}
	return b.withFiller(b.fill(fallbackMessage))
}

// TypingDelay is how long the assistant "types" before a reply of n
// characters appears
func (b *Bot) TypingDelay(n int) time.Duration {
	b.mu.Lock()
	base := 2*time.Second + time.Duration(b.rnd.Float64()*float64(2*time.Second))
	jitter := time.Duration(b.rnd.Float64() * float64(2*time.Second))
	b.mu.Unlock()

	length := min(time.Duration(n)*perCharDelay, maxLengthDelay)
	return min(base+length+jitter, maxDelay)
}

// withFiller prefixes short answers with a random lead-in phrase
func (b *Bot) withFiller(text string) string {
	if len(text) >= fillerMaxLen || strings.Contains(text, fillerSkipWith) {
		return text
	}
	b.mu.Lock()
	phrase := fillerPhrases[b.rnd.IntN(len(fillerPhrases))]
	b.mu.Unlock()
	return phrase + " " + text
}

func (b *Bot) fill(text string) string {
	return strings.ReplaceAll(text, "{project}", b.project)
}

// Sender identifies who wrote a conversation message
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one entry in a conversation
type Message struct {
	ID     string
	Sender Sender
	Text   string
	At     time.Time
}

// Pending is a reply waiting out its typing delay
type Pending struct {
	Text  string
	Delay time.Duration
}

// Conversation is the running exchange with the bot. Only one question may
// be outstanding at a time.
type Conversation struct {
	bot *Bot
	now func() time.Time

	mu       sync.Mutex
	messages []Message
	typing   bool
}

// NewConversation starts a conversation with the welcome message
func NewConversation(bot *Bot) *Conversation {
	c := &Conversation{bot: bot, now: time.Now}
	c.messages = append(c.messages, Message{ID: "welcome", Sender: SenderBot, Text: bot.Welcome(), At: c.now()})
	return c
}

// Ask records the question and returns the reply to deliver after its delay
func (c *Conversation) Ask(question string) (Pending, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Pending{}, ErrEmptyQuestion
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing {
		return Pending{}, ErrTyping
	}
	c.messages = append(c.messages, c.message(SenderUser, question))
	c.typing = true

	reply := c.bot.Respond(question)
	return Pending{Text: reply, Delay: c.bot.TypingDelay(len(reply))}, nil
}

// Deliver appends a pending reply and ends the typing state
func (c *Conversation) Deliver(p Pending) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.message(SenderBot, p.Text)
	c.messages = append(c.messages, m)
	c.typing = false
	return m
}

// Typing reports whether a reply is outstanding
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Messages returns a copy of the conversation so far
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Conversation) message(sender Sender, text string) Message {
	return Message{ID: uuid.NewString(), Sender: sender, Text: text, At: c.now()}
}

package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// DefaultFailureMessage is shown when a failure carries no usable message
const DefaultFailureMessage = "Failed to save. Please try again."

// Entity is a created or updated record as returned by the collaborator
type Entity struct {
	ID     string
	Values Values
}

// Collaborator persists form payloads. The token is the caller's bearer
// credential.
type Collaborator interface {
	Create(ctx context.Context, token string, payload Values) (*Entity, error)
	Update(ctx context.Context, token, id string, payload Values) (*Entity, error)
}

// TokenSource supplies the authentication token. It is read-only from the
// form's point of view.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed TokenSource
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Mode selects the collaborator call
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// SubmitRequest is one submission. Values is the full record used for
// validation; Payload, when non-nil, is what gets sent instead.
type SubmitRequest struct {
	Mode    Mode
	ID      string
	Values  Values
	Payload Values
}

// SubmissionResult is the single retained outcome: an entity or an error
// message, never both.
type SubmissionResult struct {
	Entity      *Entity
	Err         string
	FieldErrors ValidationErrors
}

// Succeeded reports whether the last submission produced an entity
func (r SubmissionResult) Succeeded() bool { return r.Entity != nil }

// Gateway validates a snapshot and hands it to the collaborator. At most one
// submission may be pending at a time.
type Gateway struct {
	schema  *Schema
	collab  Collaborator
	tokens  TokenSource
	logger  *slog.Logger
	generic string

	mu     sync.Mutex
	busy   bool
	result SubmissionResult
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithFailureMessage overrides the generic failure text
func WithFailureMessage(msg string) GatewayOption {
	return func(g *Gateway) { g.generic = msg }
}

func NewGateway(schema *Schema, collab Collaborator, tokens TokenSource, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		schema:  schema,
		collab:  collab,
		tokens:  tokens,
		logger:  slog.New(slog.DiscardHandler),
		generic: DefaultFailureMessage,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Busy reports whether a submission is in flight
func (g *Gateway) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Result returns the last retained outcome
func (g *Gateway) Result() SubmissionResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Err returns the error slot
func (g *Gateway) Err() string {
	return g.Result().Err
}

// ClearError empties the error slot without touching a stored entity
func (g *Gateway) ClearError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.result.Err = ""
	g.result.FieldErrors = nil
}

// Submit validates req.Values and, when valid, calls the collaborator. A
// second call while one is pending fails with ErrSubmitInFlight and leaves
// the stored result alone.
func (g *Gateway) Submit(ctx context.Context, req SubmitRequest) (*Entity, error) {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if errs := Validate(g.schema, req.Values); len(errs) > 0 {
		serr := &SubmitError{Message: invalidMessage(g.schema, errs), Fields: errs, Err: errs}
		g.result = SubmissionResult{Err: serr.Message, FieldErrors: errs}
		g.mu.Unlock()
		return nil, serr
	}
	g.busy = true
	g.result.Err = ""
	g.result.FieldErrors = nil
	g.mu.Unlock()

	entity, err := g.call(ctx, req)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	if err != nil {
		msg, fields := UserMessage(err, g.generic)
		g.logger.Warn("form submission failed", "form", g.schema.Name, "mode", req.Mode.String(), "error", err)
		g.result = SubmissionResult{Err: msg, FieldErrors: fields}
		return nil, &SubmitError{Message: msg, Fields: fields, Err: err}
	}
	g.logger.Info("form submitted", "form", g.schema.Name, "mode", req.Mode.String(), "id", entity.ID)
	g.result = SubmissionResult{Entity: entity}
	return entity, nil
}

func (g *Gateway) call(ctx context.Context, req SubmitRequest) (*Entity, error) {
	token, err := g.token()
	if err != nil {
		return nil, err
	}

	payload := req.Payload
	if payload == nil {
		payload = req.Values
	}

	var entity *Entity
	switch req.Mode {
	case ModeUpdate:
		entity, err = g.collab.Update(ctx, token, req.ID, payload.Clone())
	default:
		entity, err = g.collab.Create(ctx, token, payload.Clone())
	}
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, errors.New("collaborator returned no entity")
	}
	return entity, nil
}

// token reads the bearer credential. Gateways built without a TokenSource
// submit anonymously. Token source errors pass through unchanged; only an
// empty token means the user is signed out.
func (g *Gateway) token() (string, error) {
	if g.tokens == nil {
		return "", nil
	}
	token, err := g.tokens.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotSignedIn
	}
	return token, nil
}

// UserMessage turns any submission error into the single message shown to
// the user plus the per-field messages that can be mapped onto the form.
func UserMessage(err error, fallback string) (string, ValidationErrors) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, ErrNotSignedIn) {
		return "You must be signed in to save.", nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again.", nil
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled.", nil
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return "Please fix the highlighted fields.", verrs
	}

	var detailed DetailedError
	if errors.As(err, &detailed) {
		fields := ValidationErrors{}
		for f, m := range detailed.FieldMessages() {
			fields[f] = m
		}
		if msg := strings.TrimSpace(detailed.DetailMessage()); msg != "" {
			return msg, fields
		}
		if len(fields) > 0 {
			first := fields.Fields()[0]
			return fmt.Sprintf("%s: %s", first, fields[first]), fields
		}
	}
	return fallback, nil
}

func invalidMessage(schema *Schema, errs ValidationErrors) string {
	labels := make([]string, 0, len(errs))
	for _, f := range errs.Fields() {
		if spec, ok := schema.Field(f); ok {
			labels = append(labels, spec.Label)
		} else {
			labels = append(labels, f)
		}
	}
	sort.Strings(labels)
	return "Please check: " + strings.Join(labels, ", ")
}

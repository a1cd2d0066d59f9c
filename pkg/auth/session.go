package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const refreshTimeout = 10 * time.Second

// Session ties the API client to the on-disk tokens
type Session struct {
	client *api.Client
	store  *Store
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

var _ form.TokenSource = (*Session)(nil)

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now when checking expiry
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session backed by store. client should carry no token.
func NewSession(client *api.Client, store *Store, opts ...SessionOption) *Session {
	s := &Session{
		client: client,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Base returns the unauthenticated client
func (s *Session) Base() *api.Client { return s.client }

// Login signs in, stores the tokens and caches the profile
func (s *Session) Login(ctx context.Context, username, password string) (*models.User, error) {
	pair, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(*pair); err != nil {
		return nil, err
	}
	user, err := s.client.WithToken(pair.Access).Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if err := s.store.SaveProfile(user); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "username", user.Username, "role", user.Role)
	return user, nil
}

// Register creates the account and signs in with it
func (s *Session) Register(ctx context.Context, r api.Registration) (*models.User, error) {
	if _, err := s.client.Register(ctx, r); err != nil {
		return nil, err
	}
	return s.Login(ctx, r.Username, r.Password)
}

// Logout forgets every stored token
func (s *Session) Logout() error {
	s.logger.Info("signed out")
	return s.store.Clear()
}

// User returns the cached profile, nil when signed out
func (s *Session) User() (*models.User, error) {
	return s.store.Profile()
}

// Profile fetches the signed-in user from the server and refreshes the cache
func (s *Session) Profile(ctx context.Context) (*models.User, error) {
	c, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	user, err := c.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveProfile(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Client returns an API client carrying a fresh access token
func (s *Session) Client(ctx context.Context) (*api.Client, error) {
	token, err := s.fresh(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.WithToken(token), nil
}

// Token returns a fresh access token
func (s *Session) Token() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	return s.fresh(ctx)
}

func (s *Session) fresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, err := s.store.Pair()
	if err != nil {
		return "", err
	}
	if pair.Access == "" {
		return "", form.ErrNotSignedIn
	}
	claims, err := ParseClaims(pair.Access)
	if err == nil && !claims.Expired(s.now()) {
		return pair.Access, nil
	}
	if pair.Refresh == "" {
		return "", form.ErrNotSignedIn
	}

	s.logger.Debug("refreshing access token")
	next, err := s.client.Refresh(ctx, pair.Refresh)
	if err != nil {
		if api.IsUnauthorized(err) {
			_ = s.store.Clear()
			return "", form.ErrNotSignedIn
		}
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	if err := s.store.Save(*next); err != nil {
		return "", err
	}
	return next.Access, nil
}

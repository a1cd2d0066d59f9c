package testhelpers

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/auth"
	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// TestEnvironment is a demo API server plus a session stored in a temp dir
type TestEnvironment struct {
	t       *testing.T
	Server  *httptest.Server
	Store   *auth.Store
	Session *auth.Session
}

// NewTestEnvironment starts a demo server; it is closed when the test ends
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	srv := httptest.NewServer(demoapi.New().Handler())
	t.Cleanup(srv.Close)

	store := auth.NewStore(filepath.Join(t.TempDir(), "auth"))
	return &TestEnvironment{
		t:       t,
		Server:  srv,
		Store:   store,
		Session: auth.NewSession(api.New(srv.URL), store),
	}
}

func (e *TestEnvironment) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// LoginSupervisor signs in as the seeded supervisor
func (e *TestEnvironment) LoginSupervisor() *models.User {
	e.t.Helper()
	return e.Login(demoapi.SupervisorUsername, demoapi.SupervisorPassword)
}

// LoginWorker signs in as the seeded worker
func (e *TestEnvironment) LoginWorker() *models.User {
	e.t.Helper()
	return e.Login(demoapi.WorkerUsername, demoapi.WorkerPassword)
}

func (e *TestEnvironment) Login(username, password string) *models.User {
	e.t.Helper()
	ctx, cancel := e.ctx()
	defer cancel()
	user, err := e.Session.Login(ctx, username, password)
	if err != nil {
		e.t.Fatalf("login %s: %v", username, err)
	}
	return user
}

// Client returns an authenticated client for the signed-in user
func (e *TestEnvironment) Client() *api.Client {
	e.t.Helper()
	ctx, cancel := e.ctx()
	defer cancel()
	c, err := e.Session.Client(ctx)
	if err != nil {
		e.t.Fatalf("client: %v", err)
	}
	return c
}

// Package demoapi is an in-memory implementation of the backend REST API,
// used by `buildtrack serve-demo` and by tests.
package demoapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Seeded demo accounts
const (
	SupervisorUsername = "supervisor"
	SupervisorPassword = "supervisor123"
	WorkerUsername     = "worker"
	WorkerPassword     = "worker123"
	WorkerEmail        = "worker@buildtrack.local"
)

type account struct {
	models.User
	hash []byte
}

// Server holds all demo state behind one lock
type Server struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.RWMutex
	seq       int
	users     map[int]*account
	projects  map[int]*models.Project
	workers   map[int]*models.ProjectWorker
	suppliers map[int]*models.Supplier
	risks     map[int]*models.Risk
	timeline  map[int]*models.TimelineEvent
	rooms     map[int]*models.ChatRoom
	messages  []*models.Message
}

// Option configures a Server
type Option func(*Server)

// WithSecret sets the token signing key
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAccessTTL sets the access token lifetime
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a server seeded with the demo accounts
func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte("buildtrack-demo-secret"),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		users:      map[int]*account{},
		projects:   map[int]*models.Project{},
		workers:    map[int]*models.ProjectWorker{},
		suppliers:  map[int]*models.Supplier{},
		risks:      map[int]*models.Risk{},
		timeline:   map[int]*models.TimelineEvent{},
		rooms:      map[int]*models.ChatRoom{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mustAddUser(models.User{Username: SupervisorUsername, Email: "supervisor@buildtrack.local", FirstName: "Sam", LastName: "Site", Role: models.RoleSupervisor}, SupervisorPassword)
	s.mustAddUser(models.User{Username: WorkerUsername, Email: WorkerEmail, FirstName: "Wren", LastName: "Walker", Role: models.RoleWorker}, WorkerPassword)
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/token/", s.handleToken)
		r.Post("/token/refresh/", s.handleRefresh)
		r.Post("/register/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/profile/", s.handleProfile)

			r.Get("/projects/", s.handleListProjects)
			r.Post("/projects/", s.handleCreateProject)
			r.Get("/projects/{id}/", s.handleGetProject)
			r.Patch("/projects/{id}/", s.handlePatchProject)
			r.Post("/projects/{id}/add_worker/", s.handleAddWorker)

			r.Get("/project-workers/", s.handleListWorkers)
			r.Delete("/project-workers/{id}/", s.handleRemoveWorker)

			r.Get("/project-suppliers/", s.handleListSuppliers)
			r.Post("/project-suppliers/", s.handleCreateSupplier)

			r.Get("/project-risks/", s.handleListRisks)
			r.Post("/project-risks/", s.handleCreateRisk)

			r.Get("/project-timeline/", s.handleListTimeline)
			r.Post("/project-timeline/", s.handleCreateTimeline)
			r.Patch("/project-timeline/{id}/", s.handlePatchTimeline)

			r.Get("/chat-rooms/", s.handleListRooms)
			r.Get("/messages/", s.handleListMessages)
			r.Post("/messages/", s.handleSendMessage)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("demo api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) nextID() int {
	s.seq++
	return s.seq
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) mustAddUser(u models.User, password string) *account {
	acct, err := s.addUser(u, password)
	if err != nil {
		panic(err)
	}
	return acct
}

func (s *Server) addUser(u models.User, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID()
	acct := &account{User: u, hash: hash}
	s.users[u.ID] = acct
	return acct, nil
}

func (s *Server) findUser(match func(*account) bool) *account {
	for _, u := range s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

// publicUser copies a user for embedding in responses
func publicUser(a *account) *models.User {
	if a == nil {
		return nil
	}
	u := a.User
	return &u
}

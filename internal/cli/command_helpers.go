package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/auth"
	"github.com/buildtrack/buildtrack-terminal/pkg/config"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// ErrNotSignedIn is returned by commands that need a session
var ErrNotSignedIn = errors.New("not signed in. Run 'buildtrack login' first")

// CommandContext carries the settings, logger and session every command
// works with
type CommandContext struct {
	Settings *config.Settings
	Logger   *slog.Logger
	Session  *auth.Session
	logFile  io.Closer
}

// NewCommandContext loads settings from configPath, or the search path when
// empty, opens the log file and restores the stored session
func NewCommandContext(configPath string) (*CommandContext, error) {
	var (
		settings *config.Settings
		err      error
	)
	if configPath != "" {
		settings, err = config.LoadFile(configPath)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return NewCommandContextFrom(settings)
}

// NewCommandContextFrom builds a context from already loaded settings
func NewCommandContextFrom(settings *config.Settings) (*CommandContext, error) {
	logger, closer, err := settings.OpenLog()
	if err != nil {
		return nil, err
	}
	client := api.New(settings.APIURL, api.WithLogger(logger), api.WithTimeout(settings.RequestTimeout))
	session := auth.NewSession(client, auth.NewStore(settings.AuthDir()), auth.WithLogger(logger))
	return &CommandContext{
		Settings: settings,
		Logger:   logger,
		Session:  session,
		logFile:  closer,
	}, nil
}

// Close releases the log file
func (c *CommandContext) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// RequireUser returns the cached profile or ErrNotSignedIn
func (c *CommandContext) RequireUser() (*models.User, error) {
	user, err := c.Session.User()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// Client returns an authenticated client, refreshing the access token when
// needed
func (c *CommandContext) Client(ctx context.Context) (*api.Client, error) {
	if _, err := c.RequireUser(); err != nil {
		return nil, err
	}
	client, err := c.Session.Client(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w (session expired)", ErrNotSignedIn)
		}
		return nil, err
	}
	return client, nil
}

// Context returns a context bounded by the configured request timeout
func (c *CommandContext) Context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.Settings.RequestTimeout)
}

// ProjectResolver finds projects by id or title
type ProjectResolver struct {
	client *api.Client
}

func NewProjectResolver(client *api.Client) *ProjectResolver {
	return &ProjectResolver{client: client}
}

// Resolve accepts a numeric id, an exact title (case-insensitive) or a
// unique title fragment
func (r *ProjectResolver) Resolve(ctx context.Context, ref string) (*models.Project, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		p, err := r.client.GetProject(ctx, id)
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("project %d not found", id)
		}
		return p, err
	}

	projects, err := r.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	matches := MatchProjects(projects, ref)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no project found matching '%s'", ref)
	case 1:
		return r.client.GetProject(ctx, matches[0].ID)
	default:
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = fmt.Sprintf("%d (%s)", p.ID, p.Title)
		}
		return nil, fmt.Errorf("multiple projects match '%s': %s. Use the id", ref, strings.Join(ids, ", "))
	}
}

// MatchProjects returns the exact title match if there is one, otherwise
// every project whose title contains ref
func MatchProjects(projects []models.Project, ref string) []models.Project {
	needle := strings.ToLower(ref)
	var partial []models.Project
	for _, p := range projects {
		title := strings.ToLower(p.Title)
		if title == needle {
			return []models.Project{p}
		}
		if strings.Contains(title, needle) {
			partial = append(partial, p)
		}
	}
	return partial
}

// EditorLauncher handles all editor-related operations
type EditorLauncher struct {
	DefaultEditor string
}

// NewEditorLauncher uses $VISUAL, then $EDITOR, then vi
func NewEditorLauncher() *EditorLauncher {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	return &EditorLauncher{DefaultEditor: editor}
}

// OpenFile opens a file in the configured editor
func (e *EditorLauncher) OpenFile(path string) error {
	parts := strings.Fields(e.DefaultEditor)
	if len(parts) == 0 {
		return errors.New("no editor configured")
	}
	editorCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// EditText writes content to a temp file, opens it and returns what the
// user saved
func (e *EditorLauncher) EditText(pattern, content string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()
	defer os.Remove(path)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := e.OpenFile(path); err != nil {
		return "", err
	}
	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(edited), nil
}

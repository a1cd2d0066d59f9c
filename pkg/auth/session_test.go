package auth

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack-terminal/pkg/api"
	"github.com/buildtrack/buildtrack-terminal/pkg/demoapi"
	"github.com/buildtrack/buildtrack-terminal/pkg/form"
	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newSession(t *testing.T) (*Session, *Store, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	srv := httptest.NewServer(demoapi.New(demoapi.WithClock(clk.Now)).Handler())
	t.Cleanup(srv.Close)

	store := NewStore(filepath.Join(t.TempDir(), "auth"))
	return NewSession(api.New(srv.URL), store, WithClock(clk.Now)), store, clk
}

func TestStore_SaveAndClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "auth"))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save(models.TokenPair{Access: "a1", Refresh: "r1"}))
	require.NoError(t, store.Save(models.TokenPair{Access: "a2"}))

	pair, err := store.Pair()
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{Access: "a2", Refresh: "r1"}, pair)

	require.NoError(t, store.SaveProfile(&models.User{ID: 3, Username: "casey"}))
	u, err := store.Profile()
	require.NoError(t, err)
	assert.Equal(t, "casey", u.Username)

	require.NoError(t, store.Clear())
	pair, err = store.Pair()
	require.NoError(t, err)
	assert.Empty(t, pair.Access)
	u, err = store.Profile()
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.Error(t, store.Save(models.TokenPair{}))
}

func TestKeyTransforms(t *testing.T) {
	pk := keyToPath("session-access")
	assert.Equal(t, []string{"session"}, pk.Path)
	assert.Equal(t, "access", pk.FileName)
	assert.Equal(t, "session-access", pathToKey(pk))
}

func TestParseClaims(t *testing.T) {
	s, store, clk := newSession(t)
	_, err := s.Login(context.Background(), demoapi.SupervisorUsername, demoapi.SupervisorPassword)
	require.NoError(t, err)

	token, err := store.Token()
	require.NoError(t, err)
	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
	assert.False(t, claims.Expired(clk.Now()))
	assert.True(t, claims.Expired(clk.Now().Add(demoapi.DefaultAccessTTL)))

	_, err = ParseClaims("not-a-token")
	assert.Error(t, err)
	_, err = ParseClaims("")
	assert.Error(t, err)
}

func TestSession_Login(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	_, err := s.Client(ctx)
	assert.ErrorIs(t, err, form.ErrNotSignedIn)

	user, err := s.Login(ctx, demoapi.SupervisorUsername, demoapi.SupervisorPassword)
	require.NoError(t, err)
	assert.True(t, user.IsSupervisor())

	cached, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, user.Username, cached.Username)

	profile, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)

	require.NoError(t, s.Logout())
	_, err = s.Token()
	assert.ErrorIs(t, err, form.ErrNotSignedIn)
}

func TestSession_BadCredentials(t *testing.T) {
	s, store, _ := newSession(t)
	_, err := s.Login(context.Background(), demoapi.SupervisorUsername, "wrong")
	require.Error(t, err)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSession_RefreshesExpiredAccessToken(t *testing.T) {
	s, store, clk := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, demoapi.WorkerUsername, demoapi.WorkerPassword)
	require.NoError(t, err)
	before, _ := store.Token()

	clk.Advance(demoapi.DefaultAccessTTL + time.Minute)

	c, err := s.Client(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before, c.Token())

	_, err = c.Profile(ctx)
	require.NoError(t, err)

	stored, _ := store.Token()
	assert.Equal(t, c.Token(), stored)
}

func TestSession_ExpiredRefreshSignsOut(t *testing.T) {
	s, store, clk := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, demoapi.WorkerUsername, demoapi.WorkerPassword)
	require.NoError(t, err)

	clk.Advance(demoapi.DefaultRefreshTTL + time.Hour)

	_, err = s.Client(ctx)
	assert.ErrorIs(t, err, form.ErrNotSignedIn)

	pair, err := store.Pair()
	require.NoError(t, err)
	assert.Empty(t, pair.Refresh)
}

func TestSession_Register(t *testing.T) {
	s, _, _ := newSession(t)
	user, err := s.Register(context.Background(), api.Registration{
		Username:  "casey",
		Email:     "casey@example.com",
		Password:  "longenough",
		Password2: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "casey", user.Username)
	assert.Equal(t, models.RoleWorker, user.Role)
}

func TestSignInForm(t *testing.T) {
	s, store, _ := newSession(t)
	ctx := context.Background()

	f := s.SignInForm()
	_, err := f.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Please check: Password, Username", f.Err())

	_, _ = f.Set("username", demoapi.SupervisorUsername)
	_, _ = f.Set("password", "wrong")
	_, err = f.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", f.Err())

	_, _ = f.Set("password", demoapi.SupervisorPassword)
	outcome, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", outcome.NavigateTo)
	assert.Equal(t, models.RoleSupervisor, outcome.Entity.Values.String("role"))

	token, _ := store.Token()
	assert.NotEmpty(t, token)
}

func TestSignUpForm(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	f := s.SignUpForm()
	for field, raw := range map[string]string{
		"username":  "casey",
		"email":     "casey@example.com",
		"password":  "longenough",
		"password2": "different1",
	} {
		_, err := f.Set(field, raw)
		require.NoError(t, err)
	}
	_, err := f.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match.", f.FieldMessage("password2"))

	_, _ = f.Set("password2", "longenough")
	_, _ = f.Set("role", models.RoleSupervisor)
	outcome, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, outcome.Entity.Values.String("role"))

	user, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, "casey", user.Username)
}

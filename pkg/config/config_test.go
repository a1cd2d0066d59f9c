package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// tests point HOME at temp dirs
	homedir.DisableCache = true
	os.Exit(m.Run())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(PathEnv, "")
	t.Chdir(dir)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, filepath.Join(dir, ".buildtrack"), s.DataDir)
	assert.Equal(t, filepath.Join(dir, ".buildtrack", "buildtrack.log"), s.LogFile)
	assert.Equal(t, filepath.Join(dir, ".buildtrack", "auth"), s.AuthDir())
	assert.Equal(t, DefaultPollInterval, s.PollInterval)
	assert.Equal(t, DefaultRequestTimeout, s.RequestTimeout)
	assert.True(t, s.UI.ShowHelp)
	assert.Empty(t, s.ConfigFile)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "cfg")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	t.Setenv("HOME", dir)
	t.Setenv(PathEnv, cfgDir)
	t.Chdir(dir)

	content := `api_url: https://api.example.com/
poll_interval: 3s
log_level: debug
ui:
  show_help: false
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, ".buildtrack.yaml"), []byte(content), 0o644))
	t.Setenv("BUILDTRACK_REQUEST_TIMEOUT", "5s")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", s.APIURL)
	assert.Equal(t, 3*time.Second, s.PollInterval)
	assert.Equal(t, 5*time.Second, s.RequestTimeout)
	assert.Equal(t, "debug", s.LogLevel)
	assert.False(t, s.UI.ShowHelp)
	assert.Equal(t, filepath.Join(cfgDir, ".buildtrack.yaml"), s.ConfigFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad level", content: "log_level: loud\n"},
		{name: "zero poll", content: "poll_interval: 0s\n"},
		{name: "empty url", content: "api_url: \"\"\n"},
		{name: "not yaml", content: "api_url: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".buildtrack.yaml")
	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	t.Setenv("HOME", t.TempDir())
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, DefaultPollInterval, s.PollInterval)
	assert.True(t, s.UI.ShowHelp)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "project", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "project=7")
}

func TestOpenLog(t *testing.T) {
	s := Default()
	s.LogFile = filepath.Join(t.TempDir(), "logs", "buildtrack.log")
	logger, closer, err := s.OpenLog()
	require.NoError(t, err)
	logger.Info("started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(s.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}

// Package config loads client settings from .buildtrack.yaml and
// BUILDTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = ".buildtrack"
	EnvPrefix = "BUILDTRACK"
	// PathEnv names an extra directory searched for the config file
	PathEnv = "BUILDTRACK_CONFIG_PATH"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8000"
	DefaultDataDir        = "~/.buildtrack"
	DefaultPollInterval   = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Settings is everything the client reads from configuration
type Settings struct {
	APIURL         string        `yaml:"api_url" mapstructure:"api_url"`
	DataDir        string        `yaml:"data_dir" mapstructure:"data_dir"`
	PollInterval   time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	LogLevel       string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile        string        `yaml:"log_file,omitempty" mapstructure:"log_file"`
	UI             UISettings    `yaml:"ui" mapstructure:"ui"`

	// ConfigFile is the file the settings were read from, empty when none was found
	ConfigFile string `yaml:"-" mapstructure:"-"`
}

type UISettings struct {
	ShowHelp bool `yaml:"show_help" mapstructure:"show_help"`
}

// AuthDir is where the token store lives
func (s *Settings) AuthDir() string {
	return filepath.Join(s.DataDir, "auth")
}

// Default returns the settings used when nothing is configured
func Default() *Settings {
	return &Settings{
		APIURL:         DefaultAPIURL,
		DataDir:        DefaultDataDir,
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		UI:             UISettings{ShowHelp: true},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("ui.show_help", d.UI.ShowHelp)

	v.SetConfigName(FileName) // .yaml is implicit
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from the search path: $BUILDTRACK_CONFIG_PATH, ./ and
// $HOME. A missing file is not an error.
func Load() (*Settings, error) {
	v := newViper()
	if override := os.Getenv(PathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return read(v)
}

// LoadFile reads settings from an explicit file
func LoadFile(path string) (*Settings, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	v := newViper()
	v.SetConfigFile(expanded)
	return read(v)
}

func read(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) normalize() error {
	dataDir, err := homedir.Expand(s.DataDir)
	if err != nil {
		return fmt.Errorf("expanding data_dir: %w", err)
	}
	s.DataDir = dataDir
	if s.LogFile == "" {
		s.LogFile = filepath.Join(s.DataDir, "buildtrack.log")
	} else if s.LogFile, err = homedir.Expand(s.LogFile); err != nil {
		return fmt.Errorf("expanding log_file: %w", err)
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	if s.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", s.RequestTimeout)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// WriteDefault writes the default settings to path as YAML. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(expanded); err == nil {
			return fmt.Errorf("config file already exists: %s", expanded)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o644)
}

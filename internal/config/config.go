// Package config handles the XDG configuration directory, the optional config
// file and the paths derived from them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasknova"

	// YAMLFile and TOMLFile are the recognised config file names, tried in order.
	YAMLFile = "config.yaml"
	TOMLFile = "config.toml"

	// DatabaseFile is the default SQLite document store filename.
	DatabaseFile = "tasknova.db"

	// SessionTokenFile holds the signed local session token.
	SessionTokenFile = "session.jwt"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"

	// GoogleSessionFile caches the identity claims of the Google account.
	GoogleSessionFile = "session.json"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendGoogle = "google"
)

const (
	defaultSessionTTL   = 30 * 24 * time.Hour
	defaultPollInterval = time.Second
	defaultListTitle    = "TaskNova"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-" toml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-" toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-" toml:"-"`

	Backend  string         `yaml:"backend" toml:"backend"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Sync     SyncConfig     `yaml:"sync" toml:"sync"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Google   GoogleConfig   `yaml:"google" toml:"google"`
}

// DatabaseConfig locates the local document store.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig controls local session tokens.
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret" toml:"session_secret"`
	SessionTTL    time.Duration `yaml:"-" toml:"-"`

	SessionTTLRaw string `yaml:"session_ttl" toml:"session_ttl"`
}

// SyncConfig controls live query delivery.
type SyncConfig struct {
	PollInterval time.Duration `yaml:"-" toml:"-"`

	PollIntervalRaw string `yaml:"poll_interval" toml:"poll_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// GoogleConfig holds Google Tasks backend settings.
type GoogleConfig struct {
	ListTitle string `yaml:"list_title" toml:"list_title"`
}

// New creates a Config for the default or specified config directory and
// loads config.yaml or config.toml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/tasknova or $HOME/.config/tasknova.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	yamlPath := filepath.Join(c.Dir, YAMLFile)
	data, err := os.ReadFile(yamlPath)
	if err == nil {
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
			return fmt.Errorf("parsing %s: %w", YAMLFile, err)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", YAMLFile, err)
	}

	tomlPath := filepath.Join(c.Dir, TOMLFile)
	data, err = os.ReadFile(tomlPath)
	if err == nil {
		if _, err := toml.Decode(expandEnvVars(string(data)), c); err != nil {
			return fmt.Errorf("parsing %s: %w", TOMLFile, err)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", TOMLFile, err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TASKNOVA_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TASKNOVA_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("TASKNOVA_SESSION_SECRET"); v != "" {
		c.Auth.SessionSecret = v
	}
}

func (c *Config) parseDurations() error {
	var err error
	if c.Auth.SessionTTLRaw != "" {
		c.Auth.SessionTTL, err = time.ParseDuration(c.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", c.Auth.SessionTTLRaw, err)
		}
	}
	if c.Sync.PollIntervalRaw != "" {
		c.Sync.PollInterval, err = time.ParseDuration(c.Sync.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", c.Sync.PollIntervalRaw, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Dir, DatabaseFile)
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = defaultSessionTTL
	}
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = defaultPollInterval
	}
	if c.Google.ListTitle == "" {
		c.Google.ListTitle = defaultListTitle
	}
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendGoogle:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Sync.PollInterval < 0 {
		return fmt.Errorf("sync.poll_interval must be positive")
	}
	return nil
}

// SessionTokenPath returns the path to the local session token.
func (c *Config) SessionTokenPath() string {
	return filepath.Join(c.Dir, SessionTokenFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// GoogleSessionPath returns the path to the cached Google identity.
func (c *Config) GoogleSessionPath() string {
	return filepath.Join(c.Dir, GoogleSessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the OAuth token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the OAuth token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Filename is the config file looked up inside the request directory.
const Filename = "config.yaml"

// EnvPrefix prefixes environment variables that override config keys.
const EnvPrefix = "REQQ"

// DotEnvFilename is the .env file loaded when DotEnv is not set.
const DotEnvFilename = ".env"

// Config represents the reqq configuration
type Config struct {
	DefaultEnvironment string            `mapstructure:"defaultEnvironment" yaml:"defaultEnvironment,omitempty"`
	Timeout            string            `mapstructure:"timeout" yaml:"timeout,omitempty"`
	FollowRedirects    *bool             `mapstructure:"followRedirects" yaml:"followRedirects,omitempty"`
	MaxRedirects       int               `mapstructure:"maxRedirects" yaml:"maxRedirects,omitempty"`
	ValidateSSL        *bool             `mapstructure:"validateSSL" yaml:"validateSSL,omitempty"`
	Proxy              string            `mapstructure:"proxy" yaml:"proxy,omitempty"`
	Headers            map[string]string `mapstructure:"headers" yaml:"headers,omitempty"` // sent unless the request sets them
	NoColor            *bool             `mapstructure:"noColor" yaml:"noColor,omitempty"`
	DotEnv             string            `mapstructure:"dotenv" yaml:"dotenv,omitempty"`
}

// envKeys maps config keys to the variables that override them.
var envKeys = map[string]string{
	"defaultEnvironment": EnvPrefix + "_DEFAULT_ENVIRONMENT",
	"timeout":            EnvPrefix + "_TIMEOUT",
	"followRedirects":    EnvPrefix + "_FOLLOW_REDIRECTS",
	"maxRedirects":       EnvPrefix + "_MAX_REDIRECTS",
	"validateSSL":        EnvPrefix + "_VALIDATE_SSL",
	"proxy":              EnvPrefix + "_PROXY",
	"noColor":            EnvPrefix + "_NO_COLOR",
	"dotenv":             EnvPrefix + "_DOTENV",
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// BoolPtr is exported version of boolPtr for external use
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetTimeout parses Timeout, falling back to the default when it is empty.
func (c *Config) GetTimeout() (time.Duration, error) {
	raw := c.Timeout
	if raw == "" {
		raw = DefaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// GetDotEnv returns the .env path, relative paths being taken from dir.
func (c *Config) GetDotEnv(dir string) string {
	if c.DotEnv == "" {
		return filepath.Join(dir, DotEnvFilename)
	}
	if filepath.IsAbs(c.DotEnv) {
		return c.DotEnv
	}
	return filepath.Join(dir, c.DotEnv)
}

// LoadConfig loads the configuration at path. An empty path looks for
// config.yaml in dir and falls back to defaults when there is none.
func LoadConfig(dir, path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(dir)
}

// FindAndLoadConfig loads dir/config.yaml, or the defaults plus any
// environment overrides when that file does not exist.
func FindAndLoadConfig(dir string) (*Config, error) {
	configPath := filepath.Join(dir, Filename)
	if _, err := os.Stat(configPath); err == nil {
		return loadConfigFromFile(configPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot access %s: %w", configPath, err)
	}
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, name := range envKeys {
		_ = v.BindEnv(key, name) // only fails without a key
	}
	return v
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.GetTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.Timeout != "" {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DotEnv != "" {
		result.DotEnv = other.DotEnv
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(c.Headers) > 0 || len(other.Headers) > 0 {
		result.Headers = make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}

// SaveConfig writes the configuration as YAML.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/config"
	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/runner"
	"github.com/sethetter/reqq/packages/logging"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val == "yes"
		}
		return b
	}
	return defaultVal
}

// settings is the configuration shared by every command: the config file
// with command line flags applied on top.
type settings struct {
	dir    string
	config *config.Config
	logger *log.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	logger := logging.New(cmd.ErrOrStderr(), verboseFlag)

	cfg, err := config.LoadConfig(dirFlag, configFlag)
	if err != nil {
		return nil, configError(err)
	}
	if cfg.IsDefault() {
		logger.Debug("no config file settings, using defaults", "dir", dirFlag)
	}
	cfg = cfg.Merge(flagOverrides(cmd))
	logger.Debug("config loaded", "dir", dirFlag, "timeout", cfg.Timeout, "followRedirects", cfg.GetFollowRedirects())

	dotenv := cfg.GetDotEnv(dirFlag)
	vars, err := env.LoadAndExportDotEnv(dotenv)
	switch {
	case err == nil:
		logger.Debug("loaded .env", "path", dotenv, "count", len(vars))
	case cfg.DotEnv == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, configError(err)
	}

	return &settings{
		dir:    dirFlag,
		config: cfg,
		logger: logger,
	}, nil
}

// flagOverrides collects the flags the user actually set.
func flagOverrides(cmd *cobra.Command) *config.Config {
	o := &config.Config{}
	flags := cmd.Flags()

	if flags.Changed("timeout") {
		o.Timeout = timeoutFlag
	}
	if flags.Changed("proxy") {
		o.Proxy = proxyFlag
	}
	if insecureFlag {
		o.ValidateSSL = config.BoolPtr(false)
	}
	if noRedirectsFlag {
		o.FollowRedirects = config.BoolPtr(false)
	}
	if noColorFlag {
		o.NoColor = config.BoolPtr(true)
	}
	return o
}

// environment returns the environment to render with, or nil when there
// is none. The --env flag wins over defaultEnvironment.
func (s *settings) environment() *env.Config {
	name := envFlag
	if name == "" {
		name = s.config.DefaultEnvironment
	}
	if name == "" {
		return nil
	}
	return env.NewConfig(env.EnvironmentPath(s.dir, name))
}

func (s *settings) runnerConfig() (*runner.Config, error) {
	timeout, err := s.config.GetTimeout()
	if err != nil {
		return nil, configError(err)
	}
	return &runner.Config{
		Timeout:        timeout,
		FollowRedirect: s.config.GetFollowRedirects(),
		MaxRedirects:   s.config.MaxRedirects,
		ValidateSSL:    s.config.GetValidateSSL(),
		Proxy:          s.config.Proxy,
		DefaultHeaders: s.config.Headers,
		Logger:         s.logger,
	}, nil
}

func (s *settings) describe() string {
	if e := s.environment(); e != nil {
		return fmt.Sprintf("%s (env %s)", s.dir, e.Path())
	}
	return s.dir
}

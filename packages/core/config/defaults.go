package config

const (
	DefaultTimeout      = "30s"
	DefaultMaxRedirects = 10
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvironment: "",
		Timeout:            DefaultTimeout,
		FollowRedirects:    boolPtr(true),
		MaxRedirects:       DefaultMaxRedirects,
		ValidateSSL:        boolPtr(true),
		Proxy:              "",
		Headers:            nil,
		NoColor:            boolPtr(false),
		DotEnv:             "",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.DefaultEnvironment == defaults.DefaultEnvironment &&
		c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.DotEnv == defaults.DotEnv
}

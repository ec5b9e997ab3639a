// Package config handles configuration loading and management for reqq.
//
// It provides functionality for:
//   - Loading configuration from <dir>/config.yaml with viper
//   - REQQ_* environment variable overrides
//   - Default configuration values
//   - Writing a starter configuration for reqq init
package config

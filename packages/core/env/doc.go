// Package env handles the variables a request file is rendered with.
//
// It provides functionality for:
//   - Loading JSON environment files (.reqq/envs/<name>.json)
//   - Merging environments with key=value arguments, arguments winning
//   - Loading .env files for {{ $NAME }} lookups
//   - Rendering {{ placeholder }} templates, failing on unbound names
package env

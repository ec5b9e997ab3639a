package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFindAndLoadConfig_Defaults(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.IsDefault())
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestFindAndLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
defaultEnvironment: staging
timeout: 5s
followRedirects: false
maxRedirects: 3
validateSSL: false
proxy: http://localhost:8888
headers:
  User-Agent: reqq-test
noColor: true
dotenv: secrets.env
`)

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.DefaultEnvironment)
	assert.Equal(t, "5s", cfg.Timeout)
	assert.False(t, cfg.GetFollowRedirects())
	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "http://localhost:8888", cfg.Proxy)
	assert.True(t, cfg.GetNoColor())
	assert.Equal(t, filepath.Join(dir, "secrets.env"), cfg.GetDotEnv(dir))
	assert.False(t, cfg.IsDefault())

	require.Len(t, cfg.Headers, 1)
	for name, value := range cfg.Headers {
		assert.True(t, strings.EqualFold("User-Agent", name), name)
		assert.Equal(t, "reqq-test", value)
	}
}

func TestFindAndLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "proxy: http://proxy.local\n")

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local", cfg.Proxy)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRedirects, cfg.MaxRedirects)
	assert.True(t, cfg.GetFollowRedirects())
}

func TestFindAndLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REQQ_TIMEOUT", "2s")
	t.Setenv("REQQ_VALIDATE_SSL", "false")
	t.Setenv("REQQ_DEFAULT_ENVIRONMENT", "prod")

	dir := t.TempDir()
	writeConfig(t, dir, "timeout: 10s\ndefaultEnvironment: dev\n")

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "2s", cfg.Timeout)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "prod", cfg.DefaultEnvironment)

	cfg, err = FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "2s", cfg.Timeout)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxRedirects: 1\n"), 0o644))

	cfg, err := LoadConfig(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRedirects)

	_, err = LoadConfig(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "timeout: [unclosed\n")
		_, err := LoadConfig(dir, "")
		assert.Error(t, err)
	})

	t.Run("bad timeout", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "timeout: soon\n")
		_, err := LoadConfig(dir, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timeout")
	})
}

func TestConfig_GetTimeout(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Duration
		wantErr  bool
	}{
		{"", 30 * time.Second, false},
		{"1m", time.Minute, false},
		{"250ms", 250 * time.Millisecond, false},
		{"0s", 0, false},
		{"-1s", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := (&Config{Timeout: tt.raw}).GetTimeout()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestConfig_GetDotEnv(t *testing.T) {
	assert.Equal(t, filepath.Join(".reqq", ".env"), (&Config{}).GetDotEnv(".reqq"))
	assert.Equal(t, filepath.Join(".reqq", "local.env"), (&Config{DotEnv: "local.env"}).GetDotEnv(".reqq"))

	abs := filepath.Join(t.TempDir(), "x.env")
	assert.Equal(t, abs, (&Config{DotEnv: abs}).GetDotEnv(".reqq"))
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "application/json"}

	merged := base.Merge(&Config{
		Timeout:     "5s",
		ValidateSSL: BoolPtr(false),
		Headers:     map[string]string{"X-Trace": "1"},
	})

	assert.Equal(t, "5s", merged.Timeout)
	assert.False(t, merged.GetValidateSSL())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, DefaultMaxRedirects, merged.MaxRedirects)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Trace": "1"}, merged.Headers)

	assert.Equal(t, DefaultTimeout, base.Timeout)
	assert.Len(t, base.Headers, 1)
	assert.Same(t, base, base.Merge(nil))
}

func TestConfig_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DefaultEnvironment = "dev"
	cfg.Headers = map[string]string{"User-Agent": "reqq"}

	require.NoError(t, cfg.SaveConfig(filepath.Join(dir, Filename)))

	loaded, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "dev", loaded.DefaultEnvironment)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
	require.Len(t, loaded.Headers, 1)
	for name, value := range loaded.Headers {
		assert.True(t, strings.EqualFold("User-Agent", name), name)
		assert.Equal(t, "reqq", value)
	}
}

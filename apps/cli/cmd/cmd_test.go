package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/parser"
	"github.com/sethetter/reqq/packages/core/runner"
)

// resetFlags restores every flag to its default so commands can run
// repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"load", &runner.StageError{Stage: runner.StageLoad, Err: os.ErrNotExist}, ExitNotFound},
		{"variables", &runner.StageError{Stage: runner.StageVariables, Err: env.ErrFormat}, ExitConfigError},
		{"render", &runner.StageError{Stage: runner.StageRender, Err: env.ErrUnbound}, ExitParseError},
		{"parse", &runner.StageError{Stage: runner.StageParse, Err: parser.ErrInvalidMethod}, ExitParseError},
		{"send", &runner.StageError{Stage: runner.StageSend, Err: errors.New("refused")}, ExitNetworkError},
		{"wrapped stage", fmt.Errorf("outer: %w", &runner.StageError{Stage: runner.StageSend, Err: errors.New("x")}), ExitNetworkError},
		{"explicit code", &ExitError{Code: ExitUsageError, Err: errors.New("bad")}, ExitUsageError},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeFor(tt.err))
		})
	}
}

func TestWithExitCode(t *testing.T) {
	assert.NoError(t, withExitCode(nil))

	err := withExitCode(&runner.StageError{Stage: runner.StageParse, Err: parser.ErrInvalidURL})
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitParseError, exitErr.Code)
	assert.ErrorIs(t, err, parser.ErrInvalidURL)

	same := &ExitError{Code: ExitNotFound}
	assert.Same(t, same, withExitCode(same))
	assert.Equal(t, "exit status 5", same.Error())
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ping.reqq"), "GET https://example.com/\n")
	writeFile(t, filepath.Join(dir, "users", "create.reqq"), "POST https://example.com/users\n")
	writeFile(t, filepath.Join(dir, "envs", "dev.json"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	out, err := runCLI(t, "list", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "ping\nusers/create\n", out)

	out, err = runCLI(t, "list", "--dir", dir, "--long")
	require.NoError(t, err)
	assert.Equal(t, "ping\tGET https://example.com/\nusers/create\tPOST https://example.com/users\n", out)
}

func TestEnvCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "defaultEnvironment: prod\n")
	writeFile(t, filepath.Join(dir, "envs", "dev.json"), "{}")
	writeFile(t, filepath.Join(dir, "envs", "prod.json"), "{}")

	out, err := runCLI(t, "env", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "  dev\n* prod\n", out)
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".reqq")

	out, err := runCLI(t, "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "example.reqq"))
	assert.FileExists(t, filepath.Join(dir, "envs", "dev.json"))

	out, err = runCLI(t, "list", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "example\n", out)

	out, err = runCLI(t, "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "Valid: example\n", out)

	_, err = runCLI(t, "init", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCodeFor(err))

	_, err = runCLI(t, "init", "--dir", dir, "--force")
	assert.NoError(t, err)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.reqq"), "GET {{ base }}/ok\n")
	writeFile(t, filepath.Join(dir, "method.reqq"), "G@T https://example.com/\n")
	writeFile(t, filepath.Join(dir, "unbound.reqq"), "GET {{ base }}/{{ missing }}\n")
	writeFile(t, filepath.Join(dir, "envs", "dev.json"), `{"base": "https://example.com"}`)

	out, err := runCLI(t, "validate", "--dir", dir, "--env", "dev")
	require.Error(t, err)
	assert.Equal(t, "Valid: good\n", out)
	assert.Equal(t, ExitParseError, exitCodeFor(err))
	assert.ErrorIs(t, err, parser.ErrInvalidMethod)
	assert.ErrorIs(t, err, env.ErrUnbound)

	out, err = runCLI(t, "validate", "good", "unbound", "--dir", dir, "--env", "dev", "--var", "missing=x")
	require.NoError(t, err)
	assert.Equal(t, "Valid: good\nValid: unbound\n", out)

	_, err = runCLI(t, "validate", "nope", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, exitCodeFor(err))
}

func TestExecuteCommand(t *testing.T) {
	var gotHeader, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Example-Header")
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		fmt.Fprint(w, `{"user": {"name": "ada"}}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "create.reqq"),
		"POST {{ base }}/users\nx-example-header: {{ headerVal }}\n\nrequest {{ shwat }} content {{ asdf }}")
	writeFile(t, filepath.Join(dir, "missing.reqq"), "GET {{ base }}/missing\n")
	writeFile(t, filepath.Join(dir, "envs", "dev.json"),
		fmt.Sprintf(`{"base": %q, "headerVal": "lolwat", "shwat": 5}`, server.URL))

	t.Run("body output", func(t *testing.T) {
		out, err := runCLI(t, "create", "asdf=thing", "--dir", dir, "--env", "dev", "-o", "body")
		require.NoError(t, err)
		assert.Equal(t, `{"user": {"name": "ada"}}`, out)
		assert.Equal(t, "lolwat", gotHeader)
		assert.Equal(t, "\nrequest 5 content thing", gotBody)
	})

	t.Run("query", func(t *testing.T) {
		out, err := runCLI(t, "create", "asdf=thing", "--dir", dir, "--env", "dev", "-q", "user.name")
		require.NoError(t, err)
		assert.Equal(t, "ada\n", out)
	})

	t.Run("unbound argument", func(t *testing.T) {
		_, err := runCLI(t, "create", "--dir", dir, "--env", "dev")
		require.Error(t, err)
		assert.Equal(t, ExitParseError, exitCodeFor(err))
	})

	t.Run("dry run", func(t *testing.T) {
		gotBody = ""
		out, err := runCLI(t, "create", "asdf=thing", "--dir", dir, "--env", "dev", "--dry-run", "--no-color")
		require.NoError(t, err)
		assert.Contains(t, out, "POST "+server.URL+"/users")
		assert.Empty(t, gotBody)
	})

	t.Run("fail on error status", func(t *testing.T) {
		_, err := runCLI(t, "missing", "--dir", dir, "--env", "dev", "-o", "body")
		require.NoError(t, err)

		_, err = runCLI(t, "missing", "--dir", dir, "--env", "dev", "-o", "body", "--fail")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, exitCodeFor(err))
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := runCLI(t, "nope", "--dir", dir)
		require.Error(t, err)
		assert.Equal(t, ExitNotFound, exitCodeFor(err))
	})

	t.Run("bad assignment", func(t *testing.T) {
		_, err := runCLI(t, "create", "novalue", "--dir", dir)
		require.Error(t, err)
		assert.Equal(t, ExitUsageError, exitCodeFor(err))
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := runCLI(t, "create", "--dir", dir, "--env", "prod")
		require.Error(t, err)
		assert.Equal(t, ExitConfigError, exitCodeFor(err))
	})
}

func TestImportCurlCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "import", "curl", "--dir", dir, "--name", "users/create", "--base-url-var", "base",
		"--", "curl", "-X", "POST", "https://api.example.com/users", "-H", "Accept: application/json")
	require.NoError(t, err)
	path := filepath.Join(dir, "users", "create.reqq")
	assert.Equal(t, "Created: "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "POST {{ base }}/users\nAccept: application/json\n", string(data))

	_, err = runCLI(t, "import", "curl", "--dir", dir, "--name", "users/create", "curl https://api.example.com/users")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCodeFor(err))

	out, err = runCLI(t, "import", "curl", "--stdout", "curl https://example.com/ping")
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.com/ping\n", out)
}

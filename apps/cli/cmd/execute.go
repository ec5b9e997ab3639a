package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/reqfile"
	"github.com/sethetter/reqq/packages/core/runner"
	"github.com/sethetter/reqq/packages/output"
	"github.com/sethetter/reqq/packages/watch"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond

	// WatchMinInterval is the shortest time between two re-executions
	WatchMinInterval = time.Second
)

var (
	timeoutFlag     string
	insecureFlag    bool
	proxyFlag       string
	noRedirectsFlag bool
	dryRunFlag      bool
	watchFlag       bool
	outputFlag      string
	queryFlag       string
	failFlag        bool
)

func registerExecuteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("REQQ_TIMEOUT", "30s"), "Request timeout (e.g., 30s, 1m) (env: REQQ_TIMEOUT)")
	cmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("REQQ_INSECURE", false), "Disable SSL certificate validation (env: REQQ_INSECURE)")
	cmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("REQQ_PROXY", ""), "Proxy URL for HTTP requests (env: REQQ_PROXY)")
	cmd.Flags().BoolVar(&noRedirectsFlag, "no-redirects", false, "Do not follow redirects")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Render and print the request without sending it")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-send the request whenever its file or environment changes")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("REQQ_OUTPUT", output.FormatConsole), "Output format: console, json, body (env: REQQ_OUTPUT)")
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Print only this gjson path of a JSON response body")
	cmd.Flags().BoolVarP(&failFlag, "fail", "f", false, "Exit with status 1 when the response status is 400 or above")
}

func executeCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	extra, err := env.ParseAssignments(args[1:])
	if err != nil {
		return usageError("%w", err)
	}

	if dryRunFlag && watchFlag {
		return usageError("--watch and --dry-run cannot be used together")
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	formatter, err := output.New(strings.ToLower(outputFlag),
		output.WithWriter(cmd.OutOrStdout()),
		output.WithErrWriter(cmd.ErrOrStderr()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(s.config.GetNoColor()),
		output.WithQuery(queryFlag),
	)
	if err != nil {
		return usageError("%w", err)
	}

	file, err := reqfile.Find(s.dir, args[0])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExitError{Code: ExitNotFound, Err: err}
		}
		return withExitCode(err)
	}

	rcfg, err := s.runnerConfig()
	if err != nil {
		return err
	}
	r := runner.NewRunner(rcfg)
	s.logger.Debug("executing", "request", file.Name(s.dir), "from", s.describe())

	run := func(ctx context.Context) error {
		// Fresh instances so that edits made while watching are read.
		f := reqfile.NewFile(file.Path())
		envCfg := s.environment()

		if dryRunFlag {
			prepared, err := r.Prepare(f, envCfg, extra)
			if err != nil {
				return err
			}
			return formatter.FormatPrepared(prepared)
		}

		result, err := r.Execute(ctx, f, envCfg, extra)
		if err != nil {
			return err
		}
		if err := formatter.FormatResult(result); err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if failFlag && result.Response.StatusCode >= 400 {
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s returned %s", file.Name(s.dir), result.Response.Status)}
		}
		return nil
	}

	if !watchFlag {
		return withExitCode(run(cmd.Context()))
	}

	return runWatch(cmd, s, file, formatter, run)
}

func runWatch(cmd *cobra.Command, s *settings, file *reqfile.File, formatter output.Formatter, run func(context.Context) error) error {
	report := func(err error) {
		if err != nil {
			formatter.FormatError(err)
		}
	}

	report(run(cmd.Context()))

	paths := []string{file.Path()}
	if envCfg := s.environment(); envCfg != nil {
		paths = append(paths, envCfg.Path())
	}

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = true
	}

	w, err := watch.New(watch.Config{
		Paths:       paths,
		Match:       func(p string) bool { return watched[filepath.Clean(p)] },
		Debounce:    WatchDebounceDelay,
		MinInterval: WatchMinInterval,
		Logger:      s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-sending %s...\n\n", strings.Join(changed, ", "), file.Name(s.dir))
			report(run(ctx))
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			return nil
		},
	})
	if err != nil {
		return configError(err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
	return w.Run(cmd.Context())
}

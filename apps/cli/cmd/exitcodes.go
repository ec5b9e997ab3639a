package cmd

import (
	"errors"
	"fmt"

	"github.com/sethetter/reqq/packages/core/runner"
)

// Exit codes for reqq CLI
const (
	// ExitSuccess indicates the request was sent and printed
	ExitSuccess = 0

	// ExitFailure is any failure without a more specific code, and an
	// HTTP error status when --fail is set
	ExitFailure = 1

	// ExitParseError indicates a template or request file error
	ExitParseError = 2

	// ExitConfigError indicates a configuration or environment error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitNotFound indicates a request file that could not be read
	ExitNotFound = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch runner.StageOf(err) {
	case runner.StageLoad:
		return ExitNotFound
	case runner.StageVariables:
		return ExitConfigError
	case runner.StageRender, runner.StageParse:
		return ExitParseError
	case runner.StageSend:
		return ExitNetworkError
	}
	return ExitFailure
}

// withExitCode wraps err so the process exits with the code for its stage.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsageError, Err: fmt.Errorf(format, args...)}
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/reqfile"
	"github.com/sethetter/reqq/packages/core/runner"
)

var validateVarsFlag []string

var validateCmd = &cobra.Command{
	Use:   "validate [request ...]",
	Short: "Render and parse request files without sending them",
	Long: `Validate request files by rendering them with the selected environment
and parsing the result. Nothing is sent. Every file is checked and all
failures are reported together.

Examples:
  reqq validate
  reqq validate users/create --env dev
  reqq validate --var id=1 --var name=ada`,
	ValidArgsFunction: completeRequestNames,
	RunE:              validateCommand,
}

func init() {
	validateCmd.Flags().StringArrayVar(&validateVarsFlag, "var", nil, "Extra key=value variable (repeatable)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	extra, err := env.ParseAssignments(validateVarsFlag)
	if err != nil {
		return usageError("%w", err)
	}

	var files []*reqfile.File
	if len(args) == 0 {
		files, err = reqfile.List(s.dir)
		if err != nil {
			return &ExitError{Code: ExitNotFound, Err: err}
		}
	} else {
		for _, name := range args {
			f, err := reqfile.Find(s.dir, name)
			if err != nil {
				return &ExitError{Code: ExitNotFound, Err: err}
			}
			files = append(files, f)
		}
	}

	if len(files) == 0 {
		return &ExitError{Code: ExitNotFound, Err: fmt.Errorf("no .reqq files found in %s", s.dir)}
	}

	rcfg, err := s.runnerConfig()
	if err != nil {
		return err
	}
	r := runner.NewRunner(rcfg)

	var result *multierror.Error
	code := ExitSuccess
	for _, f := range files {
		if _, err := r.Prepare(f, s.environment(), extra); err != nil {
			if code == ExitSuccess {
				code = exitCodeFor(err)
			}
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", f.Name(s.dir))
	}

	if err := result.ErrorOrNil(); err != nil {
		return &ExitError{Code: code, Err: err}
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/reqfile"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	dirFlag     string
	envFlag     string
	configFlag  string
	verboseFlag bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "reqq <request> [key=value ...]",
	Short: "Run HTTP requests stored as plain text files.",
	Long: `reqq executes HTTP requests kept as plain text files in a .reqq
directory. A request file holds a request line, headers and an optional
body, and may use {{ placeholders }} filled from an environment file and
key=value arguments.

Examples:
  reqq list
  reqq users/create --env dev name=ada
  reqq ping -o body -q status`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: completeRequestNames,
	SilenceUsage:      true,
	RunE:              executeCommand,
}

func getVersionString() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (built: %s)", version, buildTime)
}

// Execute runs the CLI and exits with the code matching the failure.
func Execute(v, bt string) {
	version = v
	buildTime = bt

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", getEnvString("REQQ_DIR", reqfile.DefaultDir), "Directory holding request files (env: REQQ_DIR)")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", getEnvString("REQQ_ENV", ""), "Environment name or path to an environment JSON file (env: REQQ_ENV)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("REQQ_CONFIG", ""), "Path to config file (default <dir>/config.yaml) (env: REQQ_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show the request and debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("NO_COLOR", false), "Disable colored output (env: NO_COLOR)")

	registerExecuteFlags(rootCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

func completeRequestNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	files, err := reqfile.List(dirFlag)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name(dirFlag))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/reqfile"
	"github.com/sethetter/reqq/packages/import/curl"
)

var (
	importNameFlag    string
	importBaseVarFlag string
	importStdoutFlag  bool
	importForceFlag   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import requests from other tools",
}

var importCurlCmd = &cobra.Command{
	Use:   "curl <command...>",
	Short: "Convert a curl command into a request file",
	Long: `Convert a curl command into a request file in the request directory.
Pass "-" to read the command from stdin.

Examples:
  reqq import curl 'curl -X POST https://api.example.com/users -d "{}"'
  reqq import curl --name users/create --base-url-var baseUrl -- curl https://api.example.com/users
  pbpaste | reqq import curl - --stdout`,
	Args: cobra.MinimumNArgs(1),
	RunE: importCurlCommand,
}

func init() {
	importCurlCmd.Flags().StringVarP(&importNameFlag, "name", "n", "", "Request name (default derived from method and path)")
	importCurlCmd.Flags().StringVar(&importBaseVarFlag, "base-url-var", "", "Replace the scheme and host with {{ <name> }}")
	importCurlCmd.Flags().BoolVar(&importStdoutFlag, "stdout", false, "Print the request instead of writing a file")
	importCurlCmd.Flags().BoolVarP(&importForceFlag, "force", "f", false, "Overwrite an existing request file")

	importCmd.AddCommand(importCurlCmd)
	rootCmd.AddCommand(importCmd)
}

func importCurlCommand(cmd *cobra.Command, args []string) error {
	var (
		parsed *curl.Command
		err    error
	)
	switch {
	case len(args) == 1 && args[0] == "-":
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("reading stdin: %w", readErr)
		}
		parsed, err = curl.Parse(string(data))
	case len(args) == 1:
		parsed, err = curl.Parse(args[0])
	default:
		parsed, err = curl.ParseArgs(args)
	}
	if err != nil {
		return usageError("%w", err)
	}

	var opts []curl.Option
	if importBaseVarFlag != "" {
		opts = append(opts, curl.WithBaseURLVariable(importBaseVarFlag))
	}
	text, err := curl.NewConverter(opts...).Format(parsed)
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}

	if importStdoutFlag {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	name := importNameFlag
	if name == "" {
		name = parsed.Name()
	}
	path := filepath.Join(dirFlag, filepath.FromSlash(strings.TrimSuffix(name, reqfile.Ext))+reqfile.Ext)

	if !importForceFlag {
		if _, err := os.Stat(path); err == nil {
			return usageError("file already exists: %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write request file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/reqfile"
)

var listLongFlag bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available requests",
	Long: `List the names of all request files in the request directory.

Examples:
  reqq list
  reqq list --dir api/.reqq
  reqq list --long`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().BoolVarP(&listLongFlag, "long", "l", false, "Also show each request's method and URL as written")
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := reqfile.List(dirFlag)
	if err != nil {
		return &ExitError{Code: ExitNotFound, Err: err}
	}

	for _, f := range files {
		name := f.Name(dirFlag)
		if !listLongFlag {
			fmt.Fprintln(cmd.OutOrStdout(), name)
			continue
		}

		text, err := f.Source()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", f.Path(), err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, firstLine(text))
	}

	return nil
}

func firstLine(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line := text[:i]
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			return line
		}
	}
	return text
}

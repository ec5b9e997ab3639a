package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/env"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List available environments",
	Long: `List the environments in <dir>/envs. The default environment from the
config file, if any, is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: envCommand,
}

func envCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	names, err := env.ListEnvironments(s.dir)
	if err != nil {
		return configError(err)
	}

	for _, name := range names {
		marker := " "
		if name == s.config.DefaultEnvironment {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
	}
	return nil
}

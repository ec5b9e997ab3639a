package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sethetter/reqq/packages/core/config"
	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/reqfile"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new reqq directory",
	Long: `Initialize a request directory (default .reqq).

This creates:
  - config.yaml    - Configuration file
  - example.reqq   - Example request file
  - envs/dev.json  - Example environment

Examples:
  reqq init
  reqq init --dir api/.reqq --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

const exampleRequest = `GET {{ baseUrl }}/get?user={{ user }}
Accept: application/json
X-Request-Id: {{ uuid() }}
`

const exampleEnvironment = `{
  "baseUrl": "https://httpbin.org",
  "user": "reqq"
}
`

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	configFile := filepath.Join(dirFlag, config.Filename)
	exampleFile := filepath.Join(dirFlag, "example"+reqfile.Ext)
	envFile := env.EnvironmentPath(dirFlag, "dev")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return usageError("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(envFile), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(envFile), err)
	}

	cfg := config.DefaultConfig()
	cfg.DefaultEnvironment = "dev"
	cfg.Headers = map[string]string{"User-Agent": "reqq/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleRequest), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	if err := os.WriteFile(envFile, []byte(exampleEnvironment), 0644); err != nil {
		return fmt.Errorf("failed to create environment file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  reqq list")
	fmt.Fprintln(cmd.OutOrStdout(), "  reqq example --dry-run")
	fmt.Fprintln(cmd.OutOrStdout(), "  reqq example")

	return nil
}

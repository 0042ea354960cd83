package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/abdul-hamid-achik/hitcall/packages/suite"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate suite files without sending any call",
	Long: `Parse suite files and build every call against the configured
defaults and data, without sending anything.

Examples:
  hitcall validate users.calls.yaml
  hitcall validate ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITCALL_CONFIG", ""), "Path to config file (env: HITCALL_CONFIG)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	files, err := suite.CollectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, "%w", err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, "no suite files found (expected %s)", strings.Join(suite.Extensions, ", "))
	}

	r := runner.NewRunner(&runner.Config{Defaults: cfg.Defaults, Data: cfg.Data})

	hasErrors := false
	for _, file := range files {
		if _, err := r.CheckFile(file); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return withExitCode(ExitParseError, "validation failed")
	}

	return nil
}

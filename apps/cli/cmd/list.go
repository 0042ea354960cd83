package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the calls in suite files",
	Long: `List every call defined in suite files, in run order.

Examples:
  hitcall list users.calls.yaml
  hitcall list ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := suite.CollectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, "%w", err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, "no suite files found (expected %s)", strings.Join(suite.Extensions, ", "))
	}

	for _, file := range files {
		s, err := suite.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%s):\n", s.Name, file)
		if s.WaitFor != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  wait for %s\n", s.WaitFor.URL)
		}
		for _, call := range s.Calls {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s", call.Name)
			if call.Skip != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (skip: %s)", call.Skip)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}

	return nil
}

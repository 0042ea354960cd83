package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hitcall",
	Short: "Data-driven API call suites.",
	Long: `hitcall runs suites of API calls described in YAML or JSON. Each call
is built from layered defaults and templates over a shared data
accumulator, sent over HTTP, and its response is saved into the
accumulator and checked against status codes, values and JSON schemas.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:]))
}

// run executes the root command with args and returns the exit code.
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.code != ExitTestFailure {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		return exitErr.code
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	return ExitUsageError
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	title := result.File
	if result.Suite != "" && result.Suite != result.File {
		title = fmt.Sprintf("%s (%s)", result.Suite, result.File)
	}
	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+title))

	if result.Err != nil {
		fmt.Fprintf(f.writer, "  %s %s\n\n", red("x"), red(result.Err.Error()))
		if len(result.Results) == 0 {
			return
		}
	}

	for _, r := range result.Results {
		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name)
			if reason := reportedSkipReason(r.SkipReason); reason != "" {
				fmt.Fprintf(f.writer, " (%s)", reason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		}

		if r.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), r.Name, red(fmt.Sprintf("(%v)", r.Error)))
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose && r.Request != nil {
			fmt.Fprintf(f.writer, "    %s %s\n", r.Request.Method, r.Request.URL)
		}
		if f.verbose && r.Record != nil {
			fmt.Fprintf(f.writer, "    Status: %d\n", r.Record.Status)
		}

		for _, line := range failureLines(r) {
			fmt.Fprintf(f.writer, "    %s %s\n", red("→"), line)
		}
	}

	if f.verbose && result.Latency != nil {
		l := result.Latency
		fmt.Fprintf(f.writer, "\n  Latency: min %s, p50 %s, p95 %s, p99 %s, max %s\n",
			l.Min, l.P50, l.P95, l.P99, l.Max)
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Calls: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitcall"), version)
}

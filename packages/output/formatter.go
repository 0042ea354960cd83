package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
)

// Format names.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatJUnit   = "junit"
	FormatTAP     = "tap"
)

// Formats lists the supported format names.
var Formats = []string{FormatConsole, FormatJSON, FormatJUnit, FormatTAP}

// Formatter renders suite results.
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that accumulate results and write
// them once all suites have run.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// New returns the formatter for a format name.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case FormatJUnit:
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case FormatTAP:
		return NewTAPFormatter(TAPWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

const maxValueLen = 100

// formatValue formats a value for display, truncating long renderings.
func formatValue(v any, maxLen int) string {
	str := value.Format(v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

// describeViolation renders a violation as a single line.
func describeViolation(v response.Violation) string {
	target := v.Select
	if target == "" {
		target = "."
	}
	switch v.Type {
	case response.ViolationStatus:
		return fmt.Sprintf("status: expected one of %s, got %s",
			formatValue(v.Expected, maxValueLen), formatValue(v.Actual, maxValueLen))
	case response.ViolationSchema:
		return fmt.Sprintf("schema %s: %s", target, strings.Join(v.Errors, "; "))
	default:
		if v.Key != "" {
			target += " " + v.Key
		}
		return fmt.Sprintf("equal %s: expected %s, got %s",
			target, formatValue(v.Expected, maxValueLen), formatValue(v.Actual, maxValueLen))
	}
}

// failureLines describes why a call did not pass.
func failureLines(r *runner.CallResult) []string {
	if r.Error != nil {
		return []string{r.Error.Error()}
	}
	lines := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		lines = append(lines, describeViolation(v))
	}
	return lines
}

// reportedSkipReason hides the reason of calls skipped by the name filter.
func reportedSkipReason(reason string) string {
	if reason == runner.SkipFiltered {
		return ""
	}
	return reason
}

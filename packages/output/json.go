package output

import (
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
	"github.com/goccy/go-json"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary     `json:"summary"`
	Calls    []JSONCall      `json:"calls"`
	Errors   []JSONFileError `json:"errors,omitempty"`
	Duration float64         `json:"duration"`
	Time     string          `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONCall represents a single call result
type JSONCall struct {
	Name       string               `json:"name"`
	File       string               `json:"file"`
	Suite      string               `json:"suite,omitempty"`
	Passed     bool                 `json:"passed"`
	Skipped    bool                 `json:"skipped,omitempty"`
	SkipReason string               `json:"skipReason,omitempty"`
	Duration   float64              `json:"duration"`
	Error      string               `json:"error,omitempty"`
	Request    *JSONRequest         `json:"request,omitempty"`
	Response   *JSONResponse        `json:"response,omitempty"`
	Violations []response.Violation `json:"violations,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	Status   int           `json:"status"`
	Headers  *value.Object `json:"headers,omitempty"`
	Body     any           `json:"body"`
	Duration float64       `json:"duration"`
}

// JSONFileError records a suite that could not be run.
type JSONFileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// JSONFormatter formats results as a single JSON document
type JSONFormatter struct {
	writer  io.Writer
	results []JSONCall
	errors  []JSONFileError
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONCall, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	if result.Err != nil {
		f.errors = append(f.errors, JSONFileError{File: result.File, Error: result.Err.Error()})
	}

	for _, r := range result.Results {
		call := JSONCall{
			Name:       r.Name,
			File:       result.File,
			Suite:      result.Suite,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			SkipReason: reportedSkipReason(r.SkipReason),
			Duration:   float64(r.Duration.Milliseconds()),
			Violations: r.Violations,
		}

		if r.Error != nil {
			call.Error = r.Error.Error()
		}

		if r.Request != nil {
			call.Request = &JSONRequest{
				Method:  r.Request.Method,
				URL:     r.Request.URL,
				Headers: r.Request.Headers,
			}
		}

		if r.Record != nil {
			call.Response = &JSONResponse{
				Status:   r.Record.Status,
				Headers:  r.Record.Headers,
				Body:     r.Record.Body,
				Duration: float64(r.Record.Duration.Milliseconds()),
			}
		}

		f.results = append(f.results, call)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, JSONFileError{Error: err.Error()})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, c := range f.results {
		if c.Skipped {
			skipped++
		} else if c.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Calls:    f.results,
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

package output

import (
	"bytes"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *runner.RunResult {
	headers := value.NewObject()
	headers.Set("Content-Type", "application/json")

	return &runner.RunResult{
		File:     "users.calls.yaml",
		Suite:    "users",
		Duration: 120 * time.Millisecond,
		Passed:   1,
		Failed:   1,
		Skipped:  2,
		Results: []*runner.CallResult{
			{
				Name:     "create user",
				Passed:   true,
				Duration: 40 * time.Millisecond,
				Request:  &apicall.Request{Method: "POST", URL: "http://localhost/users"},
				Record: &response.Record{
					Status:   201,
					Headers:  headers,
					Body:     value.MustParse(`{"id":1}`),
					Duration: 40 * time.Millisecond,
				},
			},
			{
				Name:     "get user",
				Duration: 30 * time.Millisecond,
				Request:  &apicall.Request{Method: "GET", URL: "http://localhost/users/1"},
				Record:   &response.Record{Status: 404, Headers: value.NewObject()},
				Violations: []response.Violation{
					{Type: response.ViolationStatus, Expected: []any{200.0}, Actual: 404.0},
					{Type: response.ViolationEqual, Select: "body", Key: "name", Expected: "Joe", Actual: nil},
				},
			},
			{Name: "delete user", Skipped: true, SkipReason: "flaky"},
			{Name: "list users", Skipped: true, SkipReason: runner.SkipFiltered},
		},
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	for _, format := range Formats {
		f, err := New(format, &buf, false, true)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	f, err := New("", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	_, err = New("html", &buf, false, true)
	assert.Error(t, err)
}

func TestDescribeViolation(t *testing.T) {
	tests := []struct {
		name      string
		violation response.Violation
		expected  string
	}{
		{
			name:      "status",
			violation: response.Violation{Type: response.ViolationStatus, Expected: []any{200.0, 201.0}, Actual: 500.0},
			expected:  "status: expected one of [200,201], got 500",
		},
		{
			name:      "equal field",
			violation: response.Violation{Type: response.ViolationEqual, Select: "body.user", Key: "id", Expected: 2.0, Actual: "2"},
			expected:  "equal body.user id: expected 2, got 2",
		},
		{
			name:      "equal whole value",
			violation: response.Violation{Type: response.ViolationEqual, Expected: nil, Actual: true},
			expected:  "equal .: expected null, got true",
		},
		{
			name:      "schema",
			violation: response.Violation{Type: response.ViolationSchema, Select: "body", Errors: []string{"id is required", "name must be string"}},
			expected:  "schema body: id is required; name must be string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describeViolation(tt.violation))
		})
	}
}

func TestFormatValue_Truncates(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	out := formatValue(string(long), maxValueLen)
	assert.Len(t, out, maxValueLen+3)
	assert.Equal(t, "...", out[maxValueLen:])
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	result := sampleResult()
	result.Latency = runner.NewLatencyStats(result.Results)
	f.FormatResult(result)
	out := buf.String()

	assert.Contains(t, out, "Running: users (users.calls.yaml)")
	assert.Contains(t, out, "✓ create user (40ms)")
	assert.Contains(t, out, "✗ get user (30ms)")
	assert.Contains(t, out, "GET http://localhost/users/1")
	assert.Contains(t, out, "Status: 404")
	assert.Contains(t, out, "status: expected one of [200], got 404")
	assert.Contains(t, out, "equal body name: expected Joe, got null")
	assert.Contains(t, out, "- delete user (flaky)")
	assert.Contains(t, out, "- list users\n")
	assert.Contains(t, out, "Latency:")
	assert.Contains(t, out, "Calls: 1 passed, 1 failed, 2 skipped, 4 total")
}

func TestConsoleFormatter_SuiteError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(&runner.RunResult{File: "broken.calls.yaml", Err: errors.New("parsing file: bad yaml")})
	assert.Contains(t, buf.String(), "parsing file: bad yaml")
	assert.NotContains(t, buf.String(), "Calls:")

	buf.Reset()
	f.FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	f.FormatHeader("1.0.0")
	assert.Equal(t, "hitcall 1.0.0\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(sampleResult())
	f.FormatResult(&runner.RunResult{File: "broken.calls.yaml", Err: errors.New("bad yaml")})
	require.NoError(t, f.Flush(time.Second))

	var out struct {
		Summary JSONSummary `json:"summary"`
		Calls   []struct {
			Name       string           `json:"name"`
			SkipReason string           `json:"skipReason"`
			Response   map[string]any   `json:"response"`
			Violations []map[string]any `json:"violations"`
		} `json:"calls"`
		Errors   []JSONFileError `json:"errors"`
		Duration float64         `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, JSONSummary{Total: 4, Passed: 1, Failed: 1, Skipped: 2}, out.Summary)
	assert.Equal(t, 1000.0, out.Duration)
	require.Len(t, out.Calls, 4)

	assert.Equal(t, 201.0, out.Calls[0].Response["status"])
	assert.Equal(t, map[string]any{"id": 1.0}, out.Calls[0].Response["body"])

	require.Len(t, out.Calls[1].Violations, 2)
	assert.Equal(t, "status", out.Calls[1].Violations[0]["type"])
	assert.Equal(t, "name", out.Calls[1].Violations[1]["key"])

	assert.Equal(t, "flaky", out.Calls[2].SkipReason)
	assert.Empty(t, out.Calls[3].SkipReason)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "broken.calls.yaml", out.Errors[0].File)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatResult(sampleResult())
	f.FormatResult(&runner.RunResult{File: "broken.calls.yaml", Err: errors.New("bad yaml")})
	require.NoError(t, f.Flush(time.Second))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	assert.Equal(t, "hitcall", suites.Name)
	assert.Equal(t, 5, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.Equal(t, 2, suites.Skipped)
	require.Len(t, suites.TestSuites, 2)

	users := suites.TestSuites[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.TestCases, 4)
	require.NotNil(t, users.TestCases[1].Failure)
	assert.Equal(t, "2 check(s) failed", users.TestCases[1].Failure.Message)
	assert.Contains(t, users.TestCases[1].Failure.Content, "status: expected one of [200], got 404")
	require.NotNil(t, users.TestCases[3].Skipped)
	assert.Empty(t, users.TestCases[3].Skipped.Message)

	broken := suites.TestSuites[1]
	require.Len(t, broken.TestCases, 1)
	require.NotNil(t, broken.TestCases[0].Error)
	assert.Equal(t, "bad yaml", broken.TestCases[0].Error.Message)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))
	out := buf.String()

	assert.Contains(t, out, "TAP version 13\n1..4\n")
	assert.Contains(t, out, "ok 1 - create user\n")
	assert.Contains(t, out, "not ok 2 - get user\n")
	assert.Contains(t, out, `- "status: expected one of [200], got 404"`)
	assert.Contains(t, out, "ok 3 - delete user # SKIP flaky\n")
	assert.Contains(t, out, "ok 4 - list users # SKIP\n")
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain text", escapeYAML("plain text"))
	assert.Equal(t, `"key: \"value\""`, escapeYAML(`key: "value"`))
}

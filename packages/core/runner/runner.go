package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/builtin"
	"github.com/abdul-hamid-achik/hitcall/packages/core/env"
	"github.com/abdul-hamid-achik/hitcall/packages/core/logging"
	"github.com/abdul-hamid-achik/hitcall/packages/core/merge"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/abdul-hamid-achik/hitcall/packages/http"
	"github.com/abdul-hamid-achik/hitcall/packages/response"
	"github.com/abdul-hamid-achik/hitcall/packages/schema"
	"github.com/abdul-hamid-achik/hitcall/packages/suite"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultConcurrency is the default number of suites run at once in parallel mode
	DefaultConcurrency = 5

	// Accumulator keys set by the runner.
	RunIDKey = "$run_id"
	SuiteKey = "$suite"
)

// Transport executes a built request.
type Transport interface {
	Execute(ctx context.Context, req *apicall.Request) (*response.Record, error)
}

type Runner struct {
	transport Transport
	inspector *response.Inspector
	magic     *builtin.Registry
	limiter   *rate.Limiter
	logger    *slog.Logger
	config    *Config
	runID     string
}

type Config struct {
	// Timeout bounds each call, zero leaves it to the transport.
	Timeout     time.Duration
	Bail        bool
	NameFilter  string
	Parallel    bool
	Concurrency int
	// Rate caps calls per second across all suites, zero is unlimited.
	Rate float64
	// Defaults is config.defaults; its api_call key is the base of every call.
	Defaults *value.Object
	// Data seeds every suite's accumulator, under the suite's own data.
	Data *value.Object
	// Env is exposed to templates under $env.
	Env *value.Object
}

type Option func(*Runner)

// WithTransport replaces the default HTTP client.
func WithTransport(t Transport) Option {
	return func(r *Runner) {
		r.transport = t
	}
}

func WithInspector(i *response.Inspector) Option {
	return func(r *Runner) {
		r.inspector = i
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

func WithRegistry(reg *builtin.Registry) Option {
	return func(r *Runner) {
		r.magic = reg
	}
}

func NewRunner(cfg *Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Runner{
		config: cfg,
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.transport == nil {
		r.transport = http.NewClient()
	}
	if r.inspector == nil {
		r.inspector = response.NewInspector(response.WithValidator(schema.NewValidator()))
	}
	if r.magic == nil {
		r.magic = builtin.NewRegistry()
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	return r
}

// RunID identifies this runner's run; it is exposed as $run_id.
func (r *Runner) RunID() string {
	return r.runID
}

type RunResult struct {
	File     string
	Suite    string
	Results  []*CallResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Latency  *LatencyStats
	// Err is set when the suite could not be loaded or started.
	Err error
	// Data is the accumulator after the last call.
	Data *value.Object
}

type CallResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Request    *apicall.Request
	Record     *response.Record
	Violations []response.Violation
	Error      error
}

// RunFile parses and runs one suite file.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	s, err := suite.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.RunSuite(ctx, s), nil
}

// RunFiles runs every file, in parallel when configured. Results keep the
// order of paths; load failures are reported in RunResult.Err.
func (r *Runner) RunFiles(ctx context.Context, paths []string) []*RunResult {
	results := make([]*RunResult, len(paths))
	run := func(i int) {
		res, err := r.RunFile(ctx, paths[i])
		if err != nil {
			res = &RunResult{File: paths[i], Err: err}
		}
		results[i] = res
	}

	if !r.config.Parallel {
		for i := range paths {
			run(i)
			if r.config.Bail && !results[i].OK() {
				for j := i + 1; j < len(paths); j++ {
					results[j] = &RunResult{File: paths[j], Err: ErrBailed}
				}
				break
			}
		}
		return results
	}

	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for i := range paths {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			run(idx)
		}(i)
	}
	wg.Wait()
	return results
}

// ErrBailed marks suites not run because an earlier one failed.
var ErrBailed = errors.New("not run: an earlier suite failed")

// Skip reasons set by the runner.
const (
	SkipFiltered = "filtered out"
	SkipBailed   = "bail: an earlier call failed"
)

// OK reports whether the suite loaded and no call failed.
func (res *RunResult) OK() bool {
	return res.Err == nil && res.Failed == 0
}

// RunSuite runs the calls of s in order against one accumulator.
func (r *Runner) RunSuite(ctx context.Context, s *suite.Suite) *RunResult {
	start := time.Now()
	result := &RunResult{File: s.Path, Suite: s.Name}
	logger := r.logger.With(logging.SuiteKey, s.Name, logging.RunIDKey, r.runID)

	data := r.newAccumulator(s)
	result.Data = data

	if s.WaitFor != nil {
		if err := r.waitForService(ctx, s.WaitFor, data); err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
	}

	bailed := false
	for _, call := range s.Calls {
		if call.Skip == "" && r.config.NameFilter != "" && !matchesPattern(call.Name, r.config.NameFilter) {
			result.Results = append(result.Results, &CallResult{Name: call.Name, Skipped: true, SkipReason: SkipFiltered})
			result.Skipped++
			continue
		}
		if call.Skip != "" || bailed {
			reason := call.Skip
			if bailed {
				reason = SkipBailed
			}
			result.Results = append(result.Results, &CallResult{Name: call.Name, Skipped: true, SkipReason: reason})
			result.Skipped++
			continue
		}

		callResult := r.runCall(ctx, logger, call, data)
		result.Results = append(result.Results, callResult)

		if callResult.Passed {
			result.Passed++
		} else {
			result.Failed++
			if r.config.Bail {
				bailed = true
			}
		}
	}

	result.Latency = NewLatencyStats(result.Results)
	result.Duration = time.Since(start)
	return result
}

// newAccumulator layers suite data over config data and adds the runner's
// own keys.
func (r *Runner) newAccumulator(s *suite.Suite) *value.Object {
	data := merge.Merge(r.config.Data, s.Data)
	data.Set(RunIDKey, r.runID)
	data.Set(SuiteKey, s.Name)
	if r.config.Env != nil {
		data.Set(env.Key, r.config.Env.Clone())
	}
	return data
}

func (r *Runner) runCall(ctx context.Context, logger *slog.Logger, call *suite.Call, data *value.Object) *CallResult {
	result := &CallResult{Name: call.Name}
	logger = logger.With(logging.CallKey, call.Name)

	r.magic.Seed(data)

	d, err := apicall.Parse(call.Spec, apicall.Context{
		Data:   data,
		Config: apicall.Config{Defaults: r.config.Defaults},
	})
	if err != nil {
		result.Error = fmt.Errorf("building call: %w", err)
		return result
	}

	req, err := d.Request()
	if err != nil {
		result.Error = fmt.Errorf("building request: %w", err)
		return result
	}
	result.Request = req

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			result.Error = err
			return result
		}
	}

	callCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	rec, err := r.transport.Execute(callCtx, req)
	result.Duration = time.Since(start)
	if err != nil {
		logger.Warn("call failed", logging.MethodKey, req.Method, logging.URLKey, req.URL, "error", err)
		result.Error = err
		return result
	}
	result.Record = rec
	if rec.Duration > 0 {
		result.Duration = rec.Duration
	}

	logger.Debug("call finished",
		logging.MethodKey, req.Method,
		logging.URLKey, req.URL,
		logging.StatusKey, rec.Status,
		logging.DurationKey, result.Duration.Milliseconds(),
	)

	violations, err := r.inspector.Process(d, rec, data)
	if err != nil {
		result.Error = fmt.Errorf("inspecting response: %w", err)
		return result
	}
	result.Violations = violations
	result.Passed = len(violations) == 0
	return result
}

// matchesPattern matches a call name against a filter with an optional
// leading or trailing * wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}

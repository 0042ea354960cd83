package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/config"
	"github.com/abdul-hamid-achik/hitcall/packages/core/env"
	"github.com/abdul-hamid-achik/hitcall/packages/core/logging"
	"github.com/abdul-hamid-achik/hitcall/packages/core/runner"
	"github.com/abdul-hamid-achik/hitcall/packages/http"
	"github.com/abdul-hamid-achik/hitcall/packages/output"
	"github.com/abdul-hamid-achik/hitcall/packages/suite"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run suites of API calls",
	Long: `Run the calls defined in .calls.yaml, .calls.yml or .calls.json files.

Examples:
  hitcall run users.calls.yaml
  hitcall run ./suites/ --bail
  hitcall run ./suites/ --parallel --concurrency 4 --rate 20
  hitcall run users.calls.yaml --filter "create*" --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag      string
	outputFlag      string
	outputFileFlag  string
	verboseFlag     bool
	noColorFlag     bool
	timeoutFlag     string
	rateFlag        float64
	parallelFlag    bool
	concurrencyFlag int
	bailFlag        bool
	watchFlag       bool
	insecureFlag    bool
	proxyFlag       string
	filterFlag      string
	envFileFlag     []string
	envPrefixFlag   string
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITCALL_CONFIG", ""), "Path to config file (env: HITCALL_CONFIG)")
	runCmd.Flags().StringVarP(&filterFlag, "filter", "n", getEnvString("HITCALL_FILTER", ""), "Run only calls whose name matches the pattern, * matches anything (env: HITCALL_FILTER)")
	runCmd.Flags().StringSliceVar(&envFileFlag, "env-file", getEnvList("HITCALL_ENV_FILE", []string{".env"}), "Files exposed under $env, missing files are skipped (env: HITCALL_ENV_FILE)")
	runCmd.Flags().StringVar(&envPrefixFlag, "env-prefix", getEnvString("HITCALL_ENV_PREFIX", ""), "Expose only process variables with this prefix under $env (env: HITCALL_ENV_PREFIX)")

	// Output flags
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITCALL_OUTPUT", ""), "Output format: "+strings.Join(output.Formats, ", ")+" (env: HITCALL_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HITCALL_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITCALL_OUTPUT_FILE)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HITCALL_VERBOSE", false), "Show requests, statuses and latency (env: HITCALL_VERBOSE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITCALL_NO_COLOR", false), "Disable colored output (env: HITCALL_NO_COLOR)")

	// Execution flags
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITCALL_TIMEOUT", ""), "Per-call timeout, e.g. 30s, 500ms (env: HITCALL_TIMEOUT)")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", getEnvFloat("HITCALL_RATE", 0), "Maximum calls per second, 0 is unlimited (env: HITCALL_RATE)")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("HITCALL_PARALLEL", false), "Run suites in parallel (env: HITCALL_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("HITCALL_CONCURRENCY", 0), "Suites run at once in parallel mode (env: HITCALL_CONCURRENCY)")
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HITCALL_BAIL", false), "Stop on first failure (env: HITCALL_BAIL)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch suite files for changes and re-run them")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HITCALL_PROXY", ""), "Proxy URL for HTTP requests (env: HITCALL_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITCALL_INSECURE", false), "Disable SSL certificate validation (env: HITCALL_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		return strings.Split(val, ",")
	}
	return defaultVal
}

// flagSet reports whether a flag was given on the command line or through
// its environment variable.
func flagSet(cmd *cobra.Command, name, envKey string) bool {
	return cmd.Flags().Changed(name) || os.Getenv(envKey) != ""
}

// flagConfig collects the flags that override the config file.
func flagConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{
		Proxy:       proxyFlag,
		Output:      strings.ToLower(outputFlag),
		OutputFile:  outputFileFlag,
		Concurrency: concurrencyFlag,
		Rate:        rateFlag,
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}

	if flagSet(cmd, "verbose", "HITCALL_VERBOSE") {
		cfg.Verbose = config.BoolPtr(verboseFlag)
	}
	if flagSet(cmd, "no-color", "HITCALL_NO_COLOR") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	if flagSet(cmd, "parallel", "HITCALL_PARALLEL") {
		cfg.Parallel = config.BoolPtr(parallelFlag)
	}
	if flagSet(cmd, "bail", "HITCALL_BAIL") {
		cfg.Bail = config.BoolPtr(bailFlag)
	}
	if flagSet(cmd, "insecure", "HITCALL_INSECURE") {
		cfg.ValidateSSL = config.BoolPtr(!insecureFlag)
	}

	return cfg, nil
}

// loadRunConfig layers the flags over the config file.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, "%w", err)
	}
	flags, err := flagConfig(cmd)
	if err != nil {
		return nil, withExitCode(ExitUsageError, "%w", err)
	}
	return fileConfig.Merge(flags), nil
}

// newClient builds the HTTP transport from the config.
func newClient(cfg *config.Config) *http.Client {
	opts := []http.ClientOption{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, http.WithDefaultHeader(k, v))
	}
	return http.NewClient(opts...)
}

// newRunner wires the config, $env variables and logger into a runner.
func newRunner(cfg *config.Config) (*runner.Runner, error) {
	vars, err := env.Variables(env.Options{Prefix: envPrefixFlag, Files: envFileFlag})
	if err != nil {
		return nil, withExitCode(ExitConfigError, "loading env: %w", err)
	}

	return runner.NewRunner(&runner.Config{
		Timeout:     cfg.TimeoutDuration(),
		Bail:        cfg.GetBail(),
		NameFilter:  filterFlag,
		Parallel:    cfg.GetParallel(),
		Concurrency: cfg.Concurrency,
		Rate:        cfg.Rate,
		Defaults:    cfg.Defaults,
		Data:        cfg.Data,
		Env:         vars,
	},
		runner.WithTransport(newClient(cfg)),
		runner.WithLogger(logging.New(logging.FromEnv())),
	), nil
}

// runSummary totals the results of one pass over the files.
type runSummary struct {
	passed      int
	failed      int
	skipped     int
	parseErrors int
}

// runOnce runs files, reports each result and flushes the formatter.
func runOnce(ctx context.Context, r *runner.Runner, files []string, formatter output.Formatter) (runSummary, error) {
	var sum runSummary
	start := time.Now()

	for _, result := range r.RunFiles(ctx, files) {
		formatter.FormatResult(result)
		sum.passed += result.Passed
		sum.failed += result.Failed
		sum.skipped += result.Skipped
		if result.Err != nil && !errors.Is(result.Err, runner.ErrBailed) {
			sum.parseErrors++
		}
	}

	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(time.Since(start)); err != nil {
			return sum, fmt.Errorf("error writing output: %w", err)
		}
	}
	return sum, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	var outWriter io.Writer = cmd.OutOrStdout()
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return withExitCode(ExitConfigError, "cannot create output file: %w", err)
		}
		defer f.Close()
		outWriter = f
	}

	newFormatter := func() (output.Formatter, error) {
		return output.New(cfg.Output, outWriter, cfg.GetVerbose(), cfg.GetNoColor())
	}
	formatter, err := newFormatter()
	if err != nil {
		return withExitCode(ExitUsageError, "%w", err)
	}

	formatter.FormatHeader(version)

	files, err := suite.CollectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitUsageError, "%w", err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, "no suite files found (expected %s)", strings.Join(suite.Extensions, ", "))
	}

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runOnce(ctx, r, files, formatter)
	if err != nil {
		return err
	}

	if !watchFlag {
		switch {
		case sum.parseErrors > 0:
			return withExitCode(ExitParseError, "%d suite(s) could not be run", sum.parseErrors)
		case sum.failed > 0:
			return withExitCode(ExitTestFailure, "%d call(s) failed", sum.failed)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, func() {
		formatter, err := newFormatter()
		if err != nil {
			return
		}
		if _, err := runOnce(ctx, r, files, formatter); err != nil {
			formatter.FormatError(err)
		}
	})
}

// watch re-runs the suites whenever a suite file under the watched
// directories is written, until ctx is canceled.
func watch(ctx context.Context, cmd *cobra.Command, args, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) || !suite.IsSuiteFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running suites...\n\n", event.Name)
				rerun()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

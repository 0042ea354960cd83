package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcall/packages/core/merge"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config represents the hitcall configuration
type Config struct {
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Sent with every call unless the call sets them
	Output          string            `json:"output,omitempty" yaml:"output,omitempty"`   // console or json
	OutputFile      string            `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
	Parallel        *bool             `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Concurrency     int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"` // Suites run at once
	Rate            float64           `json:"rate,omitempty" yaml:"rate,omitempty"`               // Calls per second, 0 is unlimited
	Bail            *bool             `json:"bail,omitempty" yaml:"bail,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`

	// Defaults holds defaults layered under every call. Its api_call key
	// is the base descriptor.
	Defaults *value.Object `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	// Data seeds the accumulator of every suite.
	Data *value.Object `json:"data,omitempty" yaml:"data,omitempty"`
}

// BoolPtr returns a pointer to b, for setting optional flags.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetParallel returns the parallel setting, defaulting to false
func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the per-call timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".hitcall.json",
	"hitcall.json",
	".hitcall.yaml",
	"hitcall.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. YAML is
// chosen by extension, anything else is read as JSON.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if other.Defaults != nil {
		result.Defaults = merge.Merge(result.Defaults, other.Defaults)
	}
	if other.Data != nil {
		result.Data = merge.Merge(result.Data, other.Data)
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Output:          "console",
		Parallel:        BoolPtr(false),
		Concurrency:     5,
		Bail:            BoolPtr(false),
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.Output == defaults.Output &&
		c.OutputFile == defaults.OutputFile &&
		c.GetParallel() == defaults.GetParallel() &&
		c.Concurrency == defaults.Concurrency &&
		c.Rate == defaults.Rate &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.Defaults.Len() == 0 &&
		c.Data.Len() == 0
}

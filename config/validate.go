package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate reports every problem at once, or nil.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level: must be one of debug, info, warn, error; got %q", c.LogLevel))
	}
	for name, path := range c.BinaryPaths() {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, fmt.Sprintf("binaries.%s: required", strings.ReplaceAll(name, "-", "_")))
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		errs = append(errs, "paths.data_dir: required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if strings.ContainsAny(c.Batch.Suffix, `/\`) {
		errs = append(errs, fmt.Sprintf("batch.suffix: must not contain path separators, got %q", c.Batch.Suffix))
	}
	if d, err := time.ParseDuration(c.Probe.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Sprintf("probe.timeout: must be a positive duration, got %q", c.Probe.Timeout))
	}
	if c.History.Keep < 0 {
		errs = append(errs, fmt.Sprintf("history.keep: must not be negative, got %d", c.History.Keep))
	}

	if len(errs) == 0 {
		return nil
	}
	slices.Sort(errs)
	return &ConfigError{Errors: errs}
}

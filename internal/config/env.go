package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/spaced-go/internal/utils"
)

// Environment variable names.
const (
	EnvTaskFile         = "SPACED_FILE"
	EnvIntervalModifier = "SPACED_INTERVAL_MODIFIER"
	EnvMaxInterval      = "SPACED_MAX_INTERVAL"
	EnvIntervals        = "SPACED_INTERVALS"
	EnvLogLevel         = "SPACED_LOG_LEVEL"
	EnvLogFormat        = "SPACED_LOG_FORMAT"
	EnvLogTimestamps    = "SPACED_LOG_TIMESTAMPS"
	EnvLogCaller        = "SPACED_LOG_CALLER"
	EnvLogDir           = "SPACED_LOG_DIR"
	EnvLogJournal       = "SPACED_LOG_JOURNAL"
	EnvHookCommand      = "SPACED_HOOK"
)

// loadFromEnv overrides config from environment variables and records the
// source of each value it sets. Unparsable numbers are ignored and the prior
// value kept; an unparsable interval list is an error.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvTaskFile); v != "" {
		cfg.TaskFile = v
		set("task_file")
	}
	if v := os.Getenv(EnvIntervalModifier); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.GrowthFactor = f
			set("growth_factor")
		}
	}
	if v := os.Getenv(EnvMaxInterval); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.MaxInterval = i
			set("max_interval")
		}
	}
	if v := os.Getenv(EnvIntervals); v != "" {
		intervals, err := utils.ParseIntList(v, ",")
		if err != nil {
			return fmt.Errorf("couldn't get custom intervals from %s: %w", EnvIntervals, err)
		}
		cfg.Intervals = intervals
		set("intervals")
	}

	// Logging configuration
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv(EnvLogTimestamps); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv(EnvLogCaller); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
		set("log_dir")
	}
	if v := os.Getenv(EnvLogJournal); v != "" {
		cfg.LogJournal = boolFromString(v)
		set("log_journal")
	}
	if v := os.Getenv(EnvHookCommand); v != "" {
		cfg.HookCommand = v
		set("hook_command")
	}
	return nil
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

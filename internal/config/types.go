package config

import "github.com/nibzard/spaced-go/internal/schedule"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
	SourceArg      ConfigSource = "argument"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings collects non-fatal problems such as unknown keys.
	Warnings []string
}

// Default values.
const (
	DefaultTaskFile     = "spaced.txt"
	DefaultGrowthFactor = schedule.DefaultGrowthFactor
	DefaultMaxInterval  = schedule.DefaultMaxInterval
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config holds the full configuration for spaced.
type Config struct {
	// Paths
	TaskFile string `toml:"task_file" json:"task_file"`

	// Scheduling
	GrowthFactor float64 `toml:"growth_factor" json:"growth_factor"`
	MaxInterval  int     `toml:"max_interval" json:"max_interval"`
	Intervals    []int   `toml:"intervals" json:"intervals"` // Interval ladder; empty means geometric growth

	// Logging configuration
	LogLevel      string `toml:"log_level" json:"log_level"`
	LogFormat     string `toml:"log_format" json:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps" json:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller" json:"log_caller"`
	LogDir        string `toml:"log_dir" json:"log_dir"` // Per-run JSONL logs; empty disables them
	LogJournal    bool   `toml:"log_journal" json:"log_journal"`

	// Hook command run after every task file change; empty disables it
	HookCommand string `toml:"hook_command" json:"hook_command"`

	// Project root (computed)
	ProjectRoot string `toml:"-" json:"-"`
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return []string{
		"task_file",
		"growth_factor",
		"max_interval",
		"intervals",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_dir",
		"log_journal",
		"hook_command",
	}
}


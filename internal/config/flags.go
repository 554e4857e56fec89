package config

import (
	"flag"
	"fmt"

	"github.com/nibzard/spaced-go/internal/utils"
)

// parseFlags defines the global flags on fs, parses args, and records a flag
// source for every flag that was set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("spaced", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.TaskFile, "file", cfg.TaskFile, "Path to task file")

	// Scheduling
	fs.Float64Var(&cfg.GrowthFactor, "growth-factor", cfg.GrowthFactor, "Interval multiplier for successful reviews")
	fs.IntVar(&cfg.MaxInterval, "max-interval", cfg.MaxInterval, "Maximum interval in days")
	intervals := fs.String("intervals", utils.FormatIntList(cfg.Intervals, ","), "Comma-separated interval ladder (e.g., 1,7,30)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for per-run JSONL logs")
	fs.BoolVar(&cfg.LogJournal, "log-journal", cfg.LogJournal, "Also log to the systemd journal")

	// Hooks
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Command to run after each task file change")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fieldForFlag := map[string]string{
		"file":          "task_file",
		"growth-factor": "growth_factor",
		"max-interval":  "max_interval",
		"intervals":     "intervals",
		"log-level":     "log_level",
		"log-format":    "log_format",
		"log-dir":       "log_dir",
		"log-journal":   "log_journal",
		"hook":          "hook_command",
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "intervals" {
			values, err := utils.ParseIntList(*intervals, ",")
			if err != nil {
				visitErr = fmt.Errorf("-intervals: %w", err)
				return
			}
			cfg.Intervals = values
		}
		if field, ok := fieldForFlag[f.Name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	})
	return visitErr
}

package config

import (
	"strconv"

	"github.com/nibzard/spaced-go/internal/logging"
	"github.com/nibzard/spaced-go/internal/schedule"
	"github.com/nibzard/spaced-go/internal/utils"
)

// Policy returns the scheduling policy described by the config.
func (c *Config) Policy() schedule.Policy {
	return schedule.Policy{
		GrowthFactor: c.GrowthFactor,
		MaxInterval:  c.MaxInterval,
		Ladder:       schedule.Ladder(c.Intervals),
	}
}

// LogOptions returns the logging options described by the config.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Timestamps: c.LogTimestamps,
		Caller:     c.LogCaller,
		Dir:        c.LogDir,
		Journal:    c.LogJournal,
		TaskFile:   c.TaskFile,
	}
}

// Value formats the named field for display. Unknown names yield "".
func (c *Config) Value(field string) string {
	switch field {
	case "task_file":
		return c.TaskFile
	case "growth_factor":
		return strconv.FormatFloat(c.GrowthFactor, 'g', -1, 64)
	case "max_interval":
		return strconv.Itoa(c.MaxInterval)
	case "intervals":
		if len(c.Intervals) == 0 {
			return "(geometric)"
		}
		return utils.FormatIntList(c.Intervals, ",")
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "log_dir":
		if c.LogDir == "" {
			return "(disabled)"
		}
		return c.LogDir
	case "log_journal":
		return strconv.FormatBool(c.LogJournal)
	case "hook_command":
		if c.HookCommand == "" {
			return "(none)"
		}
		return c.HookCommand
	default:
		return ""
	}
}

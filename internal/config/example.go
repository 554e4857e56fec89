package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# spaced configuration file
# Values can be overridden by SPACED_* environment variables or CLI flags

# Task file (relative to the current directory; supports ~ expansion)
task_file = "spaced.txt"

# Interval multiplier for a successful review (must be > 1)
growth_factor = 2.5

# Upper bound for geometric intervals, in days
max_interval = 730

# Interval ladder in days. When set it replaces geometric growth:
# a successful review moves to the next larger rung, a hard one to the
# rung at or below the current interval.
# intervals = [1, 7, 30, 90, 365]

# Logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false

# Per-run JSONL logs (disabled when empty)
# log_dir = "~/.spaced/logs"

# Also log to the systemd journal
log_journal = false

# Command run after every change to the task file, called as
#   <command> <event> <index> <task line> <task file>
# hook_command = "~/.spaced/commit-tasks.sh"
`
}

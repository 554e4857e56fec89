// Package config tests configuration loading.
package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/spaced-go/internal/schedule"
)

// isolate points every config lookup at fresh temp directories and clears
// the SPACED_* environment. It returns the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		EnvTaskFile, EnvIntervalModifier, EnvMaxInterval, EnvIntervals,
		EnvLogLevel, EnvLogFormat, EnvLogTimestamps, EnvLogCaller,
		EnvLogDir, EnvLogJournal, EnvHookCommand,
	} {
		t.Setenv(name, "")
	}
	wd := t.TempDir()
	t.Chdir(wd)
	return wd
}

func load(t *testing.T, args ...string) *ConfigWithSources {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loaded, err := LoadWithSources(fs, args)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	return loaded
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TaskFile != DefaultTaskFile {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, DefaultTaskFile)
	}
	if cfg.GrowthFactor != DefaultGrowthFactor {
		t.Errorf("GrowthFactor: got %v, want %v", cfg.GrowthFactor, DefaultGrowthFactor)
	}
	if cfg.MaxInterval != DefaultMaxInterval {
		t.Errorf("MaxInterval: got %d, want %d", cfg.MaxInterval, DefaultMaxInterval)
	}
	if cfg.Intervals != nil {
		t.Errorf("Intervals: got %v, want nil", cfg.Intervals)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadDefaults(t *testing.T) {
	wd := isolate(t)
	loaded := load(t)
	cfg := loaded.Config

	if cfg.TaskFile != filepath.Join(wd, DefaultTaskFile) {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, filepath.Join(wd, DefaultTaskFile))
	}
	if cfg.ProjectRoot != wd {
		t.Errorf("ProjectRoot: got %q, want %q", cfg.ProjectRoot, wd)
	}
	if len(loaded.Files) != 0 {
		t.Errorf("Files: got %v, want none", loaded.Files)
	}
	for _, field := range Fields() {
		if loaded.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, loaded.Sources[field])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "spaced.toml")
	writeFile(t, configFile, `task_file = "custom.txt"
growth_factor = 3.0
intervals = [1, 7, 30]
log_everything = true
`)

	cfg := &Config{}
	setDefaults(cfg)
	result := &ConfigWithSources{Config: cfg, Sources: map[string]ConfigSource{}}
	if err := loadConfigFile(cfg, configFile, result, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.TaskFile != "custom.txt" {
		t.Errorf("TaskFile: got %q, want custom.txt", cfg.TaskFile)
	}
	if cfg.GrowthFactor != 3.0 {
		t.Errorf("GrowthFactor: got %v, want 3", cfg.GrowthFactor)
	}
	if cfg.MaxInterval != DefaultMaxInterval {
		t.Errorf("MaxInterval changed to %d", cfg.MaxInterval)
	}
	if len(cfg.Intervals) != 3 || cfg.Intervals[2] != 30 {
		t.Errorf("Intervals: got %v", cfg.Intervals)
	}
	if result.Sources["task_file"] != SourceProjFile || result.Sources["growth_factor"] != SourceProjFile {
		t.Errorf("sources not recorded: %v", result.Sources)
	}
	if _, ok := result.Sources["max_interval"]; ok {
		t.Errorf("max_interval should not have a file source")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "log_everything") {
		t.Errorf("Warnings: got %v", result.Warnings)
	}
}

func TestLoadConfigFileInvalidTOML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "spaced.toml")
	writeFile(t, configFile, "growth_factor = \n")

	cfg := &Config{}
	result := &ConfigWithSources{Config: cfg, Sources: map[string]ConfigSource{}}
	err := loadConfigFile(cfg, configFile, result, SourceProjFile)
	var parseErr toml.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected toml.ParseError, got %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	wd := isolate(t)
	home := os.Getenv("HOME")

	writeFile(t, filepath.Join(home, ".spaced", "spaced.toml"), `growth_factor = 2.0
max_interval = 100
`)
	writeFile(t, filepath.Join(wd, "spaced.toml"), `max_interval = 200
log_level = "DEBUG"
`)
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvTaskFile, "env.txt")

	loaded := load(t, "-file", "flag.txt", "review")
	cfg := loaded.Config

	if cfg.GrowthFactor != 2.0 {
		t.Errorf("GrowthFactor: got %v, want 2 from user file", cfg.GrowthFactor)
	}
	if cfg.MaxInterval != 200 {
		t.Errorf("MaxInterval: got %d, want 200 from project file", cfg.MaxInterval)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn from env", cfg.LogLevel)
	}
	if cfg.TaskFile != filepath.Join(wd, "flag.txt") {
		t.Errorf("TaskFile: got %q, want flag.txt", cfg.TaskFile)
	}

	want := map[string]ConfigSource{
		"growth_factor": SourceUserFile,
		"max_interval":  SourceProjFile,
		"log_level":     SourceEnv,
		"task_file":     SourceFlag,
		"log_format":    SourceDefault,
	}
	for field, source := range want {
		if loaded.Sources[field] != source {
			t.Errorf("source of %s: got %q, want %q", field, loaded.Sources[field], source)
		}
	}
	if len(loaded.Files) != 2 {
		t.Errorf("Files: got %v, want user and project files", loaded.Files)
	}
}

func TestLoadHiddenProjectFile(t *testing.T) {
	wd := isolate(t)
	writeFile(t, filepath.Join(wd, ".spaced.toml"), "max_interval = 42\n")

	loaded := load(t)
	if loaded.Config.MaxInterval != 42 {
		t.Errorf("MaxInterval: got %d, want 42", loaded.Config.MaxInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvIntervalModifier, "3.5")
	t.Setenv(EnvMaxInterval, "365")
	t.Setenv(EnvIntervals, "30, 1,7,7")
	t.Setenv(EnvLogTimestamps, "yes")
	t.Setenv(EnvLogJournal, "0")
	t.Setenv(EnvHookCommand, "/usr/local/bin/commit-tasks")

	loaded := load(t)
	cfg := loaded.Config

	if cfg.GrowthFactor != 3.5 {
		t.Errorf("GrowthFactor: got %v, want 3.5", cfg.GrowthFactor)
	}
	if cfg.MaxInterval != 365 {
		t.Errorf("MaxInterval: got %d, want 365", cfg.MaxInterval)
	}
	wantLadder := []int{1, 7, 30}
	if len(cfg.Intervals) != len(wantLadder) {
		t.Fatalf("Intervals: got %v, want %v", cfg.Intervals, wantLadder)
	}
	for i, v := range wantLadder {
		if cfg.Intervals[i] != v {
			t.Errorf("Intervals: got %v, want %v", cfg.Intervals, wantLadder)
			break
		}
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps: want true")
	}
	if cfg.LogJournal {
		t.Error("LogJournal: want false")
	}
	if cfg.HookCommand != "/usr/local/bin/commit-tasks" {
		t.Errorf("HookCommand: got %q", cfg.HookCommand)
	}
	if loaded.Sources["intervals"] != SourceEnv {
		t.Errorf("source of intervals: got %q", loaded.Sources["intervals"])
	}
}

func TestLoadFromEnvIgnoresBadNumbers(t *testing.T) {
	isolate(t)
	t.Setenv(EnvIntervalModifier, "fast")
	t.Setenv(EnvMaxInterval, "forever")

	loaded := load(t)
	if loaded.Config.GrowthFactor != DefaultGrowthFactor {
		t.Errorf("GrowthFactor: got %v, want default", loaded.Config.GrowthFactor)
	}
	if loaded.Config.MaxInterval != DefaultMaxInterval {
		t.Errorf("MaxInterval: got %d, want default", loaded.Config.MaxInterval)
	}
	if loaded.Sources["growth_factor"] != SourceDefault {
		t.Errorf("source of growth_factor: got %q", loaded.Sources["growth_factor"])
	}
}

func TestLoadFromEnvBadIntervals(t *testing.T) {
	isolate(t)
	t.Setenv(EnvIntervals, "1,week")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := LoadWithSources(fs, nil)
	if err == nil || !strings.Contains(err.Error(), "couldn't get custom intervals from SPACED_INTERVALS") {
		t.Fatalf("expected intervals error, got %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{
		"--file", "flag.txt",
		"--growth-factor", "1.5",
		"--max-interval", "90",
		"--intervals", "1,3,9",
		"--log-format", "json",
		"add", "guitar",
	}

	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.TaskFile != "flag.txt" {
		t.Errorf("TaskFile: got %q, want flag.txt", cfg.TaskFile)
	}
	if cfg.GrowthFactor != 1.5 {
		t.Errorf("GrowthFactor: got %v, want 1.5", cfg.GrowthFactor)
	}
	if cfg.MaxInterval != 90 {
		t.Errorf("MaxInterval: got %d, want 90", cfg.MaxInterval)
	}
	if len(cfg.Intervals) != 3 || cfg.Intervals[0] != 1 || cfg.Intervals[2] != 9 {
		t.Errorf("Intervals: got %v, want [1 3 9]", cfg.Intervals)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if got := fs.Args(); len(got) != 2 || got[0] != "add" {
		t.Errorf("remaining args: got %v", got)
	}
	if sources["intervals"] != SourceFlag || sources["task_file"] != SourceFlag {
		t.Errorf("flag sources not recorded: %v", sources)
	}
	if _, ok := sources["log_level"]; ok {
		t.Error("log_level was not set by a flag")
	}
}

func TestParseFlagsBadIntervals(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := parseFlags(cfg, fs, []string{"-intervals", "1,x"}, nil); err == nil {
		t.Fatal("expected error for bad intervals flag")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"growth factor of one", func(c *Config) { c.GrowthFactor = 1 }, "growth_factor"},
		{"negative growth factor", func(c *Config) { c.GrowthFactor = -2 }, "growth_factor"},
		{"zero max interval", func(c *Config) { c.MaxInterval = 0 }, "max_interval"},
		{"max interval above 100 years", func(c *Config) { c.MaxInterval = 36501 }, "max_interval"},
		{"zero rung", func(c *Config) { c.Intervals = []int{1, 0} }, "intervals[1]"},
		{"rung above 100 years", func(c *Config) { c.Intervals = []int{1, 40000} }, "intervals[1]"},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"empty task file", func(c *Config) { c.TaskFile = "" }, "task_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if ve.Path != tt.path {
				t.Errorf("Path: got %q, want %q", ve.Path, tt.path)
			}
		})
	}

	t.Run("largest max interval is valid", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.MaxInterval = 36500
		cfg.Intervals = []int{1, 36500}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	wd := isolate(t)
	writeFile(t, filepath.Join(wd, "spaced.toml"), "growth_factor = 0.5\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := LoadWithSources(fs, nil)
	if err == nil || !strings.Contains(err.Error(), "growth_factor") {
		t.Fatalf("expected growth_factor error, got %v", err)
	}
}

func TestPolicy(t *testing.T) {
	cfg := &Config{GrowthFactor: 2, MaxInterval: 50, Intervals: []int{1, 5}}
	p := cfg.Policy()
	if p.GrowthFactor != 2 || p.MaxInterval != 50 {
		t.Errorf("Policy: got %+v", p)
	}
	if len(p.Ladder) != 2 || schedule.NextLarger(1, p.Ladder) != 5 {
		t.Errorf("Ladder: got %v", p.Ladder)
	}

	s := schedule.New(p)
	if s.Policy().MaxInterval != 50 {
		t.Errorf("scheduler policy: got %+v", s.Policy())
	}
}

func TestLogOptions(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json", LogDir: "/tmp/logs", LogJournal: true, TaskFile: "/tmp/spaced.txt"}
	opts := cfg.LogOptions()
	if opts.Level != "debug" || opts.Format != "json" || opts.Dir != "/tmp/logs" || !opts.Journal || opts.TaskFile != "/tmp/spaced.txt" {
		t.Errorf("LogOptions: got %+v", opts)
	}
}

func TestExampleConfigParses(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if len(md.Undecoded()) != 0 {
		t.Errorf("example config has unknown keys: %v", md.Undecoded())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config invalid: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("SPACED_TEST_HOME", home)
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `%SPACED_TEST_HOME%\logs`,
			want:  filepath.Join(home, "logs"),
		})
	} else {
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `~\test`,
			want:  `~\test`,
		})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := boolFromString(tt.input)
			if got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValue(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	tests := []struct {
		field string
		want  string
	}{
		{"task_file", "spaced.txt"},
		{"growth_factor", "2.5"},
		{"max_interval", "730"},
		{"intervals", "(geometric)"},
		{"log_dir", "(disabled)"},
		{"log_journal", "false"},
		{"hook_command", "(none)"},
		{"bogus", ""},
	}
	for _, tt := range tests {
		if got := cfg.Value(tt.field); got != tt.want {
			t.Errorf("Value(%q): got %q, want %q", tt.field, got, tt.want)
		}
	}

	cfg.Intervals = []int{1, 7, 30}
	if got := cfg.Value("intervals"); got != "1,7,30" {
		t.Errorf("Value(intervals): got %q", got)
	}
	for _, field := range Fields() {
		if field != "log_dir" && cfg.Value(field) == "" {
			t.Errorf("Value(%q) is empty", field)
		}
	}
}

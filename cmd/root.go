// Package cmd implements the CLI command structure for spaced.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nibzard/spaced-go/internal/config"
	"github.com/nibzard/spaced-go/internal/hooks"
	"github.com/nibzard/spaced-go/internal/logging"
	"github.com/nibzard/spaced-go/internal/schedule"
	"github.com/nibzard/spaced-go/internal/task"
	"github.com/nibzard/spaced-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const defaultHistoryLines = 20

// commandNames maps every command name and alias to its canonical name.
var commandNames = map[string]string{
	"a": "add", "add": "add",
	"l": "log", "log": "log",
	"u": "update", "update": "update", "s": "update", "schedule": "update",
	"r": "repeat", "repeat": "repeat",
	"h": "hard", "hard": "hard",
	"x": "reset", "reset": "reset",
	"v": "view", "view": "view",
	"d": "due", "due": "due",
	"unscheduled": "unscheduled",
	"tui":         "tui",
	"doctor":      "doctor",
	"history":     "history",
	"config":      "config",
	"version":     "version",
	"help":        "help",
}

var commandOutcomes = map[string]schedule.Outcome{
	"update": schedule.OutcomeIncrease,
	"repeat": schedule.OutcomeRepeat,
	"hard":   schedule.OutcomeReduce,
	"reset":  schedule.OutcomeReset,
}

// app bundles what a command needs to touch the task file.
type app struct {
	loaded *config.ConfigWithSources
	cfg    *config.Config
	log    *logging.Logger
	store  *task.Store
	sched  *schedule.Scheduler

	hookStdout io.Writer
	hookStderr io.Writer
}

func (a *app) Close() error {
	return a.log.Close()
}

// Run executes the spaced CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("spaced", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	loaded, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stdout)
		return nil
	}

	// A leading positional that is not a command names the task file.
	name, ok := commandNames[remaining[0]]
	if !ok {
		if !isTaskFileArg(remaining) {
			fmt.Fprintf(stderr, "Unknown command: %s\n", remaining[0])
			printUsage(fs, stderr)
			return fmt.Errorf("unknown command: %s", remaining[0])
		}
		setTaskFile(loaded, remaining[0])
		remaining = remaining[1:]
		if len(remaining) == 0 {
			printUsage(fs, stdout)
			return nil
		}
		if name, ok = commandNames[remaining[0]]; !ok {
			fmt.Fprintf(stderr, "Unknown command: %s\n", remaining[0])
			printUsage(fs, stderr)
			return fmt.Errorf("unknown command: %s", remaining[0])
		}
	}
	cmdArgs := remaining[1:]

	switch name {
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	case "config":
		return configCommand(loaded, cmdArgs)
	}

	a, err := newApp(loaded, name != "doctor" && name != "history")
	if err != nil {
		return err
	}
	defer a.Close()

	switch name {
	case "add":
		return addCommand(ctx, a, cmdArgs)
	case "log":
		return logCommand(ctx, a, cmdArgs)
	case "update", "repeat", "hard", "reset":
		return outcomeCommand(ctx, a, name, commandOutcomes[name], cmdArgs)
	case "view":
		return listCommand(a, cmdArgs, func(tasks []task.Task) []task.Indexed {
			return task.All(tasks)
		})
	case "due":
		return listCommand(a, cmdArgs, func(tasks []task.Task) []task.Indexed {
			return task.Due(tasks, a.sched.Today())
		})
	case "unscheduled":
		return listCommand(a, cmdArgs, task.Unscheduled)
	case "tui":
		return tuiCommand(ctx, a, cmdArgs)
	case "doctor":
		return doctorCommand(a, cmdArgs)
	case "history":
		return historyCommand(ctx, a, cmdArgs)
	}
	return fmt.Errorf("unknown command: %s", name)
}

// isTaskFileArg reports whether args[0] should be read as a task file path:
// either a command follows it or the file already exists.
func isTaskFileArg(args []string) bool {
	if len(args) > 1 {
		return true
	}
	info, err := os.Stat(args[0])
	return err == nil && !info.IsDir()
}

func setTaskFile(loaded *config.ConfigWithSources, path string) {
	cfg := loaded.Config
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	cfg.TaskFile = path
	loaded.Sources["task_file"] = config.SourceArg
}

// newApp builds the logger, store and scheduler. Without runLog the per-run
// JSONL file is not created.
func newApp(loaded *config.ConfigWithSources, runLog bool) (*app, error) {
	cfg := loaded.Config
	opts := cfg.LogOptions()
	opts.Console = stderr
	if !runLog {
		opts.Dir = ""
	}
	lg, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	for _, w := range loaded.Warnings {
		lg.Warn(w)
	}
	return &app{
		loaded: loaded,
		cfg:    cfg,
		log:    lg,
		store:  task.NewStore(cfg.TaskFile),
		sched:  schedule.New(cfg.Policy(), schedule.WithLogger(lg.Logger)),

		hookStdout: stdout,
		hookStderr: stderr,
	}, nil
}

// addCommand adds a scheduled task. -s/--start may appear anywhere among
// the title words.
func addCommand(ctx context.Context, a *app, args []string) error {
	var words []string
	var start *task.Date
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-s", "--start", "-start":
			if i+1 >= len(args) {
				return fmt.Errorf("add: %s requires a date (YYYY-MM-DD)", args[i])
			}
			i++
			d, err := task.ParseDate(args[i])
			if err != nil {
				return fmt.Errorf("add: invalid start date %q: %w", args[i], err)
			}
			start = &d
		default:
			words = append(words, args[i])
		}
	}
	title := normalizeTitle(words)
	if title == "" {
		return fmt.Errorf("add: missing title")
	}

	t := task.New(title, start, a.sched.Today())
	return a.appendTask(ctx, "add", t, "Created")
}

// logCommand adds an unscheduled task.
func logCommand(ctx context.Context, a *app, args []string) error {
	title := normalizeTitle(args)
	if title == "" {
		return fmt.Errorf("log: missing title")
	}
	return a.appendTask(ctx, "log", task.NewUnscheduled(title), "Logged")
}

// normalizeTitle joins words with single spaces, the only separator the
// task file keeps.
func normalizeTitle(words []string) string {
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}

func (a *app) appendTask(ctx context.Context, event string, t task.Task, msg string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tasks, err := a.store.Update(func(tasks []task.Task) ([]task.Task, error) {
		return append(tasks, t), nil
	})
	if err != nil {
		return err
	}
	attrs := []any{"task", t.Name, "index", len(tasks) - 1, "interval", t.Interval}
	if t.Due != nil {
		attrs = append(attrs, "due", t.Due.String())
	}
	a.log.Info(msg, attrs...)
	a.runHook(ctx, event, len(tasks)-1, t)
	return nil
}

// runHook invokes the configured hook. A failing hook is logged and does
// not fail the command.
func (a *app) runHook(ctx context.Context, event string, index int, t task.Task) {
	if a.cfg.HookCommand == "" {
		return
	}
	result, err := hooks.Invoke(ctx, hooks.Options{
		Command:  a.cfg.HookCommand,
		Event:    event,
		Index:    index,
		Task:     t.String(),
		TaskFile: a.cfg.TaskFile,
		WorkDir:  a.cfg.ProjectRoot,
		Stdout:   a.hookStdout,
		Stderr:   a.hookStderr,
	})
	if err != nil {
		a.log.Warn("Hook failed", "command", a.cfg.HookCommand, "event", event, "exit_code", result.ExitCode, "error", err)
		return
	}
	a.log.Debug("Hook ran", "command", result.Command, "event", event)
}

// outcomeCommand applies outcome to the task at the index in args.
func outcomeCommand(ctx context.Context, a *app, name string, outcome schedule.Outcome, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s: missing task index", name)
	}
	if len(args) > 1 {
		return fmt.Errorf("%s: unexpected arguments: %v", name, args[1:])
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%s: invalid task index %q", name, args[0])
	}

	tasks, err := a.store.Update(func(tasks []task.Task) ([]task.Task, error) {
		if index < 0 || index >= len(tasks) {
			return nil, fmt.Errorf("index %d out of range (%d tasks)", index, len(tasks))
		}
		if err := a.sched.Apply(&tasks[index], outcome); err != nil {
			return nil, fmt.Errorf("%s %d: %w", name, index, err)
		}
		return tasks, nil
	})
	if err != nil {
		return err
	}
	a.runHook(ctx, name, index, tasks[index])
	return nil
}

// listCommand prints the tasks selected by pick with their indexes.
func listCommand(a *app, args []string, pick func([]task.Task) []task.Indexed) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	tasks, err := a.store.Load()
	if err != nil {
		return err
	}
	printIndexed(stdout, pick(tasks))
	return nil
}

// outcomeEvent returns the command name used as the hook event for outcome.
func outcomeEvent(outcome schedule.Outcome) string {
	for name, o := range commandOutcomes {
		if o == outcome {
			return name
		}
	}
	return string(outcome)
}

func printIndexed(w io.Writer, items []task.Indexed) {
	for _, item := range items {
		fmt.Fprintf(w, "%4d. %s\n", item.Index, item.Task)
	}
}

func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("spaced tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dueOnly := fs.Bool("due", false, "Show only due tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// Console output would corrupt the alternate screen.
	a.log.Logger = a.log.Background()
	a.hookStdout, a.hookStderr = io.Discard, io.Discard
	sched := schedule.New(a.cfg.Policy(), schedule.WithLogger(a.log.Logger))
	return ui.RunTUI(ctx, a.store, sched,
		ui.WithDueOnly(*dueOnly),
		ui.WithOnChange(func(outcome schedule.Outcome, index int, t task.Task) {
			a.runHook(ctx, outcomeEvent(outcome), index, t)
		}),
	)
}

func historyCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("spaced history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", defaultHistoryLines, "Number of records to show (0 = all)")
	follow := fs.Bool("f", false, "Follow the latest run log")
	fs.BoolVar(follow, "follow", false, "Follow the latest run log")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if a.cfg.LogDir == "" {
		return fmt.Errorf("history requires log_dir (or %s) to be set", config.EnvLogDir)
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.TaskFile)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if !*follow {
		return logging.History(stdout, logDir, *n)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}
	fmt.Fprintf(stderr, "Following: %s (Ctrl+C to stop)\n", logPath)
	return logging.TailLog(ctx, stdout, logPath, *n, true)
}

func doctorCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("spaced doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := stdout
	cfg := a.cfg
	fmt.Fprintln(w, "Spaced Doctor")
	fmt.Fprintln(w, "=============")
	fmt.Fprintln(w)

	allOK := true

	// Check config
	fmt.Fprintln(w, "Config:")
	if len(a.loaded.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config files (using defaults)")
	}
	for _, f := range a.loaded.Files {
		fmt.Fprintf(w, "  ✅ Loaded %s\n", f)
	}
	for _, warning := range a.loaded.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if len(cfg.Intervals) > 0 {
		fmt.Fprintf(w, "  ✅ Interval ladder: %s\n", cfg.Value("intervals"))
	} else {
		fmt.Fprintf(w, "  ✅ Geometric growth: factor %s, max %d days\n", cfg.Value("growth_factor"), cfg.MaxInterval)
	}
	fmt.Fprintln(w)

	// Check task file
	fmt.Fprintf(w, "Task file: %s\n", cfg.TaskFile)
	info, err := os.Stat(cfg.TaskFile)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first use)")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		allOK = false
	default:
		tasks, loadErr := a.store.Load()
		if loadErr != nil {
			fmt.Fprintf(w, "  ❌ Load error: %v\n", loadErr)
			allOK = false
			break
		}
		fmt.Fprintln(w, "  ✅ Valid")
		today := a.sched.Today()
		fmt.Fprintf(w, "  Tasks: %d  Due: %d  Unscheduled: %d\n",
			len(tasks), len(task.Due(tasks, today)), len(task.Unscheduled(tasks)))
		for i := range tasks {
			if err := tasks[i].Validate(); err != nil {
				fmt.Fprintf(w, "  ❌ Task %d: %v\n", i, err)
				allOK = false
			}
		}
		if *verbose {
			printIndexed(w, task.All(tasks))
		}
	}
	fmt.Fprintln(w)

	// Check log directory
	if cfg.LogDir == "" {
		fmt.Fprintln(w, "Log directory: (disabled)")
	} else {
		fmt.Fprintf(w, "Log directory: %s\n", cfg.LogDir)
		logDir, err := logging.FindLogDir(cfg.LogDir, cfg.TaskFile)
		if err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		} else if latest, err := logging.FindLatestLog(logDir); err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		} else if latest == "" {
			fmt.Fprintln(w, "  ⚠️  No run logs yet")
		} else {
			fmt.Fprintf(w, "  ✅ Latest run: %s\n", latest)
		}
	}
	if cfg.LogJournal {
		fmt.Fprintln(w, "  ✅ Journal logging enabled")
	}
	fmt.Fprintln(w)

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func configCommand(loaded *config.ConfigWithSources, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	if len(args) == 1 {
		switch args[0] {
		case "example":
			fmt.Fprint(stdout, config.ExampleConfig())
			return nil
		case "schema":
			fmt.Fprintln(stdout, config.Schema)
			return nil
		default:
			return fmt.Errorf("config: unknown subcommand %q (expected example|schema)", args[0])
		}
	}

	cfg := loaded.Config
	for _, field := range config.Fields() {
		fmt.Fprintf(stdout, "%-15s = %-30s (%s)\n", field, cfg.Value(field), loaded.Sources[field])
	}
	if len(loaded.Files) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Files:")
		for _, f := range loaded.Files {
			fmt.Fprintf(stdout, "  %s\n", f)
		}
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	return nil
}

func versionCommand() error {
	fmt.Fprintf(stdout, "spaced version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "spaced - spaced repetition for recurring tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  spaced [options] [file] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  a, add [-s|--start YYYY-MM-DD] <title>...")
	fmt.Fprintln(w, "                    Add a task, due today or on the start date")
	fmt.Fprintln(w, "  l, log <title>...  Add a task with no date")
	fmt.Fprintln(w, "  u, update <idx>    Review done; grow the interval")
	fmt.Fprintln(w, "  s, schedule <idx>  Give an unscheduled task a date (same as update)")
	fmt.Fprintln(w, "  r, repeat <idx>    Repeat with the current interval")
	fmt.Fprintln(w, "  h, hard <idx>      Review was hard; shrink the interval")
	fmt.Fprintln(w, "  x, reset <idx>     Start over from the first interval")
	fmt.Fprintln(w, "  v, view            List all tasks")
	fmt.Fprintln(w, "  d, due             List tasks due today or overdue")
	fmt.Fprintln(w, "  unscheduled        List tasks with no date")
	fmt.Fprintln(w, "  tui [-due]         Review tasks interactively")
	fmt.Fprintln(w, "  history [-n N] [-f]")
	fmt.Fprintln(w, "                    Show recent review records (requires log_dir)")
	fmt.Fprintln(w, "  doctor [-v]        Check config and task file validity")
	fmt.Fprintln(w, "  config [example|schema]")
	fmt.Fprintln(w, "                    Show effective config, an example file, or the schema")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
}

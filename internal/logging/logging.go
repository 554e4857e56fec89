// Package logging builds the process logger and manages per-run JSONL logs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options configures New.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // text, json, logfmt
	Timestamps bool
	Caller     bool
	// Dir enables per-run JSONL logs under Dir when non-empty.
	Dir string
	// Journal adds a systemd journal handler.
	Journal bool
	// TaskFile names the run log directory.
	TaskFile string
	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer
}

// Logger is a slog.Logger with the resources backing its handlers.
type Logger struct {
	*slog.Logger
	// Run is nil unless Options.Dir is set.
	Run *RunLogger

	background []slog.Handler
}

// New builds a logger that fans out to the console, and optionally to a
// per-run JSONL file and the systemd journal.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := parseFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleHandler := log.NewWithOptions(console, log.Options{
		Level:           log.Level(level),
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          "spaced",
	})

	l := &Logger{}
	if opts.Dir != "" {
		run, err := NewRunLogger(opts.Dir, opts.TaskFile)
		if err != nil {
			return nil, err
		}
		l.Run = run
		l.background = append(l.background, slog.NewJSONHandler(run.Writer(), &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = consoleHandler.Handle(context.Background(), record)
		} else {
			l.background = append(l.background, journal)
		}
	}

	handlers := append([]slog.Handler{consoleHandler}, l.background...)
	l.Logger = slog.New(slogmulti.Fanout(handlers...))
	return l, nil
}

// Background returns a logger that skips the console handler. It discards
// everything when no file or journal handler is configured.
func (l *Logger) Background() *slog.Logger {
	if len(l.background) == 0 {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slogmulti.Fanout(l.background...))
}

// Close releases the run log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	return l.Run.Close()
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func parseFormatter(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("invalid log format %q", s)
	}
}

// toJournalKey upper-cases key and replaces characters the journal rejects.
func toJournalKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return strings.TrimLeft(b.String(), "_")
}

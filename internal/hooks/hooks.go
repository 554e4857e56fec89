// Package hooks invokes the external command configured to run after the
// task file changes.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Options configures a hook invocation.
type Options struct {
	Command  string
	Event    string // add, log, update, repeat, hard, reset
	Index    int
	Task     string // task line after the change
	TaskFile string
	WorkDir  string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command as
//
//	<command> <event> <index> <task line> <task file>
//
// with the same values in SPACED_EVENT, SPACED_INDEX, SPACED_TASK and
// SPACED_TASK_FILE. An empty command does nothing.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	index := strconv.Itoa(opts.Index)
	cmd := exec.CommandContext(ctx, opts.Command, opts.Event, index, opts.Task, opts.TaskFile)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"SPACED_EVENT="+opts.Event,
		"SPACED_INDEX="+index,
		"SPACED_TASK="+opts.Task,
		"SPACED_TASK_FILE="+opts.TaskFile,
	)
	cmd.Stdout = writerOr(opts.Stdout, os.Stdout)
	cmd.Stderr = writerOr(opts.Stderr, os.Stderr)

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

package task

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const maxLineSize = 1024 * 1024

// Store reads and writes tasks in a single text file.
type Store struct {
	Path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads all tasks from the store's file.
func (s *Store) Load() ([]Task, error) {
	return Load(s.Path)
}

// Save overwrites the store's file with tasks.
func (s *Store) Save(tasks []Task) error {
	return Save(s.Path, tasks)
}

// Update loads the tasks, passes them to fn, and saves the slice fn returns.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func([]Task) ([]Task, error)) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	updated, err := fn(tasks)
	if err != nil {
		return nil, err
	}
	if err := s.Save(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Load reads all tasks from path, creating an empty file if it is missing.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := createEmpty(path); err != nil {
			return nil, err
		}
		return []Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	tasks, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", path, err)
	}
	return tasks, nil
}

// Save writes tasks to path, one per line, replacing the file atomically.
func Save(path string, tasks []Task) error {
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close task file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode(path)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod task file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

// Decode parses tasks from r. Empty lines are skipped.
func Decode(r io.Reader) ([]Task, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	tasks := make([]Task, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := ParseLine(line)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = lineNo
				return nil, pe
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return tasks, nil
}

// Encode writes tasks to w in the line format with a trailing newline.
// Every task is validated before anything is written.
func Encode(w io.Writer, tasks []Task) error {
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	bw := bufio.NewWriter(w)
	for i := range tasks {
		if _, err := bw.WriteString(tasks[i].String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// fileMode returns the permissions of the existing file at path, or 0644
// when there is none.
func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0644
	}
	return info.Mode().Perm()
}

func createEmpty(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create task file dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create task file: %w", err)
	}
	return f.Close()
}

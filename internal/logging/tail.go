package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// followInterval is how often TailLog polls for new data when following.
var followInterval = 100 * time.Millisecond

// TailLog copies the last n lines of path to w, or the whole file when n is
// zero. With follow set it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := copyLastLines(w, file, n); err != nil {
			return err
		}
	} else if _, err := io.Copy(w, file); err != nil {
		return err
	}

	if !follow {
		return nil
	}
	return tailFollow(ctx, w, file)
}

// copyLastLines keeps a ring of the last n lines and writes them out.
func copyLastLines(w io.Writer, r io.Reader, n int) error {
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	for _, line := range ring {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// History writes the last n lines across every run log in logDir, oldest
// run first. n <= 0 writes everything.
func History(w io.Writer, logDir string, n int) error {
	runs, err := FindRunLogs(logDir)
	if err != nil {
		return err
	}

	readers := make([]io.Reader, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		f, err := os.Open(runs[i].Path)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	r := io.MultiReader(readers...)
	if n <= 0 {
		_, err := io.Copy(w, r)
		return err
	}
	return copyLastLines(w, r, n)
}

package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	datePrefix     = "@"
	intervalPrefix = "#"
)

// ErrInvalidName is returned when a name cannot be stored in the line format.
var ErrInvalidName = errors.New("invalid task name")

// Task is a single schedulable item.
type Task struct {
	Name string
	// Due is nil while the task is unscheduled.
	Due *Date
	// Interval is the spacing in days last used to compute Due.
	Interval int
}

// New returns a scheduled task starting on start, or on today if start is nil.
func New(name string, start *Date, today Date) Task {
	due := today
	if start != nil {
		due = *start
	}
	return Task{Name: name, Due: &due, Interval: 1}
}

// NewUnscheduled returns a task with no due date.
func NewUnscheduled(name string) Task {
	return Task{Name: name, Interval: 1}
}

// IsScheduled reports whether the task has a due date.
func (t *Task) IsScheduled() bool {
	return t.Due != nil
}

// IsDue reports whether the task is scheduled on or before today.
func (t *Task) IsDue(today Date) bool {
	return t.Due != nil && !t.Due.After(today)
}

// Validate checks that the task survives a save and load unchanged.
func (t *Task) Validate() error {
	if t.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %d", t.Interval)
	}
	if t.Due != nil && !t.Due.InRange() {
		return fmt.Errorf("%w: year %d", ErrDateRange, t.Due.Time().Year())
	}
	if strings.ContainsAny(t.Name, "\r\n") {
		return fmt.Errorf("%w: name contains a line break", ErrInvalidName)
	}
	for _, word := range strings.Split(t.Name, " ") {
		if word == "" && t.Name != "" {
			return fmt.Errorf("%w: name has leading, trailing or repeated spaces", ErrInvalidName)
		}
		if strings.HasPrefix(word, datePrefix) || strings.HasPrefix(word, intervalPrefix) {
			return fmt.Errorf("%w: word %q starts with %q or %q", ErrInvalidName, word, datePrefix, intervalPrefix)
		}
	}
	return nil
}

// String returns the task in the line format.
func (t Task) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte(' ')
	if t.Due != nil {
		b.WriteString(datePrefix)
		b.WriteString(t.Due.String())
		b.WriteByte(' ')
	}
	b.WriteString(intervalPrefix)
	b.WriteString(strconv.Itoa(t.Interval))
	return b.String()
}

// Indexed pairs a task with its position in the full sequence.
type Indexed struct {
	Index int
	Task  Task
}

// Due returns the tasks due on or before today, keeping their indexes.
func Due(tasks []Task, today Date) []Indexed {
	var out []Indexed
	for i := range tasks {
		if tasks[i].IsDue(today) {
			out = append(out, Indexed{Index: i, Task: tasks[i]})
		}
	}
	return out
}

// Unscheduled returns the tasks without a due date, keeping their indexes.
func Unscheduled(tasks []Task) []Indexed {
	var out []Indexed
	for i := range tasks {
		if !tasks[i].IsScheduled() {
			out = append(out, Indexed{Index: i, Task: tasks[i]})
		}
	}
	return out
}

// All returns every task with its index.
func All(tasks []Task) []Indexed {
	out := make([]Indexed, 0, len(tasks))
	for i := range tasks {
		out = append(out, Indexed{Index: i, Task: tasks[i]})
	}
	return out
}

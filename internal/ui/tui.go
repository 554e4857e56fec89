// Package ui provides the interactive review screen.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/spaced-go/internal/schedule"
	"github.com/nibzard/spaced-go/internal/task"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	dueOnly  bool
	onChange ChangeFunc
}

// ChangeFunc is called after an outcome has been saved.
type ChangeFunc func(outcome schedule.Outcome, index int, t task.Task)

// WithDueOnly starts the TUI with the due filter enabled.
func WithDueOnly(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.dueOnly = enabled
	}
}

// WithOnChange sets a function called after every saved outcome.
func WithOnChange(fn ChangeFunc) TUIOption {
	return func(c *tuiConfig) {
		c.onChange = fn
	}
}

// RunTUI starts the review screen for the tasks in store.
func RunTUI(ctx context.Context, store *task.Store, sched *schedule.Scheduler, opts ...TUIOption) error {
	c := &tuiConfig{}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(store, sched, c.dueOnly)
	model.onChange = c.onChange
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.loadErr != nil {
		return m.loadErr
	}
	return nil
}

type tuiModel struct {
	store    *task.Store
	sched    *schedule.Scheduler
	tasks    []task.Task
	loadErr  error
	err      error  // last action error
	message  string // last action result
	cursor   int    // position in visible()
	dueOnly  bool
	showHelp bool
	onChange ChangeFunc
}

func newTUIModel(store *task.Store, sched *schedule.Scheduler, dueOnly bool) *tuiModel {
	return &tuiModel{
		store:   store,
		sched:   sched,
		dueOnly: dueOnly,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "d":
		m.dueOnly = !m.dueOnly
		m.clampCursor()
	case "f5":
		m.refresh()
	case "u":
		m.apply(schedule.OutcomeIncrease)
	case "r":
		m.apply(schedule.OutcomeRepeat)
	case "h":
		m.apply(schedule.OutcomeReduce)
	case "x":
		m.apply(schedule.OutcomeReset)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading task file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}

	writeOverview(&b, m.tasks, m.sched.Today(), m.dueOnly)
	writeTasks(&b, m.visible(), m.cursor, m.sched.Today())
	writeStatus(&b, m.message, m.err)
	writeFooter(&b)
	return b.String()
}

// visible returns the tasks shown under the current filter.
func (m *tuiModel) visible() []task.Indexed {
	if m.dueOnly {
		return task.Due(m.tasks, m.sched.Today())
	}
	return task.All(m.tasks)
}

func (m *tuiModel) refresh() {
	tasks, err := m.store.Load()
	if err != nil {
		m.loadErr = err
		m.tasks = nil
		return
	}
	m.loadErr = nil
	m.tasks = tasks
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// apply records outcome for the selected task and saves the file. The
// in-memory tasks change only after the save succeeds.
func (m *tuiModel) apply(outcome schedule.Outcome) {
	m.err = nil
	m.message = ""
	if m.loadErr != nil {
		return
	}

	shown := m.visible()
	if len(shown) == 0 {
		m.err = errors.New("no task selected")
		return
	}
	selected := shown[m.cursor]

	next := make([]task.Task, len(m.tasks))
	copy(next, m.tasks)
	t := next[selected.Index]
	if err := m.sched.Apply(&t, outcome); err != nil {
		m.err = fmt.Errorf("%s: %w", t.Name, err)
		return
	}
	next[selected.Index] = t

	if err := m.store.Save(next); err != nil {
		m.err = err
		return
	}
	m.tasks = next
	m.message = fmt.Sprintf("%s %s", outcome.Verb(), t.String())
	m.clampCursor()
	if m.onChange != nil {
		m.onChange(outcome, selected.Index, t)
	}
}

func writeTitle(b *strings.Builder) {
	title := "Spaced Review"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, tasks []task.Task, today task.Date, dueOnly bool) {
	due := len(task.Due(tasks, today))
	unscheduled := len(task.Unscheduled(tasks))
	fmt.Fprintf(b, "  Total: %d  Due: %d  Unscheduled: %d  Today: %s\n", len(tasks), due, unscheduled, today)
	if dueOnly {
		b.WriteString("  Filter: due (d to show all)\n")
	}
	b.WriteString("\n")
}

func writeTasks(b *strings.Builder, tasks []task.Indexed, cursor int, today task.Date) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	for i, item := range tasks {
		pointer := " "
		if i == cursor {
			pointer = ">"
		}
		marker := " "
		if item.Task.IsDue(today) {
			marker = "*"
		}
		fmt.Fprintf(b, "%s %s%4d. %s\n", pointer, marker, item.Index, item.Task.String())
	}
	b.WriteString("\n")
}

func writeStatus(b *strings.Builder, message string, err error) {
	if err != nil {
		b.WriteString("Error: " + err.Error() + "\n\n")
		return
	}
	if message != "" {
		b.WriteString(message + "\n\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up, k        Move up\n")
	b.WriteString("  down, j      Move down\n")
	b.WriteString("  u            Update (increase interval)\n")
	b.WriteString("  r            Repeat (keep interval)\n")
	b.WriteString("  h            Hard (reduce interval)\n")
	b.WriteString("  x            Reset interval\n")
	b.WriteString("  d            Toggle due filter\n")
	b.WriteString("  F5           Reload task file\n")
	b.WriteString("  ?            Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press ? for help | q to quit | * marks due tasks\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

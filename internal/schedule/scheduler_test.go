package schedule

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/spaced-go/internal/task"
)

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
	}
}

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func scheduled(name string, y int, m time.Month, d int, interval int) task.Task {
	due := task.NewDate(y, m, d)
	return task.Task{Name: name, Due: &due, Interval: interval}
}

func TestNextLarger(t *testing.T) {
	ladder := []int{1, 7, 365, 720}
	tests := []struct {
		current int
		want    int
	}{
		{0, 1},
		{1, 7},
		{5, 7},
		{7, 365},
		{365, 720},
		{720, 720},
		{1000, 720},
	}
	for _, tt := range tests {
		if got := NextLarger(tt.current, ladder); got != tt.want {
			t.Errorf("NextLarger(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
	if got := NextLarger(3, nil); got != 0 {
		t.Errorf("NextLarger on empty ladder = %d, want 0", got)
	}
}

func TestNextSmaller(t *testing.T) {
	ladder := []int{3, 7, 365, 720}
	tests := []struct {
		current int
		want    int
	}{
		{0, 3},
		{1, 3},
		{3, 3},
		{5, 3},
		{7, 7},
		{100, 7},
		{720, 720},
		{1000, 720},
	}
	for _, tt := range tests {
		if got := NextSmaller(tt.current, ladder); got != tt.want {
			t.Errorf("NextSmaller(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
	if got := NextSmaller(3, nil); got != 0 {
		t.Errorf("NextSmaller on empty ladder = %d, want 0", got)
	}
}

func TestNewLadder(t *testing.T) {
	ladder, err := NewLadder([]int{365, 7, 1, 7, 720})
	if err != nil {
		t.Fatal(err)
	}
	want := Ladder{1, 7, 365, 720}
	if len(ladder) != len(want) {
		t.Fatalf("NewLadder = %v, want %v", ladder, want)
	}
	for i := range want {
		if ladder[i] != want[i] {
			t.Fatalf("NewLadder = %v, want %v", ladder, want)
		}
	}

	if _, err := NewLadder([]int{1, 0}); err == nil {
		t.Error("expected error for zero rung")
	}
	if _, err := NewLadder([]int{-3}); err == nil {
		t.Error("expected error for negative rung")
	}
	empty, err := NewLadder(nil)
	if err != nil || empty != nil {
		t.Errorf("NewLadder(nil) = %v, %v", empty, err)
	}
	if got := empty.First(); got != 1 {
		t.Errorf("empty First() = %d, want 1", got)
	}
}

func TestIncreaseGeometric(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	tk := scheduled("guitar", 2022, 10, 1, 1)

	if err := s.Increase(&tk); err != nil {
		t.Fatal(err)
	}
	if tk.Interval != 3 {
		t.Errorf("first Increase interval = %d, want 3", tk.Interval)
	}
	if got := tk.Due.String(); got != "2022-10-04" {
		t.Errorf("first Increase due = %s, want 2022-10-04", got)
	}

	if err := s.Increase(&tk); err != nil {
		t.Fatal(err)
	}
	if tk.Interval != 8 {
		t.Errorf("second Increase interval = %d, want 8", tk.Interval)
	}
	if got := tk.Due.String(); got != "2022-10-12" {
		t.Errorf("second Increase due = %s, want 2022-10-12", got)
	}
}

func TestIncreaseClampsToMax(t *testing.T) {
	s := New(Policy{GrowthFactor: 2.5, MaxInterval: 730}, quiet())
	tk := scheduled("guitar", 2022, 10, 1, 500)
	_ = s.Increase(&tk)
	if tk.Interval != 730 {
		t.Errorf("interval = %d, want 730", tk.Interval)
	}
	_ = s.Increase(&tk)
	if tk.Interval != 730 {
		t.Errorf("interval = %d, want to stay at 730", tk.Interval)
	}
}

func TestIncreaseFromZeroInterval(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	tk := scheduled("guitar", 2022, 10, 1, 0)
	_ = s.Increase(&tk)
	if tk.Interval != 1 {
		t.Errorf("interval = %d, want 1", tk.Interval)
	}
}

func TestIncreaseLadder(t *testing.T) {
	s := New(Policy{Ladder: Ladder{1, 7, 365, 720}}, quiet())
	tk := scheduled("guitar", 2022, 10, 1, 1)

	_ = s.Increase(&tk)
	if tk.Interval != 7 {
		t.Errorf("interval = %d, want 7", tk.Interval)
	}
	if got := tk.Due.String(); got != "2022-10-08" {
		t.Errorf("due = %s, want 2022-10-08", got)
	}
	_ = s.Increase(&tk)
	if tk.Interval != 365 {
		t.Errorf("interval = %d, want 365", tk.Interval)
	}
	_ = s.Increase(&tk)
	_ = s.Increase(&tk)
	if tk.Interval != 720 {
		t.Errorf("interval = %d, want saturation at 720", tk.Interval)
	}
}

func TestIncreaseUnscheduled(t *testing.T) {
	s := New(Policy{Ladder: Ladder{3, 7}}, quiet(), WithClock(fixedClock(2024, 3, 9)))
	tk := task.NewUnscheduled("piano")

	if err := s.Increase(&tk); err != nil {
		t.Fatal(err)
	}
	if tk.Due == nil || tk.Due.String() != "2024-03-09" {
		t.Errorf("due = %v, want 2024-03-09", tk.Due)
	}
	if tk.Interval != 1 {
		t.Errorf("interval = %d, want 1", tk.Interval)
	}
}

func TestRepeat(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	tk := scheduled("guitar", 2022, 10, 1, 8)
	if err := s.Repeat(&tk); err != nil {
		t.Fatal(err)
	}
	if tk.Interval != 8 || tk.Due.String() != "2022-10-09" {
		t.Errorf("Repeat = %s", tk)
	}
}

func TestReduceGeometric(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	tests := []struct {
		interval int
		want     int
	}{
		{20, 8},
		{8, 4},
		{3, 2},
		{1, 1},
		{0, 1},
	}
	for _, tt := range tests {
		tk := scheduled("guitar", 2022, 10, 1, tt.interval)
		if err := s.Reduce(&tk); err != nil {
			t.Fatal(err)
		}
		if tk.Interval != tt.want {
			t.Errorf("Reduce(%d) interval = %d, want %d", tt.interval, tk.Interval, tt.want)
		}
		want, err := task.NewDate(2022, 10, 1).AddDays(tt.want)
		if err != nil {
			t.Fatal(err)
		}
		if !tk.Due.Equal(want) {
			t.Errorf("Reduce(%d) due = %s, want %s", tt.interval, tk.Due, want)
		}
	}
}

func TestReduceLadder(t *testing.T) {
	s := New(Policy{Ladder: Ladder{3, 7, 365}}, quiet())

	tk := scheduled("guitar", 2022, 10, 1, 100)
	_ = s.Reduce(&tk)
	if tk.Interval != 7 {
		t.Errorf("interval = %d, want 7", tk.Interval)
	}

	tk = scheduled("guitar", 2022, 10, 1, 1)
	_ = s.Reduce(&tk)
	if tk.Interval != 3 {
		t.Errorf("interval = %d, want saturation at 3", tk.Interval)
	}
	_ = s.Reduce(&tk)
	if tk.Interval != 3 {
		t.Errorf("interval = %d, want to stay at 3", tk.Interval)
	}
}

func TestReset(t *testing.T) {
	t.Run("geometric", func(t *testing.T) {
		s := New(DefaultPolicy(), quiet())
		tk := scheduled("guitar", 2022, 10, 1, 120)
		_ = s.Reset(&tk)
		if tk.Interval != 1 || tk.Due.String() != "2022-10-02" {
			t.Errorf("Reset = %s", tk)
		}
	})
	t.Run("ladder", func(t *testing.T) {
		s := New(Policy{Ladder: Ladder{2, 7}}, quiet())
		tk := scheduled("guitar", 2022, 10, 1, 7)
		_ = s.Reset(&tk)
		if tk.Interval != 2 || tk.Due.String() != "2022-10-03" {
			t.Errorf("Reset = %s", tk)
		}
	})
}

func TestUnscheduledRejected(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	for _, outcome := range []Outcome{OutcomeRepeat, OutcomeReduce, OutcomeReset} {
		tk := task.NewUnscheduled("piano")
		err := s.Apply(&tk, outcome)
		if !errors.Is(err, ErrUnscheduled) {
			t.Errorf("%s: error = %v, want ErrUnscheduled", outcome, err)
		}
		if tk.IsScheduled() || tk.Interval != 1 {
			t.Errorf("%s: task modified: %s", outcome, tk)
		}
	}
}

func TestOutOfRangeDueDateRejected(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		outcome  Outcome
	}{
		{"repeat past year 9999", 3000000, OutcomeRepeat},
		{"repeat with overflowing interval", 9223372036854775807, OutcomeRepeat},
		{"increase past year 9999", 3000000, OutcomeIncrease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Policy{GrowthFactor: 2, MaxInterval: 4000000}, quiet())
			tk := scheduled("piano", 2022, 10, 1, tt.interval)
			err := s.Apply(&tk, tt.outcome)
			if !errors.Is(err, task.ErrDateRange) {
				t.Fatalf("error = %v, want ErrDateRange", err)
			}
			if tk.Interval != tt.interval || tk.Due.String() != "2022-10-01" {
				t.Errorf("task modified: %s", tk)
			}
		})
	}
}

func TestNewReplacesInvalidPolicyValues(t *testing.T) {
	s := New(Policy{}, quiet())
	p := s.Policy()
	if p.GrowthFactor != DefaultGrowthFactor || p.MaxInterval != DefaultMaxInterval {
		t.Errorf("Policy() = %+v", p)
	}
}

func TestApplyUnknownOutcome(t *testing.T) {
	s := New(DefaultPolicy(), quiet())
	tk := scheduled("guitar", 2022, 10, 1, 1)
	if err := s.Apply(&tk, Outcome("bogus")); !errors.Is(err, ErrUnknownOutcome) {
		t.Errorf("error = %v, want ErrUnknownOutcome", err)
	}
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
	}{
		{"u", OutcomeIncrease},
		{"update", OutcomeIncrease},
		{"schedule", OutcomeIncrease},
		{"s", OutcomeIncrease},
		{"r", OutcomeRepeat},
		{"hard", OutcomeReduce},
		{"H", OutcomeReduce},
		{"reset", OutcomeReset},
		{"x", OutcomeReset},
	}
	for _, tt := range tests {
		got, err := ParseOutcome(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseOutcome(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseOutcome("later"); !errors.Is(err, ErrUnknownOutcome) {
		t.Errorf("expected ErrUnknownOutcome, got %v", err)
	}
}

func TestTraceMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(DefaultPolicy(), WithLogger(logger))
	tk := scheduled("guitar", 2022, 10, 1, 1)
	_ = s.Increase(&tk)

	out := buf.String()
	for _, want := range []string{"msg=Updated", "task=guitar", "interval=3", "due=2022-10-04"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace %q missing %q", out, want)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	if err := task.Save(path, []task.Task{scheduled("guitar", 2022, 10, 1, 1)}); err != nil {
		t.Fatal(err)
	}

	store := task.NewStore(path)
	s := New(DefaultPolicy(), quiet())
	_, err := store.Update(func(tasks []task.Task) ([]task.Task, error) {
		return tasks, s.Increase(&tasks[0])
	})
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := tasks[0].String(); got != "guitar @2022-10-04 #3" {
		t.Errorf("saved line = %q, want %q", got, "guitar @2022-10-04 #3")
	}
}

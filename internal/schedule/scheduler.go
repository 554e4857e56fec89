// Package schedule computes review intervals and due dates for tasks.
package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nibzard/spaced-go/internal/task"
)

// Default policy values.
const (
	DefaultGrowthFactor = 2.5
	DefaultMaxInterval  = 730
)

// ErrUnscheduled is returned when an outcome needs a due date the task lacks.
var ErrUnscheduled = errors.New("task is unscheduled")

// Policy controls how intervals grow and shrink.
type Policy struct {
	GrowthFactor float64
	MaxInterval  int
	// Ladder replaces geometric growth when non-empty.
	Ladder Ladder
}

// DefaultPolicy returns the geometric policy with default values.
func DefaultPolicy() Policy {
	return Policy{
		GrowthFactor: DefaultGrowthFactor,
		MaxInterval:  DefaultMaxInterval,
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLogger sets the logger that receives trace messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler applies review outcomes to tasks.
type Scheduler struct {
	policy Policy
	now    func() time.Time
	logger *slog.Logger
}

// New returns a Scheduler for policy. A non-positive growth factor or
// maximum interval is replaced by its default.
func New(policy Policy, opts ...Option) *Scheduler {
	if policy.GrowthFactor <= 0 {
		policy.GrowthFactor = DefaultGrowthFactor
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultMaxInterval
	}
	s := &Scheduler{
		policy: policy,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the scheduler's effective policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// Today returns the current UTC calendar day according to the clock.
func (s *Scheduler) Today() task.Date {
	return task.DateOf(s.now().UTC())
}

// Apply dispatches to the operation for outcome.
func (s *Scheduler) Apply(t *task.Task, outcome Outcome) error {
	switch outcome {
	case OutcomeIncrease:
		return s.Increase(t)
	case OutcomeRepeat:
		return s.Repeat(t)
	case OutcomeReduce:
		return s.Reduce(t)
	case OutcomeReset:
		return s.Reset(t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
}

// Increase records a successful review. An unscheduled task becomes due
// today with interval 1; otherwise the interval grows and the due date
// advances by it.
func (s *Scheduler) Increase(t *task.Task) error {
	if !t.IsScheduled() {
		today := s.Today()
		t.Due = &today
		t.Interval = 1
		s.trace("Scheduled", t)
		return nil
	}
	if err := s.advance(t, s.grow(t.Interval)); err != nil {
		return err
	}
	s.trace(OutcomeIncrease.Verb(), t)
	return nil
}

// Repeat advances the due date by the current interval.
func (s *Scheduler) Repeat(t *task.Task) error {
	if !t.IsScheduled() {
		return ErrUnscheduled
	}
	if err := s.advance(t, t.Interval); err != nil {
		return err
	}
	s.trace(OutcomeRepeat.Verb(), t)
	return nil
}

// Reduce records a failed review: the interval shrinks and the due date
// advances by it.
func (s *Scheduler) Reduce(t *task.Task) error {
	if !t.IsScheduled() {
		return ErrUnscheduled
	}
	if err := s.advance(t, s.shrink(t.Interval)); err != nil {
		return err
	}
	s.trace(OutcomeReduce.Verb(), t)
	return nil
}

// Reset sets the interval to the first ladder rung, or 1 without a ladder,
// and advances the due date by it.
func (s *Scheduler) Reset(t *task.Task) error {
	if !t.IsScheduled() {
		return ErrUnscheduled
	}
	if err := s.advance(t, s.policy.Ladder.First()); err != nil {
		return err
	}
	s.trace(OutcomeReset.Verb(), t)
	return nil
}

func (s *Scheduler) grow(interval int) int {
	if len(s.policy.Ladder) > 0 {
		return NextLarger(interval, s.policy.Ladder)
	}
	return s.clamp(math.Ceil(float64(interval) * s.policy.GrowthFactor))
}

func (s *Scheduler) shrink(interval int) int {
	if len(s.policy.Ladder) > 0 {
		return NextSmaller(interval, s.policy.Ladder)
	}
	return s.clamp(math.Ceil(float64(interval) / s.policy.GrowthFactor))
}

// clamp bounds v to [1, MaxInterval].
func (s *Scheduler) clamp(v float64) int {
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	if v > float64(s.policy.MaxInterval) {
		return s.policy.MaxInterval
	}
	return int(v)
}

// advance sets the interval and moves the due date forward by it. The task
// is left untouched when the new date is out of range.
func (s *Scheduler) advance(t *task.Task, interval int) error {
	next, err := t.Due.AddDays(interval)
	if err != nil {
		return err
	}
	t.Interval = interval
	t.Due = &next
	return nil
}

func (s *Scheduler) trace(msg string, t *task.Task) {
	if s.logger == nil {
		return
	}
	attrs := []any{"task", t.Name, "interval", t.Interval}
	if t.Due != nil {
		attrs = append(attrs, "due", t.Due.String())
	}
	s.logger.Info(msg, attrs...)
}

package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOutcome is returned by ParseOutcome for unrecognized names.
var ErrUnknownOutcome = errors.New("unknown review outcome")

// Outcome is the result of reviewing a task.
type Outcome string

const (
	// OutcomeIncrease is a successful review; it also schedules an
	// unscheduled task.
	OutcomeIncrease Outcome = "increase"
	// OutcomeRepeat keeps the current interval.
	OutcomeRepeat Outcome = "repeat"
	// OutcomeReduce is a failed review.
	OutcomeReduce Outcome = "reduce"
	// OutcomeReset drops back to the first interval.
	OutcomeReset Outcome = "reset"
)

// Outcomes lists every outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeIncrease, OutcomeRepeat, OutcomeReduce, OutcomeReset}
}

// ParseOutcome accepts an outcome name or one of its command aliases.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase", "update", "u", "schedule", "s":
		return OutcomeIncrease, nil
	case "repeat", "r":
		return OutcomeRepeat, nil
	case "reduce", "hard", "h":
		return OutcomeReduce, nil
	case "reset", "x":
		return OutcomeReset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
	}
}

// Verb returns the past-tense label used in trace messages.
func (o Outcome) Verb() string {
	switch o {
	case OutcomeIncrease:
		return "Updated"
	case OutcomeRepeat:
		return "Repeated"
	case OutcomeReduce:
		return "Hard updated"
	case OutcomeReset:
		return "Reset"
	default:
		return string(o)
	}
}

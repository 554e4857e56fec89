package task

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the on-disk date format.
const DateLayout = "2006-01-02"

// Years representable in DateLayout.
const (
	MinYear = 0
	MaxYear = 9999
)

// maxDayOffset is wider than the representable range and keeps AddDate
// from overflowing.
const maxDayOffset = (MaxYear - MinYear + 1) * 366

// ErrDateRange is returned when a date falls outside years 0000-9999.
var ErrDateRange = errors.New("date out of range")

// Date is a calendar day with no time of day and no zone.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month, and day.
// Out-of-range values are normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date should be in YYYY-MM-DD format: %w", err)
	}
	return Date{t: t}, nil
}

// AddDays returns the date n days after d. It fails with ErrDateRange when
// the result cannot be written as YYYY-MM-DD.
func (d Date) AddDays(n int) (Date, error) {
	if n > maxDayOffset || n < -maxDayOffset {
		return Date{}, fmt.Errorf("%w: %s plus %d days", ErrDateRange, d, n)
	}
	next := Date{t: d.t.AddDate(0, 0, n)}
	if !next.InRange() {
		return Date{}, fmt.Errorf("%w: %s plus %d days", ErrDateRange, d, n)
	}
	return next, nil
}

// InRange reports whether d has a year between MinYear and MaxYear.
func (d Date) InRange() bool {
	y := d.t.Year()
	return y >= MinYear && y <= MaxYear
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

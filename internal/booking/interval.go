package booking

import (
	"fmt"
	"time"

	"mesaYaApi/internal/model"
)

// Date and time layouts used across the API and the database columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Interval is a half-open time range [Start, End). All slot intervals are
// built in UTC. An interval whose start is late in the evening may end past
// midnight; that is ordinary time arithmetic, never clamped to the day.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two half-open intervals share at least one
// instant: startA < endB && startB < endA.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Covers reports whether t falls inside the interval, inclusive on both
// ends. The real-time availability view uses this check; the allocation
// path sticks to the half-open Overlaps test.
func (iv Interval) Covers(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// SlotStart parses a date ("YYYY-MM-DD") and a clock time ("HH:MM") into
// the UTC start instant of the slot.
func SlotStart(date, clock string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// SlotInterval returns the interval occupied by a booking starting at the
// given date and clock time with the given duration in minutes.
func SlotInterval(date, clock string, durationMinutes uint32) (Interval, error) {
	start, err := SlotStart(date, clock)
	if err != nil {
		return Interval{}, err
	}
	return IntervalFrom(start, durationMinutes), nil
}

// DefaultSlotInterval is SlotInterval with the fixed default duration.
func DefaultSlotInterval(date, clock string) (Interval, error) {
	return SlotInterval(date, clock, model.DefaultDurationMinutes)
}

// IntervalFrom builds the half-open interval starting at start and lasting
// durationMinutes.
func IntervalFrom(start time.Time, durationMinutes uint32) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

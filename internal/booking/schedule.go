package booking

import (
	"fmt"
	"time"

	"mesaYaApi/internal/model"
)

// window describes the bookable hours of one weekday in minutes since
// midnight. A wrapping window crosses midnight: a time is inside it when
// it is at or after start OR strictly before end.
type window struct {
	start int
	end   int
	wraps bool
	hint  string
}

// businessHours keys the schedule by weekday instead of scattering the
// rules across conditionals. End bounds are exclusive.
var businessHours = map[time.Weekday]window{
	time.Monday:    {start: 10 * 60, end: 24 * 60, hint: "Monday to Friday: 10:00 to 24:00"},
	time.Tuesday:   {start: 10 * 60, end: 24 * 60, hint: "Monday to Friday: 10:00 to 24:00"},
	time.Wednesday: {start: 10 * 60, end: 24 * 60, hint: "Monday to Friday: 10:00 to 24:00"},
	time.Thursday:  {start: 10 * 60, end: 24 * 60, hint: "Monday to Friday: 10:00 to 24:00"},
	time.Friday:    {start: 10 * 60, end: 24 * 60, hint: "Monday to Friday: 10:00 to 24:00"},
	time.Saturday:  {start: 22 * 60, end: 2 * 60, wraps: true, hint: "Saturdays: 22:00 to 02:00"},
	time.Sunday:    {start: 12 * 60, end: 16 * 60, hint: "Sundays: 12:00 to 16:00"},
}

// ValidateSchedule checks a requested slot against the weekday business
// hours and the minimum advance notice. Both checks run before any
// availability lookup so invalid requests are rejected cheaply. The slot
// must start strictly later than now + model.MinAdvanceMinutes.
func ValidateSchedule(date, clock string, now time.Time) error {
	start, err := SlotStart(date, clock)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	w := businessHours[start.Weekday()]
	minutes := start.Hour()*60 + start.Minute()

	var inside bool
	if w.wraps {
		inside = minutes >= w.start || minutes < w.end
	} else {
		inside = minutes >= w.start && minutes < w.end
	}
	if !inside {
		return fmt.Errorf("%w. %s", ErrInvalidSchedule, w.hint)
	}

	if !start.After(now.Add(model.MinAdvanceMinutes * time.Minute)) {
		return ErrInsufficientAdvance
	}
	return nil
}

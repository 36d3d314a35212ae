// Package booking implements the table allocation engine: business-hour
// validation, slot interval math, the bounded table-combination search and
// the fixed-priority location allocator. It is pure domain logic; callers
// supply availability data through the AvailabilityProvider interface.
package booking

import "errors"

// Sentinel errors surfaced by the engine. Handlers compare with errors.Is
// and translate them into HTTP responses; none represents a crash.
var (
	// ErrInvalidSchedule is returned when the requested time falls outside
	// the business hours of that weekday. Wrapped variants carry the
	// applicable window in the message.
	ErrInvalidSchedule = errors.New("requested time is outside business hours")

	// ErrInsufficientAdvance is returned when the slot is not strictly
	// later than now plus the minimum advance notice.
	ErrInsufficientAdvance = errors.New("reservations must be made at least 15 minutes in advance")

	// ErrNoAvailability is returned when no location can seat the party
	// with at most three tables for the requested slot.
	ErrNoAvailability = errors.New("no tables available for the requested date and time")

	// ErrAlreadyCancelled is returned when cancelling a reservation that
	// is already cancelled.
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")

	// ErrPastReservation is returned when cancelling a reservation whose
	// start is not strictly in the future.
	ErrPastReservation = errors.New("past reservations cannot be cancelled")
)

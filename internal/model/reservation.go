package model

import "time"

// Reservation status values. The engine only ever writes "confirmed" on
// create and "cancelled" on cancel; "pending" and "completed" exist in
// the column enum for operational tooling but are not produced here.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Fixed booking rules.
const (
	// MaxTablesPerReservation caps the size of a table combination.
	MaxTablesPerReservation = 3
	// DefaultDurationMinutes is the fixed slot length; variable durations
	// are not supported.
	DefaultDurationMinutes = 120
	// MinAdvanceMinutes is the minimum lead time between "now" and the
	// reserved slot.
	MinAdvanceMinutes = 15
	// MaxPartySize is MaxTablesPerReservation times the largest seeded
	// table capacity (6).
	MaxPartySize = 18
)

// Reservation records a booking for a party at one location, backed by
// one to three tables. The location is assigned by the engine, never
// chosen by the caller. Rows are never deleted; cancellation flips the
// status only.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  Date            – reservation date, "YYYY-MM-DD".
//  Time            – reservation start time, "HH:MM".
//  PartySize       – number of guests (1..MaxPartySize).
//  Location        – seating zone assigned by the allocator.
//  DurationMinutes – slot length, always DefaultDurationMinutes.
//  Status          – one of the status constants above.
//  Tables          – assigned tables, populated by an explicit query.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    `json:"id"`               // reservations.id
	UserID          uint64    `json:"user_id"`          // reservations.user_id
	Date            string    `json:"reservation_date"` // reservations.reservation_date
	Time            string    `json:"reservation_time"` // reservations.reservation_time
	PartySize       uint32    `json:"party_size"`       // reservations.party_size
	Location        string    `json:"location"`         // reservations.location
	DurationMinutes uint32    `json:"duration_minutes"` // reservations.duration_minutes
	Status          string    `json:"status"`           // reservations.status
	Tables          []Table   `json:"tables"`           // via reservation_table pivot
	CreatedAt       time.Time `json:"created_at"`       // reservations.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // reservations.updated_at
}

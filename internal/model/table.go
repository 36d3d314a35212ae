package model

import "time"

// Locations lists the seating zones of the venue in allocation priority
// order. The allocator always walks this slice front to back; it is never
// reordered by load or any other heuristic.
var Locations = []string{"A", "B", "C", "D"}

// ValidLocation reports whether s names one of the seating zones.
func ValidLocation(s string) bool {
	for _, l := range Locations {
		if l == s {
			return true
		}
	}
	return false
}

// Table represents a seating unit as stored in the `tables` table.
// Everything except IsAvailable is immutable after seeding.
//
// Fields:
//  ID          – primary key identifier.
//  Location    – seating zone (A, B, C or D).
//  TableNumber – number of the table, unique within its location.
//  Capacity    – seats at this table (positive).
//  IsAvailable – administrative flag, independent of bookings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Table struct {
	ID          uint64    `json:"id"`           // tables.id
	Location    string    `json:"location"`     // tables.location
	TableNumber uint32    `json:"table_number"` // tables.table_number
	Capacity    uint32    `json:"capacity"`     // tables.capacity
	IsAvailable bool      `json:"is_available"` // tables.is_available
	CreatedAt   time.Time `json:"-"`            // tables.created_at
	UpdatedAt   time.Time `json:"-"`            // tables.updated_at
}

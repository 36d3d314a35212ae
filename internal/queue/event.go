// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for reservation events.
package queue

// ReservationEvent is published whenever the engine confirms or cancels a
// reservation. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type ReservationEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	Status        string   `json:"status"`
	Location      string   `json:"location"`
	Date          string   `json:"reservation_date"`
	Time          string   `json:"reservation_time"`
	PartySize     uint32   `json:"party_size"`
	TableIDs      []uint64 `json:"table_ids"`
	OccurredAt    string   `json:"occurred_at"`
}

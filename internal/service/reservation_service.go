// Package service orchestrates the reservation lifecycle: validation,
// allocation, atomic persistence, cache invalidation and event publishing.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"mesaYaApi/internal/booking"
	"mesaYaApi/internal/cache"
	"mesaYaApi/internal/model"
	"mesaYaApi/internal/queue"
	"mesaYaApi/internal/repository"
)

// createAttempts bounds the allocate-then-insert retry loop. Each retry
// re-runs allocation after a commit-time table conflict; past the bound the
// slot is treated as unavailable.
const createAttempts = 3

// TableStore is the table persistence contract the service depends on.
// *repository.TableRepo satisfies it; tests substitute fakes.
type TableStore interface {
	AvailableByLocation(ctx context.Context, location string) ([]model.Table, error)
	All(ctx context.Context) ([]model.Table, error)
}

// ReservationStore is the reservation persistence contract.
// *repository.ReservationRepo satisfies it; tests substitute fakes.
type ReservationStore interface {
	ActiveByLocationDate(ctx context.Context, location, date string) ([]repository.OccupancyRow, error)
	CreateConfirmed(ctx context.Context, res *model.Reservation, tableIDs []uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	MarkCancelled(ctx context.Context, id uint64) error
	AvailabilityByDate(ctx context.Context, date string) ([]repository.AvailabilityRow, error)
	ListByDate(ctx context.Context, date string) ([]repository.ByDateRow, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
}

// EventPublisher pushes reservation events to the broker. A nil publisher
// disables publishing.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

// ReservationService implements the reservation lifecycle on top of the
// booking engine. It owns the availability cache: every mutation flushes
// it entirely (coarse by design, see the cache package).
type ReservationService struct {
	tables       TableStore
	reservations ReservationStore
	cache        cache.Availability
	publisher    EventPublisher
	allocator    *booking.Allocator
	now          func() time.Time
}

// NewReservationService wires the service. tables, reservations and
// availability must be non-nil; publisher may be nil.
func NewReservationService(tables TableStore, reservations ReservationStore, availability cache.Availability, publisher EventPublisher) *ReservationService {
	if tables == nil || reservations == nil || availability == nil {
		panic("nil dependency passed to NewReservationService")
	}
	s := &ReservationService{
		tables:       tables,
		reservations: reservations,
		cache:        availability,
		publisher:    publisher,
		now:          time.Now,
	}
	s.allocator = booking.NewAllocator(availabilityProvider{s})
	return s
}

// availabilityProvider adapts the cached overlap resolver to the
// booking.AvailabilityProvider interface.
type availabilityProvider struct{ s *ReservationService }

func (p availabilityProvider) AvailableTables(ctx context.Context, location, date, clock string) ([]model.Table, error) {
	return p.s.availableTables(ctx, location, date, clock)
}

// availableTables is the overlap resolver behind the availability cache:
// the location's administratively available tables minus those occupied by
// a non-cancelled reservation whose interval overlaps the requested slot.
func (s *ReservationService) availableTables(ctx context.Context, location, date, clock string) ([]model.Table, error) {
	if tables, ok := s.cache.Get(ctx, location, date, clock); ok {
		return tables, nil
	}

	candidate, err := booking.DefaultSlotInterval(date, clock)
	if err != nil {
		return nil, err
	}

	rows, err := s.reservations.ActiveByLocationDate(ctx, location, date)
	if err != nil {
		return nil, err
	}
	occupied := make(map[uint64]struct{})
	for _, row := range rows {
		iv, err := booking.SlotInterval(date, row.Time, row.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if iv.Overlaps(candidate) {
			occupied[row.TableID] = struct{}{}
		}
	}

	all, err := s.tables.AvailableByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	free := make([]model.Table, 0, len(all))
	for _, t := range all {
		if _, taken := occupied[t.ID]; !taken {
			free = append(free, t)
		}
	}

	s.cache.Set(ctx, location, date, clock, free)
	return free, nil
}

// Create books a reservation: schedule validation first (cheap rejection),
// then location allocation, then the atomic insert. A commit-time table
// conflict (another request won the same tables) flushes the cache and
// re-runs allocation up to createAttempts times before surfacing
// ErrNoAvailability. On success the full cache is invalidated and a
// confirmed event published.
func (s *ReservationService) Create(ctx context.Context, userID uint64, date, clock string, partySize uint32) (*model.Reservation, error) {
	if err := booking.ValidateSchedule(date, clock, s.now()); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		alloc, err := s.allocator.Allocate(ctx, date, clock, int(partySize))
		if err != nil {
			return nil, err
		}
		if alloc == nil {
			return nil, booking.ErrNoAvailability
		}

		res := &model.Reservation{
			UserID:          userID,
			Date:            date,
			Time:            clock,
			PartySize:       partySize,
			Location:        alloc.Location,
			DurationMinutes: model.DefaultDurationMinutes,
		}
		err = s.reservations.CreateConfirmed(ctx, res, alloc.TableIDs())
		if errors.Is(err, repository.ErrTableConflict) {
			// Stale availability; flush and retry with fresh data.
			s.cache.InvalidateAll(ctx)
			continue
		}
		if err != nil {
			return nil, err
		}

		res.Tables = alloc.Tables
		s.cache.InvalidateAll(ctx)
		s.publish(ctx, res)
		return res, nil
	}
	return nil, booking.ErrNoAvailability
}

// Cancel flips a future, non-cancelled reservation to cancelled and
// flushes the availability cache so its tables become bookable again.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status == model.StatusCancelled {
		return nil, booking.ErrAlreadyCancelled
	}
	start, err := booking.SlotStart(res.Date, res.Time)
	if err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, booking.ErrPastReservation
	}

	if err := s.reservations.MarkCancelled(ctx, id); err != nil {
		return nil, err
	}
	res.Status = model.StatusCancelled
	s.cache.InvalidateAll(ctx)
	s.publish(ctx, res)
	return res, nil
}

// publish emits a reservation event; failures are logged and swallowed so
// broker trouble never fails the request.
func (s *ReservationService) publish(ctx context.Context, res *model.Reservation) {
	if s.publisher == nil {
		return
	}
	ids := make([]uint64, 0, len(res.Tables))
	for _, t := range res.Tables {
		ids = append(ids, t.ID)
	}
	ev := queue.ReservationEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		Status:        res.Status,
		Location:      res.Location,
		Date:          res.Date,
		Time:          res.Time,
		PartySize:     res.PartySize,
		TableIDs:      ids,
		OccurredAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishReservationEvent(ctx, ev); err != nil {
		log.Printf("reservation-service: publish event failed: %v", err)
	}
}

// TableReservation is the occupant detail embedded in an occupied table of
// the availability view.
type TableReservation struct {
	ID        uint64 `json:"id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	PartySize uint32 `json:"party_size"`
	TimeRange string `json:"time_range"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TableStatus is one table of the availability view.
type TableStatus struct {
	ID          uint64            `json:"id"`
	TableNumber uint32            `json:"table_number"`
	Capacity    uint32            `json:"capacity"`
	Status      string            `json:"status"`
	Reservation *TableReservation `json:"reservation"`
}

// AvailabilitySummary aggregates table counts across locations.
type AvailabilitySummary struct {
	TotalTables int `json:"total_tables"`
	Available   int `json:"available"`
	Occupied    int `json:"occupied"`
}

// AvailabilityReport is the full real-time availability view.
type AvailabilityReport struct {
	Summary          AvailabilitySummary      `json:"summary"`
	TablesByLocation map[string][]TableStatus `json:"tables_by_location"`
}

// TablesAvailability reports the live status of every table at the given
// instant. A table counts as occupied when the instant falls inside a
// non-cancelled reservation's interval, inclusive on both ends: a booking
// ending exactly at the queried time still shows the table occupied, which
// is how the point-in-time view has always behaved (the allocation path
// keeps the half-open test).
func (s *ReservationService) TablesAvailability(ctx context.Context, date, clock string) (*AvailabilityReport, error) {
	checkTime, err := booking.SlotStart(date, clock)
	if err != nil {
		return nil, err
	}

	rows, err := s.reservations.AvailabilityByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	occupants := make(map[uint64]*TableReservation)
	for _, row := range rows {
		start, err := booking.SlotStart(date, row.Time)
		if err != nil {
			return nil, err
		}
		iv := booking.IntervalFrom(start, row.DurationMinutes)
		if !iv.Covers(checkTime) {
			continue
		}
		if _, seen := occupants[row.TableID]; seen {
			continue // first overlapping reservation wins
		}
		startStr := iv.Start.Format(booking.TimeLayout)
		endStr := iv.End.Format(booking.TimeLayout)
		occupants[row.TableID] = &TableReservation{
			ID:        row.ReservationID,
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
			PartySize: row.PartySize,
			TimeRange: startStr + " - " + endStr,
			StartTime: startStr,
			EndTime:   endStr,
		}
	}

	tables, err := s.tables.All(ctx)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{TablesByLocation: make(map[string][]TableStatus)}
	for _, t := range tables {
		ts := TableStatus{
			ID:          t.ID,
			TableNumber: t.TableNumber,
			Capacity:    t.Capacity,
			Status:      "available",
		}
		if occ := occupants[t.ID]; occ != nil {
			ts.Status = "occupied"
			ts.Reservation = occ
			report.Summary.Occupied++
		}
		report.Summary.TotalTables++
		report.TablesByLocation[t.Location] = append(report.TablesByLocation[t.Location], ts)
	}
	report.Summary.Available = report.Summary.TotalTables - report.Summary.Occupied
	return report, nil
}

// ReservationsByDate returns the date's non-cancelled reservations grouped
// by location, each with its table labels pre-joined by the database.
func (s *ReservationService) ReservationsByDate(ctx context.Context, date string) (map[string][]repository.ByDateRow, error) {
	rows, err := s.reservations.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]repository.ByDateRow)
	for _, row := range rows {
		grouped[row.Location] = append(grouped[row.Location], row)
	}
	return grouped, nil
}

// ListAll returns every reservation, newest first.
func (s *ReservationService) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.ListAll(ctx)
}

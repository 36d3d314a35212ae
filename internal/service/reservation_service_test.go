package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"mesaYaApi/internal/booking"
	"mesaYaApi/internal/cache"
	"mesaYaApi/internal/model"
	"mesaYaApi/internal/queue"
	"mesaYaApi/internal/repository"
)

// fakeTableStore serves the seeded fleet from memory.
type fakeTableStore struct {
	tables []model.Table
}

func seededTableStore() *fakeTableStore {
	var tables []model.Table
	id := uint64(0)
	for _, loc := range model.Locations {
		for i, capacity := range []uint32{2, 2, 4, 4, 6} {
			id++
			tables = append(tables, model.Table{
				ID:          id,
				Location:    loc,
				TableNumber: uint32(i + 1),
				Capacity:    capacity,
				IsAvailable: true,
			})
		}
	}
	return &fakeTableStore{tables: tables}
}

func (f *fakeTableStore) AvailableByLocation(_ context.Context, location string) ([]model.Table, error) {
	var out []model.Table
	for _, t := range f.tables {
		if t.Location == location && t.IsAvailable {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTableStore) All(_ context.Context) ([]model.Table, error) {
	return append([]model.Table(nil), f.tables...), nil
}

// fakeReservationStore keeps reservations in memory. Setting conflicts > 0
// makes the next CreateConfirmed calls fail with ErrTableConflict, which
// simulates losing the commit-time race.
type fakeReservationStore struct {
	nextID      uint64
	byID        map[uint64]*storedReservation
	conflicts   int
	createCalls int
}

type storedReservation struct {
	res      model.Reservation
	tableIDs []uint64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byID: make(map[uint64]*storedReservation)}
}

func (f *fakeReservationStore) ActiveByLocationDate(_ context.Context, location, date string) ([]repository.OccupancyRow, error) {
	var out []repository.OccupancyRow
	for _, s := range f.byID {
		if s.res.Location != location || s.res.Date != date || s.res.Status == model.StatusCancelled {
			continue
		}
		for _, id := range s.tableIDs {
			out = append(out, repository.OccupancyRow{
				TableID:         id,
				Time:            s.res.Time,
				DurationMinutes: s.res.DurationMinutes,
			})
		}
	}
	return out, nil
}

func (f *fakeReservationStore) CreateConfirmed(_ context.Context, res *model.Reservation, tableIDs []uint64) error {
	f.createCalls++
	if f.conflicts > 0 {
		f.conflicts--
		return repository.ErrTableConflict
	}
	f.nextID++
	res.ID = f.nextID
	res.Status = model.StatusConfirmed
	stored := *res
	f.byID[res.ID] = &storedReservation{res: stored, tableIDs: append([]uint64(nil), tableIDs...)}
	return nil
}

func (f *fakeReservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := s.res
	res.Tables = nil
	for _, tid := range s.tableIDs {
		res.Tables = append(res.Tables, model.Table{ID: tid})
	}
	return &res, nil
}

func (f *fakeReservationStore) MarkCancelled(_ context.Context, id uint64) error {
	s, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.res.Status = model.StatusCancelled
	return nil
}

func (f *fakeReservationStore) AvailabilityByDate(_ context.Context, date string) ([]repository.AvailabilityRow, error) {
	var out []repository.AvailabilityRow
	for _, s := range f.byID {
		if s.res.Date != date || s.res.Status == model.StatusCancelled {
			continue
		}
		for _, id := range s.tableIDs {
			out = append(out, repository.AvailabilityRow{
				TableID:         id,
				ReservationID:   s.res.ID,
				Time:            s.res.Time,
				PartySize:       s.res.PartySize,
				DurationMinutes: s.res.DurationMinutes,
				UserName:        "Dana",
				UserEmail:       "dana@example.com",
			})
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListByDate(_ context.Context, date string) ([]repository.ByDateRow, error) {
	var out []repository.ByDateRow
	for _, s := range f.byID {
		if s.res.Date != date || s.res.Status == model.StatusCancelled {
			continue
		}
		out = append(out, repository.ByDateRow{
			ReservationID: s.res.ID,
			Location:      s.res.Location,
			Time:          s.res.Time,
			PartySize:     s.res.PartySize,
			Status:        s.res.Status,
			UserName:      "Dana",
			UserEmail:     "dana@example.com",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationID < out[j].ReservationID })
	return out, nil
}

func (f *fakeReservationStore) ListAll(_ context.Context) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, s.res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakePublisher struct {
	events []queue.ReservationEvent
}

func (p *fakePublisher) PublishReservationEvent(_ context.Context, ev queue.ReservationEvent) error {
	p.events = append(p.events, ev)
	return nil
}

// testNow is a Monday morning, well before the evening slots the tests book.
var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeReservationStore, pub EventPublisher) *ReservationService {
	svc := NewReservationService(seededTableStore(), store, cache.NewMemoryAvailability(5*time.Minute), pub)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateAllocatesFirstFeasibleLocation(t *testing.T) {
	store := newFakeReservationStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	res, err := svc.Create(context.Background(), 7, "2025-06-02", "19:00", 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Location != "A" {
		t.Fatalf("location = %s, want A", res.Location)
	}
	if res.Status != model.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", res.Status)
	}
	if res.DurationMinutes != model.DefaultDurationMinutes {
		t.Fatalf("duration = %d, want %d", res.DurationMinutes, model.DefaultDurationMinutes)
	}
	// Party of 10 fits exactly in the 4+6 pair.
	if len(res.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(res.Tables))
	}
	total := uint32(0)
	for _, tab := range res.Tables {
		total += tab.Capacity
	}
	if total != 10 {
		t.Fatalf("combined capacity = %d, want 10", total)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.ReservationID != res.ID || ev.Status != model.StatusConfirmed || len(ev.TableIDs) != 2 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestCreateOverflowsToNextLocation(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, 7, "2025-06-02", "19:00", 10)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if first.Location != "A" {
		t.Fatalf("first location = %s, want A", first.Location)
	}

	// A's remaining tables seat 2+2+4 = 8 < 10, so the pre-filter skips it.
	second, err := svc.Create(ctx, 8, "2025-06-02", "19:00", 10)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.Location != "B" {
		t.Fatalf("second location = %s, want B", second.Location)
	}
}

func TestCreateRejectsOutsideBusinessHours(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)

	// Sundays close at 16:00.
	_, err := svc.Create(context.Background(), 7, "2025-06-08", "17:00", 4)
	if !errors.Is(err, booking.ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
	if store.createCalls != 0 {
		t.Fatal("store must not be touched for an invalid schedule")
	}
}

func TestCreateRejectsInsufficientAdvance(t *testing.T) {
	svc := newTestService(newFakeReservationStore(), nil)

	// now is 10:00; 10:10 is inside the 15-minute cutoff.
	_, err := svc.Create(context.Background(), 7, "2025-06-02", "10:10", 4)
	if !errors.Is(err, booking.ErrInsufficientAdvance) {
		t.Fatalf("err = %v, want ErrInsufficientAdvance", err)
	}
}

func TestCreateRetriesAfterTableConflict(t *testing.T) {
	store := newFakeReservationStore()
	store.conflicts = 1
	svc := newTestService(store, nil)

	res, err := svc.Create(context.Background(), 7, "2025-06-02", "19:00", 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res == nil || res.Status != model.StatusConfirmed {
		t.Fatalf("res = %+v, want a confirmed reservation", res)
	}
	if store.createCalls != 2 {
		t.Fatalf("createCalls = %d, want 2 (one conflict, one success)", store.createCalls)
	}
}

func TestCreateGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newFakeReservationStore()
	store.conflicts = createAttempts
	svc := newTestService(store, nil)

	_, err := svc.Create(context.Background(), 7, "2025-06-02", "19:00", 4)
	if !errors.Is(err, booking.ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
	if store.createCalls != createAttempts {
		t.Fatalf("createCalls = %d, want %d", store.createCalls, createAttempts)
	}
}

func TestCreateNoAvailabilityForOversizedParty(t *testing.T) {
	svc := newTestService(newFakeReservationStore(), nil)

	// Three largest tables per location seat 4+4+6 = 14.
	_, err := svc.Create(context.Background(), 7, "2025-06-02", "19:00", 15)
	if !errors.Is(err, booking.ErrNoAvailability) {
		t.Fatalf("err = %v, want ErrNoAvailability", err)
	}
}

func TestCancelLifecycle(t *testing.T) {
	store := newFakeReservationStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, "2025-06-02", "19:00", 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, res.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	if _, err := svc.Cancel(ctx, res.ID); !errors.Is(err, booking.ErrAlreadyCancelled) {
		t.Fatalf("second cancel err = %v, want ErrAlreadyCancelled", err)
	}
	if _, err := svc.Cancel(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown id err = %v, want ErrNotFound", err)
	}

	// One create event plus one cancel event.
	if len(pub.events) != 2 || pub.events[1].Status != model.StatusCancelled {
		t.Fatalf("events = %+v, want confirmed then cancelled", pub.events)
	}
}

func TestCancelRejectsPastReservation(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)

	// Seed a reservation that started before now (Sunday lunch the day
	// before testNow).
	store.nextID++
	store.byID[store.nextID] = &storedReservation{
		res: model.Reservation{
			ID:              store.nextID,
			UserID:          7,
			Date:            "2025-06-01",
			Time:            "12:00",
			PartySize:       4,
			Location:        "A",
			DurationMinutes: model.DefaultDurationMinutes,
			Status:          model.StatusConfirmed,
		},
		tableIDs: []uint64{3},
	}

	if _, err := svc.Cancel(context.Background(), store.nextID); !errors.Is(err, booking.ErrPastReservation) {
		t.Fatalf("err = %v, want ErrPastReservation", err)
	}
}

func TestCancelFreesTablesForReuse(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	// Party of 14 takes the whole 4+4+6 triple, filling the location's
	// usable capacity for the slot.
	first, err := svc.Create(ctx, 7, "2025-06-02", "19:00", 14)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if first.Location != "A" {
		t.Fatalf("first location = %s, want A", first.Location)
	}

	second, err := svc.Create(ctx, 8, "2025-06-02", "19:00", 14)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.Location != "B" {
		t.Fatalf("second location = %s, want B", second.Location)
	}

	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// The cancel flushed the availability cache, so A is bookable again.
	third, err := svc.Create(ctx, 9, "2025-06-02", "19:00", 14)
	if err != nil {
		t.Fatalf("third Create: %v", err)
	}
	if third.Location != "A" {
		t.Fatalf("third location = %s, want A after cancel", third.Location)
	}
}

func TestTablesAvailabilityReport(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, "2025-06-02", "19:00", 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	report, err := svc.TablesAvailability(ctx, "2025-06-02", "19:30")
	if err != nil {
		t.Fatalf("TablesAvailability: %v", err)
	}
	if report.Summary.TotalTables != 20 || report.Summary.Occupied != 2 || report.Summary.Available != 18 {
		t.Fatalf("summary = %+v, want 20 total, 2 occupied, 18 available", report.Summary)
	}

	var occupied int
	for _, ts := range report.TablesByLocation["A"] {
		if ts.Status != "occupied" {
			continue
		}
		occupied++
		if ts.Reservation == nil {
			t.Fatal("occupied table missing reservation detail")
		}
		if ts.Reservation.ID != res.ID || ts.Reservation.TimeRange != "19:00 - 21:00" {
			t.Fatalf("reservation detail = %+v", ts.Reservation)
		}
	}
	if occupied != 2 {
		t.Fatalf("occupied tables in A = %d, want 2", occupied)
	}

	// The view is inclusive at the slot end.
	atEnd, err := svc.TablesAvailability(ctx, "2025-06-02", "21:00")
	if err != nil {
		t.Fatalf("TablesAvailability at end: %v", err)
	}
	if atEnd.Summary.Occupied != 2 {
		t.Fatalf("occupied at 21:00 = %d, want 2", atEnd.Summary.Occupied)
	}

	after, err := svc.TablesAvailability(ctx, "2025-06-02", "21:01")
	if err != nil {
		t.Fatalf("TablesAvailability after end: %v", err)
	}
	if after.Summary.Occupied != 0 {
		t.Fatalf("occupied at 21:01 = %d, want 0", after.Summary.Occupied)
	}
}

func TestReservationsByDateGroupsByLocation(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 7, "2025-06-02", "19:00", 14); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := svc.Create(ctx, 8, "2025-06-02", "19:00", 14); err != nil {
		t.Fatalf("second Create: %v", err)
	}

	grouped, err := svc.ReservationsByDate(ctx, "2025-06-02")
	if err != nil {
		t.Fatalf("ReservationsByDate: %v", err)
	}
	if len(grouped["A"]) != 1 || len(grouped["B"]) != 1 {
		t.Fatalf("grouped = %+v, want one reservation in A and one in B", grouped)
	}
}

func TestListAllNewestFirst(t *testing.T) {
	store := newFakeReservationStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, 7, "2025-06-02", "18:00", 2)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := svc.Create(ctx, 8, "2025-06-03", "18:00", 2)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("ListAll order = %+v, want newest first", all)
	}
}

package booking

import (
	"context"
	"sort"

	"mesaYaApi/internal/model"
)

// AvailabilityProvider yields the tables of a location that are free for
// the slot at (date, clock): administratively available and not occupied
// by any overlapping non-cancelled reservation. The service wires the
// cached overlap resolver in here; tests substitute fakes.
type AvailabilityProvider interface {
	AvailableTables(ctx context.Context, location, date, clock string) ([]model.Table, error)
}

// Allocation is the outcome of a successful location search.
type Allocation struct {
	Location string
	Tables   []model.Table
}

// TableIDs returns the ids of the allocated tables.
func (a *Allocation) TableIDs() []uint64 {
	ids := make([]uint64, 0, len(a.Tables))
	for _, t := range a.Tables {
		ids = append(ids, t.ID)
	}
	return ids
}

// Allocator walks the seating locations in fixed priority order and picks
// the first one that can seat the party with at most three tables.
type Allocator struct {
	provider AvailabilityProvider
}

// NewAllocator returns an Allocator backed by the given provider.
func NewAllocator(p AvailabilityProvider) *Allocator {
	if p == nil {
		panic("nil provider passed to NewAllocator")
	}
	return &Allocator{provider: p}
}

// Allocate searches locations A, B, C, D in that order. Per location it
// fetches the free tables, applies a cheap pre-filter (if even the three
// largest free tables cannot seat the party, no combination can, so the
// selector is skipped) and otherwise runs the combination search. The
// first location with a feasible combination wins; later locations are
// never examined. A nil Allocation with a nil error means every location
// is exhausted (callers surface ErrNoAvailability).
func (a *Allocator) Allocate(ctx context.Context, date, clock string, partySize int) (*Allocation, error) {
	for _, location := range model.Locations {
		tables, err := a.provider.AvailableTables(ctx, location, date, clock)
		if err != nil {
			return nil, err
		}
		if maxCombinedCapacity(tables, model.MaxTablesPerReservation) < partySize {
			continue
		}
		if picked := SelectTables(tables, partySize, model.MaxTablesPerReservation); picked != nil {
			return &Allocation{Location: location, Tables: picked}, nil
		}
	}
	return nil, nil
}

// maxCombinedCapacity sums the capacities of the n largest tables.
func maxCombinedCapacity(tables []model.Table, n int) int {
	caps := make([]int, 0, len(tables))
	for _, t := range tables {
		caps = append(caps, int(t.Capacity))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(caps)))
	if n > len(caps) {
		n = len(caps)
	}
	total := 0
	for i := 0; i < n; i++ {
		total += caps[i]
	}
	return total
}

package booking

import (
	"testing"
	"time"
)

func mustInterval(t *testing.T, date, clock string, minutes uint32) Interval {
	t.Helper()
	iv, err := SlotInterval(date, clock, minutes)
	if err != nil {
		t.Fatalf("SlotInterval(%s %s): %v", date, clock, err)
	}
	return iv
}

func TestIntervalOverlaps(t *testing.T) {
	base := mustInterval(t, "2025-06-02", "18:00", 120) // [18:00, 20:00)

	cases := []struct {
		name  string
		clock string
		want  bool
	}{
		{"identical slot", "18:00", true},
		{"starts inside", "19:00", true},
		{"ends inside", "17:00", true},
		{"ends exactly at start", "16:00", false},
		{"starts exactly at end", "20:00", false},
		{"well before", "10:00", false},
		{"well after", "22:30", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustInterval(t, "2025-06-02", tc.clock, 120)
			if got := base.Overlaps(other); got != tc.want {
				t.Fatalf("[18:00,20:00).Overlaps(%s+120m) = %v, want %v", tc.clock, got, tc.want)
			}
			// Overlap is symmetric.
			if got := other.Overlaps(base); got != tc.want {
				t.Fatalf("symmetry broken for %s", tc.clock)
			}
		})
	}
}

func TestIntervalCrossesMidnight(t *testing.T) {
	// Saturday 23:00 + 120 minutes ends at 01:00 on Sunday.
	late := mustInterval(t, "2025-06-07", "23:00", 120)
	wantEnd := time.Date(2025, 6, 8, 1, 0, 0, 0, time.UTC)
	if !late.End.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", late.End, wantEnd)
	}

	// A slot at 00:30 the next day still collides with it.
	early := mustInterval(t, "2025-06-08", "00:30", 120)
	if !late.Overlaps(early) {
		t.Fatal("23:00+120m should overlap next-day 00:30+120m")
	}
}

func TestIntervalCoversIsInclusive(t *testing.T) {
	iv := mustInterval(t, "2025-06-02", "18:00", 120)

	for _, tc := range []struct {
		name string
		at   time.Time
		want bool
	}{
		{"at start", iv.Start, true},
		{"mid slot", iv.Start.Add(time.Hour), true},
		{"at end", iv.End, true},
		{"just before start", iv.Start.Add(-time.Minute), false},
		{"just after end", iv.End.Add(time.Minute), false},
	} {
		if got := iv.Covers(tc.at); got != tc.want {
			t.Errorf("%s: Covers = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSlotStartRejectsMalformedInput(t *testing.T) {
	if _, err := SlotStart("2025-06-02", "7pm"); err == nil {
		t.Fatal("expected error for malformed clock time")
	}
	if _, err := SlotStart("June 2nd", "19:00"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

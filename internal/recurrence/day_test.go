package recurrence

import (
	"testing"
	"time"
)

func TestDayAt(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	d := Day{Year: 2026, Month: time.March, Date: 3}
	got, err := d.At("18:00", ny)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	// EST is UTC-5 in early March.
	want := time.Date(2026, 3, 3, 23, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("At = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("At must return UTC, got %v", got.Location())
	}

	if _, err := d.At("25:00", ny); err == nil {
		t.Fatal("out-of-range hour should error")
	}
}

func TestDayOfCrossesMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	// 02:00 UTC on March 4 is still the evening of March 3 in New York.
	instant := time.Date(2026, 3, 4, 2, 0, 0, 0, time.UTC)
	if got := DayOf(instant, ny); got != (Day{2026, time.March, 3}) {
		t.Fatalf("DayOf = %v, want 2026-03-03", got)
	}
	if got := DayOf(instant, time.UTC); got != (Day{2026, time.March, 4}) {
		t.Fatalf("DayOf = %v, want 2026-03-04", got)
	}
}

func TestDiff(t *testing.T) {
	old := []Day{
		{2026, time.March, 3},
		{2026, time.March, 5},
		{2026, time.March, 10},
	}
	new_ := []Day{
		{2026, time.March, 3},
		{2026, time.March, 7},
		{2026, time.March, 10},
		{2026, time.March, 12},
	}
	added, removed := Diff(old, new_)
	if len(added) != 2 || added[0] != (Day{2026, time.March, 7}) || added[1] != (Day{2026, time.March, 12}) {
		t.Fatalf("added = %v", added)
	}
	if len(removed) != 1 || removed[0] != (Day{2026, time.March, 5}) {
		t.Fatalf("removed = %v", removed)
	}

	added, removed = Diff(old, old)
	if len(added) != 0 || len(removed) != 0 {
		t.Fatalf("identical sets should diff empty, got %v / %v", added, removed)
	}
}

package recurrence

import (
	"testing"
	"time"
)

var (
	winStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) // Sunday
	winEnd   = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
)

func TestExpandWeekly(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	days, err := e.Expand("RRULE:FREQ=WEEKLY;BYDAY=TU,TH", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []Day{
		{2026, time.March, 3},
		{2026, time.March, 5},
		{2026, time.March, 10},
		{2026, time.March, 12},
	}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("got %v, want %v", days, want)
		}
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	a, err := e.Expand("RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	b, err := e.Expand("RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("expansions differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expansions differ: %v vs %v", a, b)
		}
	}
}

func TestExpandIntervalPhaseIsWindowIndependent(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	rule := "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=TU"

	a, err := e.Expand(rule, winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// Shift the window start back exactly one week.  Under a window-anchored
	// DTSTART that flips the biweekly phase; with the fixed anchor the days
	// inside the original window must not change.
	b, err := e.Expand(rule, winStart.AddDate(0, 0, -7), winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	var overlap []Day
	for _, d := range b {
		if !d.Before(DayOf(winStart, time.UTC)) {
			overlap = append(overlap, d)
		}
	}
	if len(a) != len(overlap) {
		t.Fatalf("phase drifted across windows: %v vs %v", a, overlap)
	}
	for i := range a {
		if a[i] != overlap[i] {
			t.Fatalf("phase drifted across windows: %v vs %v", a, overlap)
		}
	}
	if len(a) != 1 || a[0] != (Day{2026, time.March, 10}) {
		t.Fatalf("biweekly Tuesdays in window = %v, want [2026-03-10]", a)
	}
}

func TestCheckRule(t *testing.T) {
	if err := CheckRule(""); err != nil {
		t.Fatalf("empty rule should be valid, got %v", err)
	}
	if err := CheckRule("RRULE:FREQ=WEEKLY;BYDAY=TU,TH"); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	if err := CheckRule("RRULE:FREQ=FORTNIGHTLY"); err == nil {
		t.Fatal("undefined frequency should not parse")
	}
}

func TestExpandEmptyRule(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	days, err := e.Expand("  ", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if days != nil {
		t.Fatalf("empty rule should expand to nothing, got %v", days)
	}
}

func TestExpandRDates(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	days, err := e.Expand("RDATE:20260304T000000Z\nRDATE:20260307T000000Z", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []Day{{2026, time.March, 4}, {2026, time.March, 7}}
	if len(days) != 2 || days[0] != want[0] || days[1] != want[1] {
		t.Fatalf("got %v, want %v", days, want)
	}
}

func TestExpandCapsOccurrences(t *testing.T) {
	e := NewEngine(time.UTC, 14, 5)
	days, err := e.Expand("RRULE:FREQ=DAILY", winStart, winEnd)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(days) != 5 {
		t.Fatalf("cap of 5 produced %d days", len(days))
	}
}

func TestExpandBadRule(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	if _, err := e.Expand("RRULE:FREQ=FORTNIGHTLY", winStart, winEnd); err == nil {
		t.Fatal("malformed rule should error")
	}
}

func TestWindow(t *testing.T) {
	e := NewEngine(time.UTC, 14, 100)
	now := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)
	start, end := e.Window(now)
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window start %v, want midnight yesterday", start)
	}
	if !end.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window end %v, want start+15d", end)
	}
}

package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/recurrence"
)

// Monday 2026-03-02 noon.  The expansion window runs from Sunday 2026-03-01
// through 2026-03-16, so a TU,TH rule yields Mar 3, 5, 10 and 12.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestReconciler(store *memStore) *Reconciler {
	engine := recurrence.NewEngine(time.UTC, 14, 100)
	alloc := &Allocator{PerCourtMax: 4}
	return NewReconciler(store, engine, alloc, func() time.Time { return testNow })
}

func weeklyActivity() *model.Activity {
	return &model.Activity{
		ID:        1,
		Type:      model.TypeCourt,
		Title:     "Tuesday/Thursday doubles",
		Rule:      "RRULE:FREQ=WEEKLY;BYDAY=TU,TH",
		StartTime: "18:00",
		EndTime:   "19:30",
		Capacity:  8,
		IsActive:  true,
	}
}

func TestMaterializeWeeklyRule(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	rep, err := rec.Materialize(context.Background(), act)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if rep.Created != 4 || rep.Deleted != 0 || len(rep.Failures) != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}

	slots := store.allSlots()
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.StartsAt.Hour() != 18 || s.StartsAt.Minute() != 0 {
			t.Errorf("slot starts at %v, want 18:00", s.StartsAt)
		}
		if got := s.EndsAt.Sub(s.StartsAt); got != 90*time.Minute {
			t.Errorf("slot duration %v, want 90m", got)
		}
		if !s.StartsAt.After(testNow) {
			t.Errorf("materialized an elapsed slot at %v", s.StartsAt)
		}
		held, _ := store.CourtIDs(context.Background(), s.ID)
		if len(held) != 2 {
			t.Errorf("capacity 8 should hold 2 courts, got %v", held)
		}
	}
}

func TestReconcileUnchangedIsNoOp(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	rep, err := rec.Reconcile(context.Background(), act, SnapshotOf(act))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Created != 0 || rep.Deleted != 0 || rep.Resized != 0 {
		t.Fatalf("unchanged activity must be a no-op, got %+v", rep)
	}
}

func TestReconcileCapacityChangeResizesSurvivors(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	old := SnapshotOf(act)
	act.Capacity = 12

	rep, err := rec.Reconcile(context.Background(), act, old)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Resized != 4 || rep.Created != 0 || rep.Deleted != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}
	for _, s := range store.allSlots() {
		if s.Capacity != 12 {
			t.Errorf("slot capacity %d, want 12", s.Capacity)
		}
		held, _ := store.CourtIDs(context.Background(), s.ID)
		if len(held) != 3 {
			t.Errorf("capacity 12 should hold 3 courts, got %v", held)
		}
	}
}

func TestReconcileRuleChangeDeletesRemovedDays(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	old := SnapshotOf(act)
	act.Rule = "RRULE:FREQ=WEEKLY;BYDAY=TU"

	rep, err := rec.Reconcile(context.Background(), act, old)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Deleted != 2 || rep.Created != 0 {
		t.Fatalf("dropping TH should delete the two Thursday slots, got %+v", rep)
	}
	for _, s := range store.allSlots() {
		if s.StartsAt.Weekday() != time.Tuesday {
			t.Errorf("surviving slot on %v, want Tuesday only", s.StartsAt.Weekday())
		}
	}
}

func TestReconcileTimeChangeRegeneratesWindow(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// A slot that already ran last Tuesday is history and must outlive the
	// regeneration.
	elapsed := &model.Slot{
		ActivityID: act.ID,
		StartsAt:   time.Date(2026, 2, 24, 18, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, 2, 24, 19, 30, 0, 0, time.UTC),
		Capacity:   act.Capacity,
	}
	if err := store.InsertSlot(context.Background(), elapsed); err != nil {
		t.Fatalf("seed elapsed slot: %v", err)
	}

	old := SnapshotOf(act)
	act.StartTime = "19:00"
	act.EndTime = "20:30"

	rep, err := rec.Reconcile(context.Background(), act, old)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rep.Deleted != 4 || rep.Created != 4 {
		t.Fatalf("time-of-day change must regenerate all future slots, got %+v", rep)
	}
	var pastSurvived bool
	for _, s := range store.allSlots() {
		if !s.StartsAt.After(testNow) {
			pastSurvived = true
			if s.StartsAt.Hour() != 18 {
				t.Errorf("elapsed slot rewritten to %v, want untouched 18:00", s.StartsAt)
			}
			continue
		}
		if s.StartsAt.Hour() != 19 {
			t.Errorf("slot starts at %v, want 19:00", s.StartsAt)
		}
	}
	if !pastSurvived {
		t.Fatal("elapsed slot was deleted by the regeneration")
	}
}

func TestReconcileMalformedRuleLeavesScheduleIntact(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	old := SnapshotOf(act)
	act.StartTime = "19:00"
	act.EndTime = "20:30"
	act.Rule = "RRULE:FREQ=FORTNIGHTLY"

	_, err := rec.Reconcile(context.Background(), act, old)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if ve.Field != "rule" {
		t.Fatalf("flagged field %q, want %q", ve.Field, "rule")
	}
	slots := store.allSlots()
	if len(slots) != 4 {
		t.Fatalf("unparseable rule must leave the schedule intact, found %d slots", len(slots))
	}
	for _, s := range slots {
		if s.StartsAt.Hour() != 18 {
			t.Errorf("slot starts at %v, want original 18:00", s.StartsAt)
		}
	}
}

func TestMaterializeReportsExhaustedOccurrences(t *testing.T) {
	store := newMemStore(1)
	rec := newTestReconciler(store)
	act := weeklyActivity() // capacity 8 needs 2 courts, pool has 1

	rep, err := rec.Materialize(context.Background(), act)
	if !errors.Is(err, ErrCourtsExhausted) {
		t.Fatalf("want wrapped ErrCourtsExhausted, got %v", err)
	}
	if rep.Created != 0 || len(rep.Failures) != 4 {
		t.Fatalf("all four occurrences should fail, got %+v", rep)
	}
	if n := len(store.allSlots()); n != 0 {
		t.Fatalf("failed occurrences must not leave slots behind, found %d", n)
	}
}

func TestMaterializeSkipsElapsedOccurrences(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()
	act.Rule = "RDATE:20260301T000000Z\nRDATE:20260305T000000Z"

	rep, err := rec.Materialize(context.Background(), act)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// March 1 is in the past relative to the fixed clock; only March 5
	// materializes.
	if rep.Created != 1 {
		t.Fatalf("expected 1 created slot, got %+v", rep)
	}
	slots := store.allSlots()
	if len(slots) != 1 || slots[0].StartsAt.Day() != 5 {
		t.Fatalf("unexpected slots %+v", slots)
	}
}

func TestReconcileValidatesBeforeMutating(t *testing.T) {
	store := newMemStore(8)
	rec := newTestReconciler(store)
	act := weeklyActivity()

	if _, err := rec.Materialize(context.Background(), act); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	old := SnapshotOf(act)
	act.StartTime = "05:00" // before opening

	_, err := rec.Reconcile(context.Background(), act, old)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if n := len(store.allSlots()); n != 4 {
		t.Fatalf("validation failure must leave slots untouched, found %d", n)
	}
}

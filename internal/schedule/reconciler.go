package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/recurrence"
)

// Snapshot captures the schedule-relevant fields of an activity before an
// edit.  The reconciler compares it with the activity's current fields to
// decide between full regeneration, incremental diffing, or a no-op.
type Snapshot struct {
	Rule      string
	StartTime string
	EndTime   string
	Capacity  int
}

// SnapshotOf records an activity's current schedule fields.
func SnapshotOf(a *model.Activity) Snapshot {
	return Snapshot{Rule: a.Rule, StartTime: a.StartTime, EndTime: a.EndTime, Capacity: a.Capacity}
}

// Failure names one occurrence the reconciler could not schedule.
type Failure struct {
	StartsAt time.Time `json:"starts_at"`
	Reason   string    `json:"reason"`
}

// Report summarizes one reconciliation pass.  Failures lists occurrences
// that could not be created or resized; slots committed earlier in the
// same pass stay committed.
type Report struct {
	Created  int       `json:"created"`
	Deleted  int       `json:"deleted"`
	Resized  int       `json:"resized"`
	Failures []Failure `json:"failures,omitempty"`
}

// Reconciler keeps an activity's materialized slot set consistent with its
// declared recurrence, time of day and capacity.  Each slot mutation runs
// in its own transaction so a failure on one occurrence never rolls back
// others; per-occurrence failures are collected in the report.
type Reconciler struct {
	Store  Store
	Engine *recurrence.Engine
	Alloc  *Allocator
	Now    func() time.Time
}

// NewReconciler wires a reconciler.  now may be nil, in which case the
// wall clock is used.
func NewReconciler(store Store, engine *recurrence.Engine, alloc *Allocator, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{Store: store, Engine: engine, Alloc: alloc, Now: now}
}

// Materialize creates the full future slot set for a brand-new activity.
func (r *Reconciler) Materialize(ctx context.Context, act *model.Activity) (*Report, error) {
	return r.Reconcile(ctx, act, Snapshot{})
}

// Reconcile applies the difference between an activity's previous snapshot
// and its current fields to the materialized slot set.
//
// Decision order: a changed time of day invalidates every existing slot's
// identity, so all future slots are deleted and the window regenerated
// from scratch.  Otherwise added/removed occurrence days are computed by
// set difference and applied incrementally, resizing surviving slots when
// capacity changed.  Past slots are immutable history and are never
// touched.  Calling Reconcile again with old equal to the current state is
// a no-op.
func (r *Reconciler) Reconcile(ctx context.Context, act *model.Activity, old Snapshot) (*Report, error) {
	if err := ValidateActivity(act, r.Alloc.PerCourtMax); err != nil {
		return nil, err
	}
	now := r.Now()
	winStart, winEnd := r.Engine.Window(now)
	rep := &Report{}

	var toCreate []recurrence.Day
	if old.StartTime != act.StartTime || old.EndTime != act.EndTime {
		// Expand before deleting anything: a rule that fails to parse must
		// never cost the activity its existing schedule.
		days, err := r.Engine.Expand(act.Rule, winStart, winEnd)
		if err != nil {
			return rep, err
		}
		if err := r.dropFutureSlots(ctx, act.ID, now, rep); err != nil {
			return rep, err
		}
		toCreate = days
	} else {
		oldDays, err := r.Engine.Expand(old.Rule, winStart, winEnd)
		if err != nil {
			return rep, err
		}
		newDays, err := r.Engine.Expand(act.Rule, winStart, winEnd)
		if err != nil {
			return rep, err
		}
		added, removed := recurrence.Diff(oldDays, newDays)
		if len(added) == 0 && len(removed) == 0 && old.Capacity == act.Capacity {
			return rep, nil
		}

		for _, day := range removed {
			if err := r.deleteOccurrence(ctx, act, day, now, rep); err != nil {
				return rep, err
			}
		}
		if old.Capacity != act.Capacity {
			removedSet := make(map[recurrence.Day]struct{}, len(removed))
			for _, d := range removed {
				removedSet[d] = struct{}{}
			}
			for _, day := range oldDays {
				if _, gone := removedSet[day]; gone {
					continue
				}
				if err := r.resizeOccurrence(ctx, act, day, now, rep); err != nil {
					return rep, err
				}
			}
		}
		toCreate = added
	}

	for _, day := range toCreate {
		if err := r.createOccurrence(ctx, act, day, now, rep); err != nil {
			return rep, err
		}
	}

	if len(rep.Failures) > 0 {
		return rep, fmt.Errorf("%w: %d occurrence(s) not scheduled", ErrCourtsExhausted, len(rep.Failures))
	}
	return rep, nil
}

// dropFutureSlots deletes every future slot of the activity.  Deleting a
// slot cascades its registrations.
func (r *Reconciler) dropFutureSlots(ctx context.Context, activityID uint64, now time.Time, rep *Report) error {
	return r.Store.RunInTx(ctx, func(tx Tx) error {
		slots, err := tx.FutureSlots(ctx, activityID, now)
		if err != nil {
			return err
		}
		for _, s := range slots {
			if err := tx.DeleteSlot(ctx, s.ID); err != nil {
				return err
			}
			rep.Deleted++
		}
		return nil
	})
}

func (r *Reconciler) deleteOccurrence(ctx context.Context, act *model.Activity, day recurrence.Day, now time.Time, rep *Report) error {
	start, err := day.At(act.StartTime, r.Engine.Location)
	if err != nil {
		return err
	}
	return r.Store.RunInTx(ctx, func(tx Tx) error {
		slot, err := tx.SlotByStart(ctx, act.ID, start)
		if errors.Is(err, ErrSlotNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !slot.StartsAt.After(now) {
			return nil // elapsed slots are frozen
		}
		if err := tx.DeleteSlot(ctx, slot.ID); err != nil {
			return err
		}
		rep.Deleted++
		return nil
	})
}

func (r *Reconciler) resizeOccurrence(ctx context.Context, act *model.Activity, day recurrence.Day, now time.Time, rep *Report) error {
	start, err := day.At(act.StartTime, r.Engine.Location)
	if err != nil {
		return err
	}
	txErr := r.Store.RunInTx(ctx, func(tx Tx) error {
		slot, err := tx.SlotByStart(ctx, act.ID, start)
		if errors.Is(err, ErrSlotNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !slot.StartsAt.After(now) || slot.Capacity == act.Capacity {
			return nil
		}
		if err := r.Alloc.Resize(ctx, tx, slot, act.Capacity); err != nil {
			return err
		}
		rep.Resized++
		return nil
	})
	if errors.Is(txErr, ErrCourtsExhausted) {
		rep.Failures = append(rep.Failures, Failure{StartsAt: start, Reason: txErr.Error()})
		return nil
	}
	return txErr
}

func (r *Reconciler) createOccurrence(ctx context.Context, act *model.Activity, day recurrence.Day, now time.Time, rep *Report) error {
	start, err := day.At(act.StartTime, r.Engine.Location)
	if err != nil {
		return err
	}
	end, err := day.At(act.EndTime, r.Engine.Location)
	if err != nil {
		return err
	}
	if !start.After(now) {
		return nil // never materialize a slot that has already started
	}
	txErr := r.Store.RunInTx(ctx, func(tx Tx) error {
		if _, err := tx.SlotByStart(ctx, act.ID, start); err == nil {
			return nil // already materialized; keeps reconciliation idempotent
		} else if !errors.Is(err, ErrSlotNotFound) {
			return err
		}
		if _, err := r.Alloc.Create(ctx, tx, act.ID, start, end, act.Capacity); err != nil {
			return err
		}
		rep.Created++
		return nil
	})
	if errors.Is(txErr, ErrCourtsExhausted) {
		rep.Failures = append(rep.Failures, Failure{StartsAt: start, Reason: txErr.Error()})
		return nil
	}
	return txErr
}

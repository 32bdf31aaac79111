package schedule

import (
	"context"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

// Allocator assigns the minimum sufficient set of courts to slots.
// PerCourtMax is how many participants one court absorbs; a slot needs
// ceil(capacity / PerCourtMax) courts.
type Allocator struct {
	PerCourtMax int
}

// RequiredCourts returns the number of courts a slot of the given
// capacity needs.
func (a *Allocator) RequiredCourts(capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return (capacity + a.PerCourtMax - 1) / a.PerCourtMax
}

// Create inserts a slot and attaches the courts it requires, all within
// the caller's transaction.  When the pool cannot supply enough courts it
// returns ErrCourtsExhausted and nothing is persisted: a slot is never
// observable with fewer courts than its capacity requires.
func (a *Allocator) Create(ctx context.Context, tx Tx, activityID uint64, start, end time.Time, capacity int) (*model.Slot, error) {
	need := a.RequiredCourts(capacity)
	courts, err := tx.FindFreeCourts(ctx, start, end, need, nil)
	if err != nil {
		return nil, err
	}
	if len(courts) < need {
		return nil, ErrCourtsExhausted
	}
	slot := &model.Slot{
		ActivityID: activityID,
		StartsAt:   start,
		EndsAt:     end,
		Capacity:   capacity,
	}
	if err := tx.InsertSlot(ctx, slot); err != nil {
		return nil, err
	}
	if err := tx.AttachCourts(ctx, slot.ID, courts); err != nil {
		return nil, err
	}
	return slot, nil
}

// Resize adjusts a slot's court assignment to a new capacity.  Growth
// requests only the delta, excluding courts the slot already holds;
// shrinkage releases the excess newest-first.  Courts unaffected by the
// delta are never touched.  On ErrCourtsExhausted the transaction is
// expected to roll back, leaving the slot's prior full assignment intact.
func (a *Allocator) Resize(ctx context.Context, tx Tx, slot *model.Slot, newCapacity int) error {
	held, err := tx.CourtIDs(ctx, slot.ID)
	if err != nil {
		return err
	}
	need := a.RequiredCourts(newCapacity)
	switch {
	case need > len(held):
		extra, err := tx.FindFreeCourts(ctx, slot.StartsAt, slot.EndsAt, need-len(held), held)
		if err != nil {
			return err
		}
		if len(extra) < need-len(held) {
			return ErrCourtsExhausted
		}
		if err := tx.AttachCourts(ctx, slot.ID, extra); err != nil {
			return err
		}
	case need < len(held):
		if err := tx.ReleaseNewestCourts(ctx, slot.ID, len(held)-need); err != nil {
			return err
		}
	}
	if err := tx.UpdateSlotCapacity(ctx, slot.ID, newCapacity); err != nil {
		return err
	}
	slot.Capacity = newCapacity
	return nil
}

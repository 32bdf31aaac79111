package schedule

import (
	"context"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

// Store runs slot/court mutations atomically.  The SQL implementation
// backs each call with a database transaction; tests substitute an
// in-memory store.
type Store interface {
	// RunInTx executes fn atomically.  When fn returns an error the
	// transaction is rolled back and the error is returned unchanged.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view of slot and court state.  Implementations
// must make the FindFreeCourts check atomic with the subsequent
// AttachCourts relative to other writers (row locks or equivalent), so
// two concurrent allocations can never both take the same court for
// overlapping times.
type Tx interface {
	// FindFreeCourts returns up to count court IDs with no slot
	// assignment overlapping [start, end), in ascending ID order,
	// skipping IDs in excluding.  A result shorter than count means the
	// pool cannot satisfy the request; no partial commitment is made.
	// Overlap is half-open: assignments that merely touch at an endpoint
	// do not conflict.
	FindFreeCourts(ctx context.Context, start, end time.Time, count int, excluding []uint64) ([]uint64, error)

	// InsertSlot persists a new slot and fills in its ID.  Returns
	// ErrSlotExists when the (activity, start) key is taken.
	InsertSlot(ctx context.Context, s *model.Slot) error
	// DeleteSlot removes a slot, its court assignments and, by cascade,
	// its registrations.
	DeleteSlot(ctx context.Context, slotID uint64) error
	// SlotByStart looks a slot up by its identity key; ErrSlotNotFound
	// when absent.
	SlotByStart(ctx context.Context, activityID uint64, start time.Time) (*model.Slot, error)
	// FutureSlots lists an activity's slots starting after the given
	// instant, ordered by start ascending.
	FutureSlots(ctx context.Context, activityID uint64, after time.Time) ([]model.Slot, error)
	UpdateSlotCapacity(ctx context.Context, slotID uint64, capacity int) error

	// AttachCourts links courts to a slot.
	AttachCourts(ctx context.Context, slotID uint64, courtIDs []uint64) error
	// ReleaseNewestCourts unlinks the n most recently attached courts
	// from a slot.  Newest-first release is the deterministic shrink
	// rule; older assignments are never disturbed.
	ReleaseNewestCourts(ctx context.Context, slotID uint64, n int) error
	// CourtIDs lists the courts attached to a slot in attachment order.
	CourtIDs(ctx context.Context, slotID uint64) ([]uint64, error)
}

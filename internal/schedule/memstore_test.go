package schedule

import (
	"context"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

// memStore is an in-memory Store/Tx used by the allocator and reconciler
// tests.  It mirrors the SQL store's visible behavior: unique
// (activity, start) slot identity, ascending-ID free-court search with
// half-open overlap, and newest-first court release.
type memStore struct {
	courts     []uint64
	slots      map[uint64]*model.Slot
	slotCourts map[uint64][]uint64 // attachment order
	nextID     uint64
}

func newMemStore(courtCount int) *memStore {
	s := &memStore{
		slots:      make(map[uint64]*model.Slot),
		slotCourts: make(map[uint64][]uint64),
	}
	for i := 1; i <= courtCount; i++ {
		s.courts = append(s.courts, uint64(i))
	}
	return s
}

func (s *memStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	return fn(s)
}

func (s *memStore) FindFreeCourts(ctx context.Context, start, end time.Time, count int, excluding []uint64) ([]uint64, error) {
	skip := make(map[uint64]bool, len(excluding))
	for _, id := range excluding {
		skip[id] = true
	}
	var free []uint64
	for _, cid := range s.courts {
		if skip[cid] || len(free) >= count {
			continue
		}
		busy := false
		for slotID, courts := range s.slotCourts {
			slot := s.slots[slotID]
			if slot == nil {
				continue
			}
			if slot.StartsAt.Before(end) && slot.EndsAt.After(start) {
				for _, held := range courts {
					if held == cid {
						busy = true
					}
				}
			}
		}
		if !busy {
			free = append(free, cid)
		}
	}
	return free, nil
}

func (s *memStore) InsertSlot(ctx context.Context, slot *model.Slot) error {
	for _, existing := range s.slots {
		if existing.ActivityID == slot.ActivityID && existing.StartsAt.Equal(slot.StartsAt) {
			return ErrSlotExists
		}
	}
	s.nextID++
	slot.ID = s.nextID
	cp := *slot
	s.slots[slot.ID] = &cp
	return nil
}

func (s *memStore) DeleteSlot(ctx context.Context, slotID uint64) error {
	delete(s.slots, slotID)
	delete(s.slotCourts, slotID)
	return nil
}

func (s *memStore) SlotByStart(ctx context.Context, activityID uint64, start time.Time) (*model.Slot, error) {
	for _, slot := range s.slots {
		if slot.ActivityID == activityID && slot.StartsAt.Equal(start) {
			cp := *slot
			return &cp, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (s *memStore) FutureSlots(ctx context.Context, activityID uint64, after time.Time) ([]model.Slot, error) {
	var out []model.Slot
	for _, slot := range s.slots {
		if slot.ActivityID == activityID && slot.StartsAt.After(after) {
			out = append(out, *slot)
		}
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartsAt.Before(out[i].StartsAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *memStore) UpdateSlotCapacity(ctx context.Context, slotID uint64, capacity int) error {
	if slot, ok := s.slots[slotID]; ok {
		slot.Capacity = capacity
	}
	return nil
}

func (s *memStore) AttachCourts(ctx context.Context, slotID uint64, courtIDs []uint64) error {
	s.slotCourts[slotID] = append(s.slotCourts[slotID], courtIDs...)
	return nil
}

func (s *memStore) ReleaseNewestCourts(ctx context.Context, slotID uint64, n int) error {
	held := s.slotCourts[slotID]
	if n > len(held) {
		n = len(held)
	}
	s.slotCourts[slotID] = held[:len(held)-n]
	return nil
}

func (s *memStore) CourtIDs(ctx context.Context, slotID uint64) ([]uint64, error) {
	held := s.slotCourts[slotID]
	out := make([]uint64, len(held))
	copy(out, held)
	return out, nil
}

// allSlots returns every stored slot, for assertions.
func (s *memStore) allSlots() []model.Slot {
	var out []model.Slot
	for _, slot := range s.slots {
		out = append(out, *slot)
	}
	return out
}

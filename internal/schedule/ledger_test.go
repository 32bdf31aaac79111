package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

type fakeResolver struct {
	slots map[uint64]*SlotContext
}

func (f *fakeResolver) Resolve(ctx context.Context, slotID uint64) (*SlotContext, error) {
	sc, ok := f.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return sc, nil
}

type fakeRegs struct {
	regs []model.Registration
}

func (f *fakeRegs) Insert(ctx context.Context, memberID, slotID uint64) error {
	for _, r := range f.regs {
		if r.MemberID == memberID && r.SlotID == slotID {
			return ErrAlreadyRegistered
		}
	}
	f.regs = append(f.regs, model.Registration{
		ID:       uint64(len(f.regs) + 1),
		MemberID: memberID,
		SlotID:   slotID,
	})
	return nil
}

func (f *fakeRegs) Delete(ctx context.Context, memberID, slotID uint64) error {
	for i, r := range f.regs {
		if r.MemberID == memberID && r.SlotID == slotID {
			f.regs = append(f.regs[:i], f.regs[i+1:]...)
			return nil
		}
	}
	return ErrNotRegistered
}

func (f *fakeRegs) ListBySlot(ctx context.Context, slotID uint64) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range f.regs {
		if r.SlotID == slotID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ledgerFixture builds a ledger with one clinic slot (event-governed) and
// one court slot (mixed), both starting 48h after the fixed clock.
func ledgerFixture(eventGender string) (*Ledger, *fakeRegs) {
	start := testNow.Add(48 * time.Hour)
	eventID := uint64(7)
	resolver := &fakeResolver{slots: map[uint64]*SlotContext{
		1: {
			Slot:     &model.Slot{ID: 1, ActivityID: 10, StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 4},
			Activity: &model.Activity{ID: 10, Type: model.TypeClinic, EventID: &eventID, Title: "Ladies clinic"},
			Event:    &model.Event{ID: eventID, Title: "Ladies night", Gender: eventGender},
		},
		2: {
			Slot:     &model.Slot{ID: 2, ActivityID: 11, StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 4},
			Activity: &model.Activity{ID: 11, Type: model.TypeCourt, Title: "Open doubles"},
		},
	}}
	regs := &fakeRegs{}
	ledger := NewLedger(resolver, regs, 24*time.Hour, func() time.Time { return testNow })
	return ledger, regs
}

func member(id uint64, gender string, level int) *model.Member {
	return &model.Member{ID: id, Gender: gender, Level: level, FirstName: "Test", LastName: "Member"}
}

func TestRegisterGenderGate(t *testing.T) {
	ledger, _ := ledgerFixture(model.EventFemale)
	ctx := context.Background()

	if err := ledger.Register(ctx, member(1, model.GenderMale, 50), 1, false); !errors.Is(err, ErrGenderMismatch) {
		t.Fatalf("male member on F clinic: want ErrGenderMismatch, got %v", err)
	}
	if err := ledger.Register(ctx, member(2, model.GenderFemale, 50), 1, false); err != nil {
		t.Fatalf("female member on F clinic: %v", err)
	}
	// The mixed court slot takes anyone.
	if err := ledger.Register(ctx, member(1, model.GenderMale, 50), 2, false); err != nil {
		t.Fatalf("male member on mixed slot: %v", err)
	}
}

func TestRegisterCutOff(t *testing.T) {
	start := testNow.Add(2 * time.Hour) // inside the 24h cut-off
	resolver := &fakeResolver{slots: map[uint64]*SlotContext{
		1: {
			Slot:     &model.Slot{ID: 1, ActivityID: 10, StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 4},
			Activity: &model.Activity{ID: 10, Type: model.TypeCourt, Title: "Open doubles"},
		},
	}}
	ledger := NewLedger(resolver, &fakeRegs{}, 24*time.Hour, func() time.Time { return testNow })
	ctx := context.Background()

	if err := ledger.Register(ctx, member(1, model.GenderFemale, 50), 1, false); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("inside cut-off: want ErrRegistrationClosed, got %v", err)
	}
	// Staff bypass the cut-off.
	if err := ledger.Register(ctx, member(2, model.GenderFemale, 50), 1, true); err != nil {
		t.Fatalf("staff inside cut-off: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ledger, _ := ledgerFixture(model.EventMixed)
	ctx := context.Background()
	m := member(1, model.GenderFemale, 50)

	if err := ledger.Register(ctx, m, 2, false); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := ledger.Register(ctx, m, 2, false); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("want ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegisterClinicWithoutEvent(t *testing.T) {
	eventID := uint64(9)
	start := testNow.Add(48 * time.Hour)
	resolver := &fakeResolver{slots: map[uint64]*SlotContext{
		1: {
			Slot:     &model.Slot{ID: 1, ActivityID: 10, StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 4},
			Activity: &model.Activity{ID: 10, Type: model.TypeClinic, EventID: &eventID, Title: "Orphan clinic"},
			// Event missing: data-integrity anomaly.
		},
	}}
	ledger := NewLedger(resolver, &fakeRegs{}, 24*time.Hour, func() time.Time { return testNow })

	err := ledger.Register(context.Background(), member(1, model.GenderFemale, 50), 1, false)
	if !errors.Is(err, ErrIdentityResolution) {
		t.Fatalf("want ErrIdentityResolution, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	ledger, _ := ledgerFixture(model.EventMixed)
	ctx := context.Background()
	m := member(1, model.GenderFemale, 50)

	if err := ledger.Withdraw(ctx, m.ID, 2, false); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("withdraw without registration: want ErrNotRegistered, got %v", err)
	}
	if err := ledger.Register(ctx, m, 2, false); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ledger.Withdraw(ctx, m.ID, 2, false); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
}

func TestWithdrawElapsedSlotFrozen(t *testing.T) {
	start := testNow.Add(-time.Hour)
	resolver := &fakeResolver{slots: map[uint64]*SlotContext{
		1: {
			Slot:     &model.Slot{ID: 1, ActivityID: 10, StartsAt: start, EndsAt: start.Add(time.Hour), Capacity: 4},
			Activity: &model.Activity{ID: 10, Type: model.TypeCourt, Title: "Open doubles"},
		},
	}}
	regs := &fakeRegs{}
	_ = regs.Insert(context.Background(), 1, 1)
	ledger := NewLedger(resolver, regs, 24*time.Hour, func() time.Time { return testNow })

	if err := ledger.Withdraw(context.Background(), 1, 1, false); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("elapsed slot: want ErrRegistrationClosed, got %v", err)
	}
	// Staff may still correct history.
	if err := ledger.Withdraw(context.Background(), 1, 1, true); err != nil {
		t.Fatalf("staff withdraw on elapsed slot: %v", err)
	}
}

func TestRosterOrdering(t *testing.T) {
	ledger, regs := ledgerFixture(model.EventMixed)
	ctx := context.Background()

	// Six sign-ups, in order, with mixed levels.  Capacity is 4.
	levels := []int{10, 50, 30, 70, 20, 60}
	for i, lvl := range levels {
		if err := ledger.Register(ctx, member(uint64(i+1), model.GenderFemale, lvl), 2, false); err != nil {
			t.Fatalf("register member %d: %v", i+1, err)
		}
	}
	// The fake does not join member rows; backfill levels for ranking.
	for i := range regs.regs {
		regs.regs[i].Level = levels[regs.regs[i].MemberID-1]
	}

	roster, err := ledger.Roster(ctx, 2)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	// First four to sign up play, reordered by level descending.
	wantOnCourt := []uint64{4, 2, 3, 1} // levels 70, 50, 30, 10
	if len(roster.OnCourt) != 4 {
		t.Fatalf("on-court size %d, want 4", len(roster.OnCourt))
	}
	for i, want := range wantOnCourt {
		if roster.OnCourt[i].MemberID != want {
			t.Errorf("on-court[%d] = member %d, want %d", i, roster.OnCourt[i].MemberID, want)
		}
	}
	// Overflow wait-lists in registration order.
	if len(roster.Waitlist) != 2 || roster.Waitlist[0].MemberID != 5 || roster.Waitlist[1].MemberID != 6 {
		t.Fatalf("unexpected wait-list %+v", roster.Waitlist)
	}
}

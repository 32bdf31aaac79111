package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

// SlotContext is a slot together with its parents: the owning activity
// and, for clinics, the governing event.
type SlotContext struct {
	Slot     *model.Slot
	Activity *model.Activity
	Event    *model.Event // nil unless the activity is a clinic
}

// SlotResolver loads a slot with its activity and event.  Implementations
// return ErrSlotNotFound for unknown IDs and ErrIdentityResolution when
// the slot's activity or a clinic's event is missing.
type SlotResolver interface {
	Resolve(ctx context.Context, slotID uint64) (*SlotContext, error)
}

// RegistrationStore persists member registrations.  Insert must rely on a
// storage-level (member, slot) uniqueness constraint and return
// ErrAlreadyRegistered on conflict, so two simultaneous sign-ups resolve
// to exactly one success.  ListBySlot returns registrations ordered by
// registration time ascending.
type RegistrationStore interface {
	Insert(ctx context.Context, memberID, slotID uint64) error
	Delete(ctx context.Context, memberID, slotID uint64) error
	ListBySlot(ctx context.Context, slotID uint64) ([]model.Registration, error)
}

// Roster is the ranked participant list of a slot.  OnCourt holds the
// first capacity registrants reordered by skill level descending; the
// remainder wait-list in original registration order.  Registration is
// never capacity-limited: overflow goes to the wait-list, not rejected.
type Roster struct {
	OnCourt  []model.Registration `json:"on_court"`
	Waitlist []model.Registration `json:"waitlist"`
}

// Ledger enforces the registration rules: one registration per member per
// slot, the governing scope's gender restriction, and the sign-up cut-off
// before a slot starts.
type Ledger struct {
	Slots  SlotResolver
	Regs   RegistrationStore
	CutOff time.Duration // sign-up closes this long before the slot starts
	Now    func() time.Time
}

// NewLedger wires a ledger.  now may be nil, in which case the wall clock
// is used.
func NewLedger(slots SlotResolver, regs RegistrationStore, cutOff time.Duration, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{Slots: slots, Regs: regs, CutOff: cutOff, Now: now}
}

// Register signs a member up for a slot.  Staff bypass the cut-off but
// not the gender restriction.
func (l *Ledger) Register(ctx context.Context, member *model.Member, slotID uint64, staff bool) error {
	sc, err := l.Slots.Resolve(ctx, slotID)
	if err != nil {
		return err
	}
	scope, ok := sc.Activity.GoverningScope(sc.Event)
	if !ok {
		return ErrIdentityResolution
	}
	if scope.Gender != model.EventMixed && scope.Gender != member.Gender {
		return ErrGenderMismatch
	}
	if !staff && l.Now().Add(l.CutOff).After(sc.Slot.StartsAt) {
		return ErrRegistrationClosed
	}
	return l.Regs.Insert(ctx, member.ID, slotID)
}

// Withdraw removes a member's registration.  Members may withdraw any
// time before the slot starts; elapsed slots are frozen except for staff.
func (l *Ledger) Withdraw(ctx context.Context, memberID, slotID uint64, staff bool) error {
	sc, err := l.Slots.Resolve(ctx, slotID)
	if err != nil {
		return err
	}
	if !staff && !sc.Slot.StartsAt.After(l.Now()) {
		return ErrRegistrationClosed
	}
	return l.Regs.Delete(ctx, memberID, slotID)
}

// Roster returns the slot's ranked roster split into the on-court set and
// the wait-list.
func (l *Ledger) Roster(ctx context.Context, slotID uint64) (*Roster, error) {
	sc, err := l.Slots.Resolve(ctx, slotID)
	if err != nil {
		return nil, err
	}
	regs, err := l.Regs.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	n := sc.Slot.Capacity
	if n > len(regs) {
		n = len(regs)
	}
	onCourt := make([]model.Registration, n)
	copy(onCourt, regs[:n])
	// First-come-first-served decides who plays; level decides court order.
	sort.SliceStable(onCourt, func(i, j int) bool { return onCourt[i].Level > onCourt[j].Level })
	return &Roster{OnCourt: onCourt, Waitlist: regs[n:]}, nil
}

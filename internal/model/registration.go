package model

import "time"

// Registration is a member's claim on one slot.  (MemberID, SlotID) is
// unique in storage; RegisteredAt orders the queue for wait-list ranking.
// MemberName, Gender and Level are denormalized from the member row when
// rosters are loaded.
type Registration struct {
	ID           uint64    // registrations.id
	MemberID     uint64    // registrations.member_id
	SlotID       uint64    // registrations.slot_id
	RegisteredAt time.Time // registrations.registered_at

	MemberName string // joined from members for roster views
	Gender     string
	Level      int
}

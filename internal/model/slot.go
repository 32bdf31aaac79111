package model

import "time"

// Slot is one concrete occurrence of an activity.  Its identity is
// (ActivityID, StartsAt); that pair is unique in storage and is how the
// reconciler recognizes an occurrence that survived a recurrence edit.
// Capacity may lag behind the activity's capacity until the next
// reconciliation.  All timestamps are UTC.
type Slot struct {
	ID         uint64    // slots.id
	ActivityID uint64    // slots.activity_id
	StartsAt   time.Time // slots.starts_at
	EndsAt     time.Time // slots.ends_at
	Capacity   int       // slots.capacity
	CreatedAt  time.Time // slots.created_at
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// ScheduleChangedEvent is published after an activity's slots are
// materialized or reconciled.  It carries the outcome counts so downstream
// consumers can log or notify without querying the primary database.
type ScheduleChangedEvent struct {
	ActivityID   uint64 `json:"activity_id"`
	ActivityType string `json:"activity_type"`
	Title        string `json:"title"`
	Created      int    `json:"created"`
	Deleted      int    `json:"deleted"`
	Resized      int    `json:"resized"`
	Failed       int    `json:"failed"`
	ChangedAt    string `json:"changed_at"`
}

// RegistrationChangedEvent is published when a member signs up for or
// withdraws from a slot.
type RegistrationChangedEvent struct {
	MemberID   uint64 `json:"member_id"`
	MemberName string `json:"member_name"`
	SlotID     uint64 `json:"slot_id"`
	Title      string `json:"title"`
	StartsAt   string `json:"starts_at"`
	Action     string `json:"action"` // "registered" | "withdrawn"
	ChangedAt  string `json:"changed_at"`
}

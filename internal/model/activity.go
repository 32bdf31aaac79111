package model

import "time"

// Activity types.  A clinic is always attached to an event; privates and
// court reservations stand alone.
const (
	TypePrivate = "private"
	TypeCourt   = "court"
	TypeClinic  = "clinic"
)

// Activity is a recurring bookable template.  Rule holds an RFC 5545
// recurrence string ("RRULE:..." and/or "RDATE:..." lines); StartTime and
// EndTime are times of day in "HH:MM" form.  Concrete slots are
// materialized from the rule by the schedule reconciler.
type Activity struct {
	ID        uint64    // activities.id
	Type      string    // activities.type (private|court|clinic)
	EventID   *uint64   // activities.event_id, set iff Type == clinic
	Title     string    // activities.title
	Rule      string    // activities.rrule
	StartTime string    // activities.start_time ("HH:MM")
	EndTime   string    // activities.end_time ("HH:MM")
	Capacity  int       // activities.capacity
	IsActive  bool      // activities.is_active
	CreatedAt time.Time // activities.created_at
	UpdatedAt time.Time // activities.updated_at
}

// Scope is the eligibility authority governing registration for an
// activity's slots: the owning event for clinics, the activity itself for
// privates and court reservations (which are always mixed).
type Scope struct {
	Gender string // M|F|MIXED
	Title  string
}

// GoverningScope resolves the activity's eligibility scope.  For clinics
// the loaded event must be supplied; ok is false when a clinic has no
// event, which indicates a data-integrity anomaly the caller must surface.
func (a *Activity) GoverningScope(ev *Event) (Scope, bool) {
	if a.Type == TypeClinic {
		if ev == nil {
			return Scope{}, false
		}
		return Scope{Gender: ev.Gender, Title: ev.Title}, true
	}
	return Scope{Gender: EventMixed, Title: a.Title}, true
}

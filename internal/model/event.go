package model

import "time"

// Event gender restrictions.  A MIXED event is open to everyone; M and F
// restrict registration to one gender.
const (
	EventMale   = "M"
	EventFemale = "F"
	EventMixed  = "MIXED"
)

// Event is a gender/team-scoped grouping for clinic activities.  It is the
// eligibility authority for every slot of its clinics: a member may only
// register when the event's gender restriction admits them.
type Event struct {
	ID          uint64    // events.id
	Title       string    // events.title
	Description string    // events.description
	Gender      string    // events.gender (M|F|MIXED)
	Team        string    // events.team
	CreatedAt   time.Time // events.created_at
}

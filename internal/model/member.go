package model

import "time"

// Member genders as stored in the members.gender column.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Member roles.  STAFF members may create and edit activities and bypass
// the registration cut-off; MEMBER is the default for self-registered
// accounts.
const (
	RoleStaff  = "STAFF"
	RoleMember = "MEMBER"
)

// Member represents a club member account.  Level is a self-reported or
// pro-assessed skill rating between 0 and 100 and is used to order the
// on-court set of a full slot.  Team is informational (A/B/C ladder teams).
type Member struct {
	ID           uint64    // members.id
	Email        string    // members.email (unique, lower-cased)
	PasswordHash string    // members.password_hash
	MemberNumber string    // members.member_n
	FirstName    string    // members.first_name
	LastName     string    // members.last_name
	Gender       string    // members.gender (M|F)
	Level        int       // members.level (0..100)
	Team         string    // members.team
	Role         string    // members.role (STAFF|MEMBER)
	IsActive     bool      // members.is_active
	CreatedAt    time.Time // members.created_at
}

// DisplayName renders a member as "First L." falling back to the email
// when names are missing.
func (m *Member) DisplayName() string {
	if m.FirstName != "" && m.LastName != "" {
		return m.FirstName + " " + m.LastName[:1] + "."
	}
	return m.Email
}

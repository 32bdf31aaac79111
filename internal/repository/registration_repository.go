package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/schedule"
)

// RegistrationRepo persists member sign-ups.  It implements
// schedule.RegistrationStore; the (member_id, slot_id) unique key is what
// makes concurrent duplicate sign-ups collapse to one row.
type RegistrationRepo struct{ DB *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{DB: db} }

// Insert records a sign-up.  A duplicate (member, slot) pair yields
// schedule.ErrAlreadyRegistered.
func (r *RegistrationRepo) Insert(ctx context.Context, memberID, slotID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO registrations (member_id, slot_id) VALUES (?,?)`,
		memberID, slotID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return schedule.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Delete removes a sign-up; schedule.ErrNotRegistered when none exists.
func (r *RegistrationRepo) Delete(ctx context.Context, memberID, slotID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM registrations WHERE member_id=? AND slot_id=?`,
		memberID, slotID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return schedule.ErrNotRegistered
	}
	return nil
}

// ListBySlot returns a slot's registrations in sign-up order with the
// roster fields joined in from members.
func (r *RegistrationRepo) ListBySlot(ctx context.Context, slotID uint64) ([]model.Registration, error) {
	const q = `SELECT g.id, g.member_id, g.slot_id, g.registered_at,
	                  m.first_name, m.last_name, m.email, m.gender, m.level
	           FROM registrations g JOIN members m ON m.id = g.member_id
	           WHERE g.slot_id=? ORDER BY g.registered_at, g.id`
	rows, err := r.DB.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Registration, 0)
	for rows.Next() {
		var (
			reg               model.Registration
			first, last, mail string
		)
		if err := rows.Scan(&reg.ID, &reg.MemberID, &reg.SlotID, &reg.RegisteredAt,
			&first, &last, &mail, &reg.Gender, &reg.Level); err != nil {
			return nil, err
		}
		m := model.Member{FirstName: first, LastName: last, Email: mail}
		reg.MemberName = m.DisplayName()
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MemberSlot is an upcoming sign-up as shown on a member's own schedule.
type MemberSlot struct {
	SlotID   uint64    `json:"slot_id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ListFutureByMember lists the slots a member is signed up for that have
// not started yet, soonest first.
func (r *RegistrationRepo) ListFutureByMember(ctx context.Context, memberID uint64, now time.Time) ([]MemberSlot, error) {
	const q = `SELECT s.id, COALESCE(e.title, a.title), a.type, s.starts_at, s.ends_at
	           FROM registrations g
	           JOIN slots s ON s.id = g.slot_id
	           JOIN activities a ON a.id = s.activity_id
	           LEFT JOIN events e ON e.id = a.event_id
	           WHERE g.member_id=? AND s.starts_at > ?
	           ORDER BY s.starts_at`
	rows, err := r.DB.QueryContext(ctx, q, memberID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MemberSlot, 0)
	for rows.Next() {
		var ms MemberSlot
		if err := rows.Scan(&ms.SlotID, &ms.Title, &ms.Type, &ms.StartsAt, &ms.EndsAt); err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

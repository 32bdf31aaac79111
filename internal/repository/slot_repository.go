package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/schedule"
)

// SlotRepo serves the read side of the materialized schedule: calendar
// listings, per-member sign-ups and slot resolution for the registration
// ledger.  Writes to slots go through the schedule store's transactions.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

// CalendarEntry is one slot as shown on the public calendar.  Title and
// Gender come from the governing scope: the owning event for clinics, the
// activity itself otherwise.  Host is the display name of the earliest
// registrant, when any.
type CalendarEntry struct {
	SlotID     uint64    `json:"slot_id"`
	ActivityID uint64    `json:"activity_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Gender     string    `json:"gender"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Capacity   int       `json:"capacity"`
	Registered int       `json:"registered"`
	Courts     []string  `json:"courts"`
	Host       string    `json:"host,omitempty"`
}

// Calendar lists the slots of active activities starting within
// [from, to), oldest first, with court names, sign-up counts and host
// attribution filled in.
func (r *SlotRepo) Calendar(ctx context.Context, from, to time.Time) ([]CalendarEntry, error) {
	const q = `SELECT s.id, s.activity_id, a.type,
	                  COALESCE(e.title, a.title),
	                  COALESCE(e.gender, 'MIXED'),
	                  s.starts_at, s.ends_at, s.capacity,
	                  (SELECT COUNT(*) FROM registrations g WHERE g.slot_id = s.id)
	           FROM slots s
	           JOIN activities a ON a.id = s.activity_id
	           LEFT JOIN events e ON e.id = a.event_id
	           WHERE a.is_active = 1 AND s.starts_at >= ? AND s.starts_at < ?
	           ORDER BY s.starts_at, s.id`
	rows, err := r.DB.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]CalendarEntry, 0)
	for rows.Next() {
		var ce CalendarEntry
		if err := rows.Scan(&ce.SlotID, &ce.ActivityID, &ce.Type, &ce.Title,
			&ce.Gender, &ce.StartsAt, &ce.EndsAt, &ce.Capacity, &ce.Registered); err != nil {
			return nil, err
		}
		entries = append(entries, ce)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		if err := r.fillCourts(ctx, &entries[i]); err != nil {
			return nil, err
		}
		if err := r.fillHost(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *SlotRepo) fillCourts(ctx context.Context, ce *CalendarEntry) error {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.name FROM slot_courts sc JOIN courts c ON c.id = sc.court_id
		 WHERE sc.slot_id=? ORDER BY sc.id`, ce.SlotID)
	if err != nil {
		return err
	}
	defer rows.Close()
	ce.Courts = make([]string, 0, 1)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		ce.Courts = append(ce.Courts, name)
	}
	return rows.Err()
}

func (r *SlotRepo) fillHost(ctx context.Context, ce *CalendarEntry) error {
	var first, last, email string
	err := r.DB.QueryRowContext(ctx,
		`SELECT m.first_name, m.last_name, m.email
		 FROM registrations g JOIN members m ON m.id = g.member_id
		 WHERE g.slot_id=? ORDER BY g.registered_at, g.id LIMIT 1`, ce.SlotID).
		Scan(&first, &last, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	h := model.Member{FirstName: first, LastName: last, Email: email}
	ce.Host = h.DisplayName()
	return nil
}

// FutureByActivity lists an activity's upcoming slots, soonest first.
func (r *SlotRepo) FutureByActivity(ctx context.Context, activityID uint64, now time.Time) ([]model.Slot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, activity_id, starts_at, ends_at, capacity, created_at
		 FROM slots WHERE activity_id=? AND starts_at > ? ORDER BY starts_at`,
		activityID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.ActivityID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve loads a slot together with its activity and, for clinics, the
// governing event.  It implements schedule.SlotResolver.
func (r *SlotRepo) Resolve(ctx context.Context, slotID uint64) (*schedule.SlotContext, error) {
	var (
		s       model.Slot
		a       model.Activity
		eventID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.id, s.activity_id, s.starts_at, s.ends_at, s.capacity, s.created_at,
		        a.id, a.type, a.event_id, a.title, a.rrule, a.start_time, a.end_time, a.capacity, a.is_active
		 FROM slots s JOIN activities a ON a.id = s.activity_id
		 WHERE s.id=?`, slotID).
		Scan(&s.ID, &s.ActivityID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.CreatedAt,
			&a.ID, &a.Type, &eventID, &a.Title, &a.Rule, &a.StartTime, &a.EndTime, &a.Capacity, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		// A slot whose activity vanished also lands here; the join hides
		// which side is missing, and a dangling slot should read as gone.
		return nil, schedule.ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	sc := &schedule.SlotContext{Slot: &s, Activity: &a}
	if eventID.Valid {
		id := uint64(eventID.Int64)
		a.EventID = &id
		var ev model.Event
		err := r.DB.QueryRowContext(ctx,
			`SELECT id, title, description, gender, team, created_at FROM events WHERE id=?`,
			id).Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Gender, &ev.Team, &ev.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrIdentityResolution
		}
		if err != nil {
			return nil, err
		}
		sc.Event = &ev
	}
	return sc, nil
}

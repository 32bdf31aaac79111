package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
)

// EventRepo provides CRUD operations for events, the gender/team scopes
// that govern clinic registration.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Create inserts an event and populates its ID.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO events (title, description, gender, team) VALUES (?,?,?,?)`,
		ev.Title, ev.Description, ev.Gender, ev.Team)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return nil
}

// GetByID fetches an event by primary key.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var ev model.Event
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, description, gender, team, created_at FROM events WHERE id=?`,
		id).Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Gender, &ev.Team, &ev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Update stores an event's mutable fields.
func (r *EventRepo) Update(ctx context.Context, ev *model.Event) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, gender=?, team=? WHERE id=?`,
		ev.Title, ev.Description, ev.Gender, ev.Team, ev.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

// EventSummary is an event row enriched with its next upcoming slot, used
// by the public events listing.
type EventSummary struct {
	Event    model.Event `json:"event"`
	NextSlot *time.Time  `json:"next_slot,omitempty"`
}

// ListWithNextSlot returns all events with the start of their next future
// clinic slot, ordered by that start (events without a future slot last).
func (r *EventRepo) ListWithNextSlot(ctx context.Context, now time.Time) ([]EventSummary, error) {
	const q = `SELECT e.id, e.title, e.description, e.gender, e.team, e.created_at,
	                  MIN(s.starts_at)
	           FROM events e
	           LEFT JOIN activities a ON a.event_id = e.id AND a.is_active = 1
	           LEFT JOIN slots s ON s.activity_id = a.id AND s.starts_at > ?
	           GROUP BY e.id, e.title, e.description, e.gender, e.team, e.created_at
	           ORDER BY MIN(s.starts_at) IS NULL, MIN(s.starts_at)`
	rows, err := r.DB.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EventSummary, 0)
	for rows.Next() {
		var es EventSummary
		var next sql.NullTime
		if err := rows.Scan(&es.Event.ID, &es.Event.Title, &es.Event.Description,
			&es.Event.Gender, &es.Event.Team, &es.Event.CreatedAt, &next); err != nil {
			return nil, err
		}
		if next.Valid {
			t := next.Time
			es.NextSlot = &t
		}
		out = append(out, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

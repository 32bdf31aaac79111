package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/padelhq/club-reservation/internal/model"
)

// isForeignKeyErr reports whether err is a MySQL 1452 foreign key
// violation.
func isForeignKeyErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}

// ActivityRepo provides CRUD access to activity templates.  Slot
// materialization from an activity's recurrence rule is the schedule
// package's job; this repo only stores the template rows.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

const activityColumns = `id, type, event_id, title, rrule, start_time, end_time, capacity, is_active, created_at, updated_at`

func scanActivity(scan func(dest ...interface{}) error) (*model.Activity, error) {
	var a model.Activity
	var eventID sql.NullInt64
	err := scan(&a.ID, &a.Type, &eventID, &a.Title, &a.Rule, &a.StartTime,
		&a.EndTime, &a.Capacity, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	if eventID.Valid {
		id := uint64(eventID.Int64)
		a.EventID = &id
	}
	return &a, nil
}

// Create inserts an activity and populates its ID.  A clinic's event must
// exist; the foreign key violation surfaces as ErrEventNotFound.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	var eventID interface{}
	if a.EventID != nil {
		eventID = *a.EventID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO activities (type, event_id, title, rrule, start_time, end_time, capacity, is_active)
		 VALUES (?,?,?,?,?,?,?,?)`,
		a.Type, eventID, a.Title, a.Rule, a.StartTime, a.EndTime, a.Capacity, a.IsActive)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrEventNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an activity by primary key.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id=?`, id)
	return scanActivity(row.Scan)
}

// Update stores the mutable template fields.  The updated_at bump marks
// the template edit; already-materialized slots are reconciled separately.
func (r *ActivityRepo) Update(ctx context.Context, a *model.Activity) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE activities SET title=?, rrule=?, start_time=?, end_time=?, capacity=?, is_active=?, updated_at=NOW()
		 WHERE id=?`,
		a.Title, a.Rule, a.StartTime, a.EndTime, a.Capacity, a.IsActive, a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an activity.  Slots and registrations cascade away in
// storage.
func (r *ActivityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM activities WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// List returns activities, optionally filtered to active templates only,
// newest first.
func (r *ActivityRepo) List(ctx context.Context, activeOnly bool) ([]model.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities`
	if activeOnly {
		q += ` WHERE is_active=1`
	}
	q += ` ORDER BY id DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByEvent returns the clinic templates attached to an event.
func (r *ActivityRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Activity, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE event_id=? ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/schedule"
)

// ScheduleStore is the SQL implementation of schedule.Store.  Each
// RunInTx call runs inside one database transaction; FindFreeCourts locks
// the candidate court rows with SELECT ... FOR UPDATE so a concurrent
// allocation for an overlapping window blocks until this one commits.
type ScheduleStore struct{ DB *sql.DB }

func NewScheduleStore(db *sql.DB) *ScheduleStore { return &ScheduleStore{DB: db} }

// RunInTx executes fn inside a transaction, rolling back on error.
func (s *ScheduleStore) RunInTx(ctx context.Context, fn func(tx schedule.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&scheduleTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type scheduleTx struct{ tx *sql.Tx }

// FindFreeCourts returns up to count court IDs free for [start, end) in
// ascending ID order.  The overlap test is half-open, so an assignment
// ending exactly at start does not conflict.  Locking the returned rows
// is what makes the later AttachCourts safe against concurrent writers.
func (t *scheduleTx) FindFreeCourts(ctx context.Context, start, end time.Time, count int, excluding []uint64) ([]uint64, error) {
	if count <= 0 {
		return nil, nil
	}
	q := `SELECT c.id FROM courts c
	      WHERE NOT EXISTS (
	          SELECT 1 FROM slot_courts sc
	          JOIN slots s ON s.id = sc.slot_id
	          WHERE sc.court_id = c.id AND s.starts_at < ? AND s.ends_at > ?
	      )`
	args := []interface{}{end, start}
	if len(excluding) > 0 {
		q += ` AND c.id NOT IN (?` + strings.Repeat(",?", len(excluding)-1) + `)`
		for _, id := range excluding {
			args = append(args, id)
		}
	}
	q += ` ORDER BY c.id LIMIT ? FOR UPDATE`
	args = append(args, count)

	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertSlot persists a slot; a duplicate (activity_id, starts_at) key
// yields schedule.ErrSlotExists.
func (t *scheduleTx) InsertSlot(ctx context.Context, slot *model.Slot) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO slots (activity_id, starts_at, ends_at, capacity) VALUES (?,?,?,?)`,
		slot.ActivityID, slot.StartsAt.UTC(), slot.EndsAt.UTC(), slot.Capacity)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return schedule.ErrSlotExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	slot.ID = uint64(id)
	return nil
}

// DeleteSlot removes a slot; court assignments and registrations cascade.
func (t *scheduleTx) DeleteSlot(ctx context.Context, slotID uint64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM slots WHERE id=?`, slotID)
	return err
}

func (t *scheduleTx) SlotByStart(ctx context.Context, activityID uint64, start time.Time) (*model.Slot, error) {
	var s model.Slot
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, activity_id, starts_at, ends_at, capacity, created_at
		 FROM slots WHERE activity_id=? AND starts_at=? FOR UPDATE`,
		activityID, start.UTC()).
		Scan(&s.ID, &s.ActivityID, &s.StartsAt, &s.EndsAt, &s.Capacity, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, schedule.ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *scheduleTx) FutureSlots(ctx context.Context, activityID uint64, after time.Time) ([]model.Slot, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, activity_id, starts_at, ends_at, capacity, created_at
		 FROM slots WHERE activity_id=? AND starts_at > ? ORDER BY starts_at FOR UPDATE`,
		activityID, after.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Slot
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

func (t *scheduleTx) UpdateSlotCapacity(ctx context.Context, slotID uint64, capacity int) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE slots SET capacity=? WHERE id=?`, capacity, slotID)
	return err
}

// AttachCourts links courts to a slot with one bulk insert.
func (t *scheduleTx) AttachCourts(ctx context.Context, slotID uint64, courtIDs []uint64) error {
	if len(courtIDs) == 0 {
		return nil
	}
	q := `INSERT INTO slot_courts (slot_id, court_id) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?,?),", len(courtIDs)), ",")
	args := make([]interface{}, 0, len(courtIDs)*2)
	for _, cid := range courtIDs {
		args = append(args, slotID, cid)
	}
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// ReleaseNewestCourts drops the n most recently attached court
// assignments of a slot.  Assignment rows insert in attachment order, so
// descending row ID is newest first.
func (t *scheduleTx) ReleaseNewestCourts(ctx context.Context, slotID uint64, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM slot_courts WHERE slot_id=? ORDER BY id DESC LIMIT ?`,
		slotID, n)
	return err
}

func (t *scheduleTx) CourtIDs(ctx context.Context, slotID uint64) ([]uint64, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT court_id FROM slot_courts WHERE slot_id=? ORDER BY id`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

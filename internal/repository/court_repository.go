package repository

import (
	"context"
	"database/sql"

	"github.com/padelhq/club-reservation/internal/model"
)

// CourtRepo provides access to the fixed pool of physical courts.
type CourtRepo struct{ DB *sql.DB }

func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{DB: db} }

// defaultCourts is the venue's standard fixture.
var defaultCourts = []string{
	"Stadium Court",
	"Court 1", "Court 2", "Court 3", "Court 4",
	"Court 5", "Court 6", "Court 7",
}

// EnsureDefaults seeds the standard court fixture.  The insert is
// idempotent: courts.name is unique and existing rows are left alone.
func (r *CourtRepo) EnsureDefaults(ctx context.Context) error {
	query := `INSERT IGNORE INTO courts (name) VALUES `
	args := make([]interface{}, 0, len(defaultCourts))
	for i, name := range defaultCourts {
		if i > 0 {
			query += ","
		}
		query += "(?)"
		args = append(args, name)
	}
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// List returns all courts in stable ID order.
func (r *CourtRepo) List(ctx context.Context) ([]model.Court, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM courts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courts []model.Court
	for rows.Next() {
		var c model.Court
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courts, nil
}

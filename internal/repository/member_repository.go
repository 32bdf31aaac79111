package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/utils"
)

// MemberRepo provides CRUD access to the members table.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// NewMember bundles the fields needed to create an account.
type NewMember struct {
	Email        string
	Password     string
	MemberNumber string
	FirstName    string
	LastName     string
	Gender       string
	Level        int
	Team         string
	Role         string
}

// Create inserts a member and returns its ID.  The email is normalized to
// lower case; a duplicate email yields ErrEmailExists.
func (r *MemberRepo) Create(ctx context.Context, nm NewMember, bcryptCost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(nm.Email))
	hash, err := utils.HashPassword(nm.Password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO members (email, password_hash, member_n, first_name, last_name, gender, level, team, role)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		email, hash, nm.MemberNumber, nm.FirstName, nm.LastName, nm.Gender, nm.Level, nm.Team, nm.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const memberColumns = `id, email, password_hash, member_n, first_name, last_name, gender, level, team, role, is_active, created_at`

func scanMember(row *sql.Row) (*model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.MemberNumber, &m.FirstName,
		&m.LastName, &m.Gender, &m.Level, &m.Team, &m.Role, &m.IsActive, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanMember(r.DB.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email=? LIMIT 1`, email))
}

// GetByID fetches a member by primary key.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (*model.Member, error) {
	return scanMember(r.DB.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id=? LIMIT 1`, id))
}

// UpdateProfile stores the mutable profile fields of a member.
func (r *MemberRepo) UpdateProfile(ctx context.Context, m *model.Member) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE members SET first_name=?, last_name=?, gender=?, level=?, team=? WHERE id=?`,
		m.FirstName, m.LastName, m.Gender, m.Level, m.Team, m.ID)
	return err
}

package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository is the store surface the roster service needs. The Postgres
// implementation lives below; tests substitute fakes.
type Repository interface {
	ListAll(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, id string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) ([]Profile, error)
	FindByStudentID(ctx context.Context, cwid string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	UpdateByEmail(ctx context.Context, email string, p Profile) (int, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository persists profiles in the users table.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

const profileCols = `id, email, first_name, last_name, classification, role, student_id, created_at`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Classification, &p.Role, &p.StudentID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAll returns every profile ordered by creation time.
func (r *PGRepository) ListAll(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileCols+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// GetByID returns one profile or ErrNotFound.
func (r *PGRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM users WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// FindByEmail returns every profile sharing an email. A person can exist
// under more than one row when an account and an imported roster entry both
// carry the same address; updates go to all of them.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileCols+` FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// FindByStudentID returns the profile whose CWID matches, or nil when none
// does.
func (r *PGRepository) FindByStudentID(ctx context.Context, cwid string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM users WHERE student_id = $1 LIMIT 1`, cwid)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Insert writes a new profile, assigning an id when absent.
func (r *PGRepository) Insert(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, classification, role, student_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, p.ID, p.Email, p.FirstName, p.LastName, p.Classification, p.Role, p.StudentID)
	return row.Scan(&p.CreatedAt)
}

// UpdateByEmail updates every row matching the email and reports how many
// rows changed.
func (r *PGRepository) UpdateByEmail(ctx context.Context, email string, p Profile) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, student_id = $4, email = $5, classification = $6, role = $7
		WHERE email = $1
	`, email, p.FirstName, p.LastName, p.StudentID, p.Email, p.Classification, p.Role)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Delete removes one profile.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

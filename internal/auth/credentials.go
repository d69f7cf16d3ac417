package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"memberportal/internal/roster"
)

// CredentialStore is the slice of the users table the identity layer needs:
// account creation with a password hash, lookup for login, and password
// replacement for reset.
type CredentialStore interface {
	CreateAccount(ctx context.Context, p *roster.Profile, passwordHash string) error
	AccountByEmail(ctx context.Context, email string) (*roster.Profile, string, error)
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// PGCredentialStore reads and writes credentials on the users table.
type PGCredentialStore struct {
	db *sql.DB
}

// NewPGCredentialStore creates a store.
func NewPGCredentialStore(db *sql.DB) *PGCredentialStore {
	return &PGCredentialStore{db: db}
}

// CreateAccount inserts a profile row carrying the password hash. The
// unique index on login emails catches two signups racing past the
// pre-check; the violation surfaces as ErrEmailTaken.
func (s *PGCredentialStore) CreateAccount(ctx context.Context, p *roster.Profile, passwordHash string) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, classification, role, student_id, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, p.ID, p.Email, p.FirstName, p.LastName, p.Classification, p.Role, p.StudentID, passwordHash)
	if err := row.Scan(&p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// AccountByEmail returns the login row for an email: the row that actually
// carries a hash, since imported roster entries share emails but cannot log
// in.
func (s *PGCredentialStore) AccountByEmail(ctx context.Context, email string) (*roster.Profile, string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, classification, role, student_id, created_at, password_hash
		FROM users WHERE email = $1 AND password_hash <> '' LIMIT 1
	`, email)
	var p roster.Profile
	var hash string
	if err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Classification, &p.Role, &p.StudentID, &p.CreatedAt, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", roster.ErrNotFound
		}
		return nil, "", err
	}
	return &p, hash, nil
}

// SetPasswordByEmail replaces the hash on the login row.
func (s *PGCredentialStore) SetPasswordByEmail(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE email = $1 AND password_hash <> ''
	`, email, passwordHash)
	return err
}

package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the store surface for events and their records. Appends and
// removals are single-row statements so concurrent operators never clobber
// each other's writes.
type Repository interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, evt *Event) error
	DeleteEvent(ctx context.Context, id string) error

	ListRecords(ctx context.Context, eventID string) ([]Record, error)
	AppendRecord(ctx context.Context, rec *Record) error
	DeleteRecord(ctx context.Context, eventID, recordID string) error
}

// PGRepository persists check-in data in Postgres.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

// ListEvents returns all check-in events, newest first.
func (r *PGRepository) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, date, is_active FROM checkin_events ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.Name, &evt.Date, &evt.IsActive); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// GetEvent returns one event or ErrEventNotFound.
func (r *PGRepository) GetEvent(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, date, is_active FROM checkin_events WHERE id = $1`, id)
	var evt Event
	if err := row.Scan(&evt.ID, &evt.Name, &evt.Date, &evt.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &evt, nil
}

// CreateEvent writes a new event.
func (r *PGRepository) CreateEvent(ctx context.Context, evt *Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Date.IsZero() {
		evt.Date = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkin_events (id, name, date, is_active)
		VALUES ($1,$2,$3,$4)
	`, evt.ID, evt.Name, evt.Date, evt.IsActive)
	return err
}

// DeleteEvent removes an event; its records go with it.
func (r *PGRepository) DeleteEvent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkin_events WHERE id = $1`, id)
	return err
}

// ListRecords returns an event's records in append order.
func (r *PGRepository) ListRecords(ctx context.Context, eventID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, cwid, name, email, checked_at, is_guest, is_member, note
		FROM checkin_records WHERE event_id = $1 ORDER BY seq
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.UserID, &rec.CWID, &rec.Name, &rec.Email, &rec.CheckedAt, &rec.IsGuest, &rec.IsMember, &rec.Note); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AppendRecord inserts one record.
func (r *PGRepository) AppendRecord(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkin_records (id, event_id, user_id, cwid, name, email, checked_at, is_guest, is_member, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rec.ID, rec.EventID, rec.UserID, rec.CWID, rec.Name, rec.Email, rec.CheckedAt, rec.IsGuest, rec.IsMember, rec.Note)
	return err
}

// DeleteRecord removes one record from an event.
func (r *PGRepository) DeleteRecord(ctx context.Context, eventID, recordID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkin_records WHERE event_id = $1 AND id = $2`, eventID, recordID)
	return err
}

// Package calendar holds the organization's event calendar: plain CRUD
// records with a single submit-time invariant, start never after end.
package calendar

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"memberportal/internal/roster"
)

var (
	ErrNotFound         = errors.New("calendar event not found")
	ErrDatesOutOfOrder  = errors.New("start date cannot be after end date")
	ErrTitleRequired    = errors.New("title is required")
	ErrPermissionDenied = errors.New("only board members and presidents can manage events")
)

// Event is one calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// Repository is the store surface for calendar events.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	Insert(ctx context.Context, evt *Event) error
	Update(ctx context.Context, evt Event) error
	Delete(ctx context.Context, id string) error
}

// Service guards calendar mutations behind the calendar capability.
type Service struct {
	repo Repository
}

// NewService creates a service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all events ordered by start.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func validate(evt Event) error {
	if strings.TrimSpace(evt.Title) == "" {
		return ErrTitleRequired
	}
	if evt.Start.After(evt.End) {
		return ErrDatesOutOfOrder
	}
	return nil
}

// Create validates and inserts a new event.
func (s *Service) Create(ctx context.Context, actor roster.Profile, evt Event) (Event, error) {
	if !roster.CapabilitiesFor(actor.Role).ManageCalendar {
		return Event{}, ErrPermissionDenied
	}
	if err := validate(evt); err != nil {
		return Event{}, err
	}
	if err := s.repo.Insert(ctx, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Update validates and rewrites an existing event.
func (s *Service) Update(ctx context.Context, actor roster.Profile, evt Event) (Event, error) {
	if !roster.CapabilitiesFor(actor.Role).ManageCalendar {
		return Event{}, ErrPermissionDenied
	}
	if err := validate(evt); err != nil {
		return Event{}, err
	}
	if _, err := s.repo.Get(ctx, evt.ID); err != nil {
		return Event{}, err
	}
	if err := s.repo.Update(ctx, evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Delete is unconditional for privileged roles.
func (s *Service) Delete(ctx context.Context, actor roster.Profile, id string) error {
	if !roster.CapabilitiesFor(actor.Role).ManageCalendar {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// PGRepository persists calendar events in Postgres.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

// List returns events ordered by start time.
func (r *PGRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, start_at, end_at, location, description
		FROM events ORDER BY start_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.Title, &evt.Start, &evt.End, &evt.Location, &evt.Description); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// Get returns one event or ErrNotFound.
func (r *PGRepository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, start_at, end_at, location, description
		FROM events WHERE id = $1
	`, id)
	var evt Event
	if err := row.Scan(&evt.ID, &evt.Title, &evt.Start, &evt.End, &evt.Location, &evt.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &evt, nil
}

// Insert writes a new event, assigning an id when absent.
func (r *PGRepository) Insert(ctx context.Context, evt *Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, title, start_at, end_at, location, description)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, evt.ID, evt.Title, evt.Start, evt.End, evt.Location, evt.Description)
	return err
}

// Update rewrites an event.
func (r *PGRepository) Update(ctx context.Context, evt Event) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, start_at = $3, end_at = $4, location = $5, description = $6
		WHERE id = $1
	`, evt.ID, evt.Title, evt.Start, evt.End, evt.Location, evt.Description)
	return err
}

// Delete removes one event.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// Package gallery manages past-event photo albums: a catalog record per
// event named by a cover image and a shared photo-drive link.
package gallery

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
	ErrNotFound         = errors.New("gallery entry not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrPermissionDenied = errors.New("permission denied")
)

// Entry is one gallery album.
type Entry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	DriveLink   string    `json:"driveLink"`
}

// NormalizeDriveLink rewrites recognized Google Drive sharing links to the
// direct-view form. Unrecognized shapes pass through unchanged.
func NormalizeDriveLink(url string) string {
	if strings.Contains(url, "drive.google.com/uc?") && !strings.Contains(url, "drive.google.com/uc?id=") {
		return url
	}

	var fileID string
	switch {
	case strings.Contains(url, "drive.google.com/file/d/"):
		rest := strings.SplitN(url, "drive.google.com/file/d/", 2)[1]
		fileID = strings.SplitN(rest, "/", 2)[0]
	case strings.Contains(url, "drive.google.com/open?id="):
		rest := strings.SplitN(url, "drive.google.com/open?id=", 2)[1]
		fileID = strings.SplitN(rest, "&", 2)[0]
	case strings.Contains(url, "drive.google.com/uc?id="):
		rest := strings.SplitN(url, "drive.google.com/uc?id=", 2)[1]
		fileID = strings.SplitN(rest, "&", 2)[0]
	}
	if fileID == "" {
		return url
	}
	return "https://drive.google.com/uc?export=view&id=" + fileID
}

// Repository is the store surface for gallery entries.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Insert(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id string) error
}

// Service gates gallery access: viewing needs membership, mutation needs a
// board role.
type Service struct {
	repo Repository
}

// NewService creates a service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all entries, newest first, for members and up.
func (s *Service) List(ctx context.Context, actor roster.Profile) ([]Entry, error) {
	if !roster.CapabilitiesFor(actor.Role).ViewGallery {
		return nil, ErrPermissionDenied
	}
	return s.repo.List(ctx)
}

// Create normalizes the cover-image URL and inserts the entry.
func (s *Service) Create(ctx context.Context, actor roster.Profile, e Entry) (Entry, error) {
	if !roster.CapabilitiesFor(actor.Role).ManageGallery {
		return Entry{}, ErrPermissionDenied
	}
	if strings.TrimSpace(e.Title) == "" {
		return Entry{}, ErrTitleRequired
	}
	e.ImageURL = NormalizeDriveLink(e.ImageURL)
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Delete removes one entry.
func (s *Service) Delete(ctx context.Context, actor roster.Profile, id string) error {
	if !roster.CapabilitiesFor(actor.Role).ManageGallery {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// PGRepository persists gallery entries in Postgres.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

// List returns all entries ordered by date descending.
func (r *PGRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date, description, image_url, drive_link
		FROM gallery ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Description, &e.ImageURL, &e.DriveLink); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert writes a new entry, assigning an id when absent.
func (r *PGRepository) Insert(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gallery (id, title, date, description, image_url, drive_link)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.Title, e.Date, e.Description, e.ImageURL, e.DriveLink)
	return err
}

// Delete removes one entry.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM gallery WHERE id = $1`, id)
	return err
}

// Package merch is the merchandise catalog plus a per-user shopping cart.
// The catalog is store-backed; carts live only in process memory and are
// never persisted.
package merch

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"memberportal/internal/roster"
)

var (
	ErrNotFound         = errors.New("merch item not found")
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrPermissionDenied = errors.New("only board members and presidents can manage merch")
)

// Item is one catalog record. Sizes is the set of orderable sizes.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Sizes       []string `json:"sizes"`
	Stock       int      `json:"stock"`
}

// Repository is the store surface for the catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Insert(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
}

// Service gates catalog mutations behind the merch capability.
type Service struct {
	repo Repository
}

// NewService creates a service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a catalog item.
func (s *Service) Create(ctx context.Context, actor roster.Profile, item Item) (Item, error) {
	if !roster.CapabilitiesFor(actor.Role).ManageMerch {
		return Item{}, ErrPermissionDenied
	}
	if strings.TrimSpace(item.Name) == "" {
		return Item{}, ErrNameRequired
	}
	if item.Price < 0 {
		return Item{}, ErrInvalidPrice
	}
	if err := s.repo.Insert(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a catalog item.
func (s *Service) Delete(ctx context.Context, actor roster.Profile, id string) error {
	if !roster.CapabilitiesFor(actor.Role).ManageMerch {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

// PGRepository persists catalog items in Postgres. Sizes are stored as a
// comma-joined string; the queries stay equality-only.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

func joinSizes(sizes []string) string {
	return strings.Join(sizes, ",")
}

func splitSizes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// List returns every catalog item.
func (r *PGRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, image_url, sizes, stock FROM merch ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		var sizes string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.ImageURL, &sizes, &item.Stock); err != nil {
			return nil, err
		}
		item.Sizes = splitSizes(sizes)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get returns one item or ErrNotFound.
func (r *PGRepository) Get(ctx context.Context, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, image_url, sizes, stock FROM merch WHERE id = $1
	`, id)
	var item Item
	var sizes string
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.ImageURL, &sizes, &item.Stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item.Sizes = splitSizes(sizes)
	return &item, nil
}

// Insert writes a new item, assigning an id when absent.
func (r *PGRepository) Insert(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO merch (id, name, description, price, image_url, sizes, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.Name, item.Description, item.Price, item.ImageURL, joinSizes(item.Sizes), item.Stock)
	return err
}

// Delete removes one item.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM merch WHERE id = $1`, id)
	return err
}

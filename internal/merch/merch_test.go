package merch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberportal/internal/roster"
)

type fakeCatalog struct {
	items map[string]Item
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: make(map[string]Item)}
}

func (r *fakeCatalog) List(ctx context.Context) ([]Item, error) {
	out := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeCatalog) Get(ctx context.Context, id string) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *fakeCatalog) Insert(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = "item-1"
	}
	r.items[item.ID] = *item
	return nil
}

func (r *fakeCatalog) Delete(ctx context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func TestCatalogCreate(t *testing.T) {
	boardAcct := roster.Profile{ID: "b", Role: roster.RoleBoard}
	svc := NewService(newFakeCatalog())

	item, err := svc.Create(context.Background(), boardAcct, Item{Name: "Club Tee", Price: 15.50, Sizes: []string{"S", "M"}})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	_, err = svc.Create(context.Background(), boardAcct, Item{Price: 10})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), boardAcct, Item{Name: "Freebie", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	member := roster.Profile{ID: "m", Role: roster.RoleMember}
	_, err = svc.Create(context.Background(), member, Item{Name: "Sticker", Price: 1})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCatalogGetAndDelete(t *testing.T) {
	boardAcct := roster.Profile{ID: "b", Role: roster.RoleBoard}
	repo := newFakeCatalog()
	svc := NewService(repo)

	item, err := svc.Create(context.Background(), boardAcct, Item{Name: "Hoodie", Price: 32})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", got.Name)

	require.NoError(t, svc.Delete(context.Background(), boardAcct, item.ID))
	_, err = svc.Get(context.Background(), item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

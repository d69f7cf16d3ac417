package merch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tee    = Item{ID: "tee", Name: "Club Tee", Price: 15.50, Sizes: []string{"S", "M", "L"}}
	hoodie = Item{ID: "hoodie", Name: "Hoodie", Price: 32, Sizes: []string{"M", "L"}}
)

func TestCartAddIncrementsExistingLine(t *testing.T) {
	var cart Cart
	cart.Add(tee, "M")
	cart.Add(tee, "M")
	cart.Add(tee, "L")

	require.Len(t, cart.Lines, 2, "same item and size share one line")
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "M", cart.Lines[0].Size)
	assert.Equal(t, 1, cart.Lines[1].Quantity)
}

func TestCartSetQuantity(t *testing.T) {
	var cart Cart
	cart.Add(tee, "M")
	cart.Add(hoodie, "L")

	cart.SetQuantity("tee", "M", 5)
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	cart.SetQuantity("tee", "M", 0)
	require.Len(t, cart.Lines, 1, "quantity below 1 removes the line")
	assert.Equal(t, "hoodie", cart.Lines[0].ItemID)

	// Unknown pair is a no-op.
	cart.SetQuantity("tee", "XL", 3)
	assert.Len(t, cart.Lines, 1)
}

func TestCartSubtotal(t *testing.T) {
	var cart Cart
	assert.Zero(t, cart.Subtotal())

	cart.Add(tee, "M")
	cart.Add(tee, "M")
	cart.Add(hoodie, "L")
	assert.InDelta(t, 2*15.50+32, cart.Subtotal(), 1e-9)
}

func TestCartStoreIsolation(t *testing.T) {
	store := NewCartStore()

	store.Mutate("alice", func(c *Cart) { c.Add(tee, "M") })
	store.Mutate("bob", func(c *Cart) { c.Add(hoodie, "L") })

	alice := store.Snapshot("alice")
	require.Len(t, alice.Lines, 1)
	assert.Equal(t, "tee", alice.Lines[0].ItemID)

	// Mutating a snapshot never touches the stored cart.
	alice.Lines[0].Quantity = 99
	assert.Equal(t, 1, store.Snapshot("alice").Lines[0].Quantity)

	assert.Empty(t, store.Snapshot("nobody").Lines)
}

func TestCartStoreDropItem(t *testing.T) {
	store := NewCartStore()
	store.Mutate("alice", func(c *Cart) {
		c.Add(tee, "M")
		c.Add(hoodie, "L")
	})
	store.Mutate("bob", func(c *Cart) { c.Add(tee, "S") })

	store.DropItem("tee")

	alice := store.Snapshot("alice")
	require.Len(t, alice.Lines, 1)
	assert.Equal(t, "hoodie", alice.Lines[0].ItemID)
	assert.Empty(t, store.Snapshot("bob").Lines)
}

package merch

import "sync"

// Line is one cart position: an item in a chosen size.
type Line struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
}

// Cart is pure client-session state. Adding an (item, size) pair that is
// already present increments its quantity; setting a quantity below 1
// removes the line.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add puts one unit of an item in the chosen size into the cart.
func (c *Cart) Add(item Item, size string) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID && c.Lines[i].Size == size {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Size:     size,
		Quantity: 1,
	})
}

// SetQuantity updates a line's quantity, removing the line when the new
// quantity drops below 1.
func (c *Cart) SetQuantity(itemID, size string, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID != itemID || c.Lines[i].Size != size {
			continue
		}
		if quantity < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return
	}
}

// RemoveItem drops every line for an item, used when the item leaves the
// catalog.
func (c *Cart) RemoveItem(itemID string) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ItemID != itemID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// CartStore holds one cart per user in process memory. Nothing here ever
// reaches the database.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewCartStore creates an empty store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*Cart)}
}

// Snapshot returns a copy of the user's cart.
func (s *CartStore) Snapshot(userID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return Cart{}
	}
	copied := Cart{Lines: make([]Line, len(cart.Lines))}
	copy(copied.Lines, cart.Lines)
	return copied
}

// Mutate runs fn against the user's cart under the store lock.
func (s *CartStore) Mutate(userID string, fn func(*Cart)) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		cart = &Cart{}
		s.carts[userID] = cart
	}
	fn(cart)
	copied := Cart{Lines: make([]Line, len(cart.Lines))}
	copy(copied.Lines, cart.Lines)
	return copied
}

// DropItem removes an item from every cart, mirroring catalog deletion.
func (s *CartStore) DropItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cart := range s.carts {
		cart.RemoveItem(itemID)
	}
}

// Package cart implements a reducer-style shopping cart keyed by product
// slug. Every mutation mirrors the full state to a Persister, the way a
// browser cart mirrors to local storage: fire-and-forget, last write wins.
package cart

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one cart entry
type Line struct {
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Persister receives the full cart state after every mutation. Errors are
// ignored by the cart; persistence is best effort.
type Persister interface {
	Save(lines []Line) error
}

// Cart holds the reducer state. Safe for concurrent use.
type Cart struct {
	mu        sync.Mutex
	lines     map[string]Line
	persister Persister
}

// New creates an empty cart mirrored to the given persister. A nil
// persister disables mirroring.
func New(p Persister) *Cart {
	return &Cart{
		lines:     make(map[string]Line),
		persister: p,
	}
}

// Load replaces the cart state wholesale, e.g. from persisted lines
func (c *Cart) Load(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = make(map[string]Line, len(lines))
	for _, line := range lines {
		if line.Quantity > 0 {
			c.lines[line.Slug] = line
		}
	}
	c.mirror()
}

// Add puts a line into the cart. Adding an already-present slug increments
// its quantity by the line's quantity.
func (c *Cart) Add(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lines[line.Slug]; ok {
		existing.Quantity += line.Quantity
		c.lines[line.Slug] = existing
	} else {
		c.lines[line.Slug] = line
	}
	c.mirror()
}

// Remove deletes a line; removing an absent slug is a no-op
func (c *Cart) Remove(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.lines, slug)
	c.mirror()
}

// SetQuantity replaces a line's quantity. A quantity of zero or less
// removes the line.
func (c *Cart) SetQuantity(slug string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[slug]
	if !ok {
		return
	}

	if quantity <= 0 {
		delete(c.lines, slug)
	} else {
		line.Quantity = quantity
		c.lines[slug] = line
	}
	c.mirror()
}

// Clear empties the cart; called after a successful checkout
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = make(map[string]Line)
	c.mirror()
}

// Lines returns the cart contents ordered by slug
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

// Total sums the unit price of each line. Quantity is intentionally not
// factored in; checkout charges the same sum.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Price)
	}
	return total
}

func (c *Cart) snapshot() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Slug < lines[j].Slug })
	return lines
}

// mirror pushes the current state to the persister; caller holds the lock
func (c *Cart) mirror() {
	if c.persister == nil {
		return
	}
	_ = c.persister.Save(c.snapshot())
}

// Total sums the unit prices of a detached line slice, matching
// Cart.Total semantics
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price)
	}
	return total
}

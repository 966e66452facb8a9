package models

import (
	"encoding/json"

	"shoplite/internal/money"
)

// CartLine is a product selected into a cart. Title and Price are copied
// from the product when the line is first added and are not refreshed.
type CartLine struct {
	ProductID int64   `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

// Subtotal returns price × quantity rounded to cents.
func (l CartLine) Subtotal() float64 {
	return money.Round2(l.Price * float64(l.Qty))
}

// Cart maps product ids to cart lines. Lines are kept in the order they
// were first added so listings and exports are stable.
// Every stored line has Qty > 0.
type Cart struct {
	lines map[int64]CartLine
	order []int64
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[int64]CartLine)}
}

// Get returns the line for a product id.
func (c *Cart) Get(id int64) (CartLine, bool) {
	line, ok := c.lines[id]
	return line, ok
}

// Put stores a line, keeping its position if the id is already present.
// A line with a non-positive quantity deletes the entry instead.
func (c *Cart) Put(line CartLine) {
	if line.Qty <= 0 {
		c.Delete(line.ProductID)
		return
	}
	if _, ok := c.lines[line.ProductID]; !ok {
		c.order = append(c.order, line.ProductID)
	}
	c.lines[line.ProductID] = line
}

// Delete removes a line and reports whether it was present.
func (c *Cart) Delete(id int64) bool {
	if _, ok := c.lines[id]; !ok {
		return false
	}
	delete(c.lines, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Reset removes every line.
func (c *Cart) Reset() {
	c.lines = make(map[int64]CartLine)
	c.order = nil
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.lines[id])
	}
	return out
}

// MarshalJSON encodes the cart as its ordered list of lines.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// Totals is the pricing breakdown of a cart. It is derived on demand and
// never stored on the cart itself.
type Totals struct {
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Grand    float64 `json:"total"`
}

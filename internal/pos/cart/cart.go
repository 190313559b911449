// Package cart accumulates product selections of one till session before checkout.
package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tair/till-pos/internal/pos/domain"
)

// Line is one product in the cart. Name and Price are captured when the
// product is first added and are not refreshed afterwards.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is Price × Quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart maps a product id to its single line. It is not safe for concurrent
// use; Sessions serializes access per session.
type Cart struct {
	lines map[uint]*Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{lines: make(map[uint]*Line)}
}

// AddProduct adds one unit of p
func (c *Cart) AddProduct(p domain.Product) {
	if line, ok := c.lines[p.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[p.ID] = &Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	}
}

// Clear removes every line
func (c *Cart) Clear() {
	clear(c.lines)
}

// Lines returns copies of the lines ordered by product id
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

// Total sums every line's subtotal
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Len is the number of distinct products
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

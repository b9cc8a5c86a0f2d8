package cart

import (
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNameRequired = errors.New("item name is required")
	ErrNegativePrice    = errors.New("item price cannot be negative")
	ErrItemNotInCart    = errors.New("item not in cart")
	ErrQuantityInvalid  = errors.New("quantity must be positive")
)

// Item is what the UI hands over when a customer taps "add".
type Item struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ItemID      string          `json:"itemId"`
	Emoji       string          `json:"emoji,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Line is one row of the cart. Name is unique within a cart.
type Line struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ItemID      string          `json:"itemId"`
	Emoji       string          `json:"emoji,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Total returns price × quantity for the line.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order.
type Cart struct {
	mu    sync.RWMutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity of an existing line or appends a new one with
// quantity 1. An existing line keeps its identifier unless it had none.
func (c *Cart) Add(item Item) (Line, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return Line{}, ErrItemNameRequired
	}
	if item.Price.IsNegative() {
		return Line{}, ErrNegativePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(name); i >= 0 {
		c.lines[i].Quantity++
		if c.lines[i].ItemID == "" {
			c.lines[i].ItemID = item.ItemID
		}
		return c.lines[i], nil
	}

	line := Line{
		Name:        name,
		Price:       item.Price,
		Quantity:    1,
		ItemID:      item.ItemID,
		Emoji:       item.Emoji,
		Description: item.Description,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// Adjust changes a line's quantity by delta. Reaching zero or below removes
// the line; removed reports whether that happened.
func (c *Cart) Adjust(name string, delta int) (line Line, removed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return Line{}, false, ErrItemNotInCart
	}

	qty := c.lines[i].Quantity + delta
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return Line{}, true, nil
	}
	c.lines[i].Quantity = qty
	return c.lines[i], false, nil
}

// SetQuantity sets an absolute quantity. Zero removes the line.
func (c *Cart) SetQuantity(name string, qty int) (Line, bool, error) {
	if qty < 0 {
		return Line{}, false, ErrQuantityInvalid
	}

	c.mu.RLock()
	i := c.indexOf(name)
	var current int
	if i >= 0 {
		current = c.lines[i].Quantity
	}
	c.mu.RUnlock()

	if i < 0 {
		return Line{}, false, ErrItemNotInCart
	}
	return c.Adjust(name, qty-current)
}

func (c *Cart) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(name)
	if i < 0 {
		return ErrItemNotInCart
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.Lines())
}

// Count sums quantities over lines.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums price × quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) indexOf(name string) int {
	for i, l := range c.lines {
		if l.Name == name {
			return i
		}
	}
	return -1
}

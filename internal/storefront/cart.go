// Package storefront is the shopper-side client: catalog, cart and checkout.
package storefront

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrIndexOutOfRange = errors.New("cart index out of range")

// Item is one cart line. The JSON shape matches what the browser client stored.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (i Item) Subtotal() float64 {
	return money(decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// Cart keeps its lines in insertion order, one line per product id.
type Cart struct {
	Items []Item
}

// Add puts one unit of the product in the cart and returns the updated line.
func (c *Cart) Add(id, name string, price float64) Item {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity++
			return c.Items[i]
		}
	}
	item := Item{ID: id, Name: name, Price: price, Quantity: 1}
	c.Items = append(c.Items, item)
	return item
}

// Remove drops the line at index. An out-of-range index leaves the cart unchanged.
func (c *Cart) Remove(index int) (Item, error) {
	if index < 0 || index >= len(c.Items) {
		return Item{}, ErrIndexOutOfRange
	}
	removed := c.Items[index]
	c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
	return removed, nil
}

func (c *Cart) Total() float64 {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money(total)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) clone() *Cart {
	return &Cart{Items: append([]Item(nil), c.Items...)}
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

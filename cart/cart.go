// Package cart holds a buyer's in-progress selection of products.
//
// A Cart keeps entries in insertion order. Quantities are whole units, at
// least one, and never more than the whole units the product has in stock
// at the time the entry was last changed.
package cart

import (
	"context"
	"fmt"

	"farmconnect/models"

	"github.com/shopspring/decimal"
)

// OrderPlacer turns seller groups into persisted orders.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, groups []SellerGroup) ([]models.Order, error)
}

type SellerGroup struct {
	SellerID string
	Entries  []models.CartEntry
}

type Cart struct {
	entries []models.CartEntry
}

func New(entries ...models.CartEntry) *Cart {
	c := &Cart{}
	c.entries = append(c.entries, entries...)
	return c
}

// Entries returns a copy of the entries in insertion order.
func (c *Cart) Entries() []models.CartEntry {
	out := make([]models.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Cart) Len() int {
	return len(c.entries)
}

func (c *Cart) Clear() {
	c.entries = nil
}

func (c *Cart) index(productID string) int {
	for i, e := range c.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts quantity units of product in the cart, merging with an existing
// entry for the same product. The resulting quantity is capped at the
// product's available whole units.
func (c *Cart) Add(product models.Product, quantity int) (models.CartEntry, error) {
	if quantity < 1 {
		return models.CartEntry{}, models.Validationf("quantity must be at least 1, got %d", quantity)
	}
	available := product.AvailableUnits()
	if available < 1 {
		return models.CartEntry{}, models.Validationf("%s is out of stock", product.Name)
	}

	if i := c.index(product.ID); i >= 0 {
		e := &c.entries[i]
		e.Product = product
		e.SellerID = product.SellerID
		e.Quantity = min(e.Quantity+quantity, available)
		return *e, nil
	}

	e := models.CartEntry{
		Product:  product,
		Quantity: min(quantity, available),
		SellerID: product.SellerID,
	}
	c.entries = append(c.entries, e)
	return e, nil
}

// UpdateQuantity sets the quantity of an existing entry. Values below one
// are ignored; use Remove to drop an entry.
func (c *Cart) UpdateQuantity(productID string, quantity int) (models.CartEntry, error) {
	i := c.index(productID)
	if i < 0 {
		return models.CartEntry{}, models.NotFoundf("product %s is not in the cart", productID)
	}
	e := &c.entries[i]
	if quantity < 1 {
		return *e, nil
	}
	e.Quantity = min(quantity, max(e.Product.AvailableUnits(), 1))
	return *e, nil
}

// Refresh replaces the product snapshot held by product's entry, leaving
// its quantity alone. It reports whether the cart holds the product.
func (c *Cart) Refresh(product models.Product) bool {
	i := c.index(product.ID)
	if i < 0 {
		return false
	}
	c.entries[i].Product = product
	c.entries[i].SellerID = product.SellerID
	return true
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
}

// PlaceOrder hands the seller groups to placer and clears the cart once the
// placer succeeds. An empty cart is rejected without calling placer.
func (c *Cart) PlaceOrder(ctx context.Context, placer OrderPlacer) ([]models.Order, error) {
	if len(c.entries) == 0 {
		return nil, models.Validationf("cart is empty")
	}
	orders, err := placer.PlaceOrder(ctx, GroupBySeller(c.entries))
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	c.Clear()
	return orders, nil
}

// GroupBySeller partitions entries by seller. Groups appear in the order
// their seller first appears; entries keep their relative order.
func GroupBySeller(entries []models.CartEntry) []SellerGroup {
	groups := []SellerGroup{}
	pos := map[string]int{}
	for _, e := range entries {
		i, ok := pos[e.SellerID]
		if !ok {
			i = len(groups)
			pos[e.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: e.SellerID})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// CalculateTotal sums price times quantity. No tax, discount or delivery.
func CalculateTotal(entries []models.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// PlacerFunc adapts a function to OrderPlacer.
type PlacerFunc func(ctx context.Context, groups []SellerGroup) ([]models.Order, error)

func (f PlacerFunc) PlaceOrder(ctx context.Context, groups []SellerGroup) ([]models.Order, error) {
	return f(ctx, groups)
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"farmconnect/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, seller string, price, stock int64) models.Product {
	return models.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    decimal.NewFromInt(price),
		Quantity: decimal.NewFromInt(stock),
		Unit:     models.UnitKg,
		SellerID: seller,
	}
}

type recordingPlacer struct {
	groups []SellerGroup
	err    error
}

func (p *recordingPlacer) PlaceOrder(_ context.Context, groups []SellerGroup) ([]models.Order, error) {
	p.groups = groups
	if p.err != nil {
		return nil, p.err
	}
	orders := make([]models.Order, 0, len(groups))
	for _, g := range groups {
		orders = append(orders, models.Order{SellerID: g.SellerID, Status: models.OrderPending, Total: CalculateTotal(g.Entries)})
	}
	return orders, nil
}

func TestAddTwiceMergesEntry(t *testing.T) {
	c := New()
	x := item("x", "s1", 120, 50)

	_, err := c.Add(x, 1)
	require.NoError(t, err)
	_, err = c.Add(x, 1)
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Product.ID)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, "s1", entries[0].SellerID)
}

func TestAddCapsAtStock(t *testing.T) {
	c := New()
	p := item("p", "s1", 10, 3)

	e, err := c.Add(p, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Quantity)

	e, err = c.Add(p, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Quantity)
}

func TestAddFractionalStockUsesWholeUnits(t *testing.T) {
	c := New()
	p := item("p", "s1", 10, 0)
	p.Quantity = decimal.RequireFromString("2.75")

	e, err := c.Add(p, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Quantity)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	c := New()

	_, err := c.Add(item("p", "s1", 10, 5), 0)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = c.Add(item("q", "s1", 10, 0), 1)
	assert.True(t, errors.Is(err, models.ErrValidation))

	assert.Equal(t, 0, c.Len())
}

func TestUpdateQuantityBelowOneIsNoop(t *testing.T) {
	c := New()
	_, err := c.Add(item("p", "s1", 10, 20), 4)
	require.NoError(t, err)

	for _, q := range []int{0, -1, -50} {
		e, err := c.UpdateQuantity("p", q)
		require.NoError(t, err)
		assert.Equal(t, 4, e.Quantity)
		assert.Equal(t, 4, c.Entries()[0].Quantity)
	}
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	_, err := c.Add(item("p", "s1", 10, 6), 1)
	require.NoError(t, err)

	e, err := c.UpdateQuantity("p", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, e.Quantity)

	e, err = c.UpdateQuantity("p", 60)
	require.NoError(t, err)
	assert.Equal(t, 6, e.Quantity)

	_, err = c.UpdateQuantity("missing", 2)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestRefreshKeepsQuantity(t *testing.T) {
	c := New()
	_, err := c.Add(item("p", "s1", 10, 6), 3)
	require.NoError(t, err)

	assert.True(t, c.Refresh(item("p", "s1", 12, 2)))
	assert.False(t, c.Refresh(item("missing", "s1", 1, 1)))

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.True(t, entries[0].Product.Price.Equal(decimal.NewFromInt(12)))

	e, err := c.UpdateQuantity("p", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Quantity)
}

func TestRemoveIsUnconditional(t *testing.T) {
	c := New()
	_, _ = c.Add(item("a", "s1", 10, 5), 1)
	_, _ = c.Add(item("b", "s1", 10, 5), 1)

	c.Remove("a")
	c.Remove("missing")

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Product.ID)
}

func TestGroupBySellerPartitionsWithoutLoss(t *testing.T) {
	for n := 0; n <= 5; n++ {
		c := New()
		for s := 0; s < n; s++ {
			for k := 0; k <= s; k++ {
				_, err := c.Add(item(fmt.Sprintf("p%d-%d", s, k), fmt.Sprintf("s%d", s), 10, 10), 1)
				require.NoError(t, err)
			}
		}

		entries := c.Entries()
		groups := GroupBySeller(entries)
		require.Len(t, groups, n)

		seen := map[string]int{}
		total := 0
		for _, g := range groups {
			for _, e := range g.Entries {
				assert.Equal(t, g.SellerID, e.SellerID)
				seen[e.Product.ID]++
				total++
			}
		}
		assert.Equal(t, len(entries), total)
		for _, e := range entries {
			assert.Equal(t, 1, seen[e.Product.ID])
		}
	}
}

func TestGroupBySellerKeepsOrder(t *testing.T) {
	entries := []models.CartEntry{
		{Product: item("1", "s2", 1, 1), Quantity: 1, SellerID: "s2"},
		{Product: item("2", "s1", 1, 1), Quantity: 1, SellerID: "s1"},
		{Product: item("3", "s2", 1, 1), Quantity: 1, SellerID: "s2"},
	}
	groups := GroupBySeller(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, "s2", groups[0].SellerID)
	assert.Equal(t, "1", groups[0].Entries[0].Product.ID)
	assert.Equal(t, "3", groups[0].Entries[1].Product.ID)
	assert.Equal(t, "s1", groups[1].SellerID)
}

func TestCalculateTotalIsAdditive(t *testing.T) {
	a := []models.CartEntry{
		{Product: item("1", "s1", 120, 10), Quantity: 2, SellerID: "s1"},
		{Product: item("2", "s2", 150, 10), Quantity: 1, SellerID: "s2"},
	}
	b := []models.CartEntry{
		{Product: models.Product{ID: "3", Price: decimal.RequireFromString("33.35")}, Quantity: 3, SellerID: "s3"},
	}

	union := append(append([]models.CartEntry{}, a...), b...)
	assert.True(t, CalculateTotal(a).Equal(decimal.NewFromInt(390)))
	assert.True(t, CalculateTotal(union).Equal(CalculateTotal(a).Add(CalculateTotal(b))))
	assert.True(t, CalculateTotal(nil).IsZero())
}

func TestPlaceOrderClearsOnSuccess(t *testing.T) {
	c := New()
	_, _ = c.Add(item("a", "s1", 100, 5), 2)
	_, _ = c.Add(item("b", "s2", 50, 5), 1)

	placer := &recordingPlacer{}
	orders, err := c.PlaceOrder(context.Background(), placer)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Len(t, placer.groups, 2)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 0, c.Len())
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	c := New()
	_, _ = c.Add(item("a", "s1", 100, 5), 2)

	_, err := c.PlaceOrder(context.Background(), &recordingPlacer{err: errors.New("db down")})
	require.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	placer := &recordingPlacer{}
	_, err := New().PlaceOrder(context.Background(), placer)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Nil(t, placer.groups)
}

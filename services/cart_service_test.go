package services

import (
	"context"
	"errors"
	"testing"

	"farmconnect/models"
	"farmconnect/testutil"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shopFixture struct {
	products *testutil.Products
	carts    *memCarts
	orders   *testutil.Orders
	cache    *memCache
	mailer   *fakeMailer
	accounts *testutil.Accounts
	orderSvc *OrderService
	cartSvc  *CartService
}

func newShopFixture(t *testing.T) *shopFixture {
	t.Helper()
	f := &shopFixture{
		products: testutil.NewProducts(
			product("tomato", "s1", "Tomatoes", 120, 5),
			product("kale", "s1", "Kale", 30, 10),
			product("milk", "s2", "Milk", 60, 3),
		),
		carts:    newMemCarts(),
		cache:    newMemCache(),
		mailer:   &fakeMailer{},
		accounts: testutil.NewAccounts(),
	}
	f.orders = testutil.NewOrders(f.products)
	f.orderSvc = NewOrderService(f.orders, f.accounts, f.cache, f.mailer, zerolog.Nop())
	f.cartSvc = NewCartService(f.carts, f.products, f.orderSvc, zerolog.Nop())
	return f
}

func TestCartAddTwiceMerges(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "tomato"})
	require.NoError(t, err)
	view, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "tomato"})
	require.NoError(t, err)

	require.Len(t, view.Entries, 1)
	assert.Equal(t, 2, view.Entries[0].Quantity)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(240)))
}

func TestCartViewGroupsBySeller(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "tomato", Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "milk", Quantity: 1})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "kale", Quantity: 1})
	require.NoError(t, err)

	view, err := f.cartSvc.View(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "s1", view.Groups[0].SellerID)
	assert.Len(t, view.Groups[0].Entries, 2)
	assert.True(t, view.Groups[0].Subtotal.Equal(decimal.NewFromInt(270)))
	assert.True(t, view.Groups[1].Subtotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, view.Total.Equal(decimal.NewFromInt(330)))
}

func TestCartRejectsOwnProductAndUnknownProduct(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddItem(ctx, "s1", models.AddToCartRequest{ProductID: "tomato"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "nope"})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCartUpdateAndRemove(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "kale", Quantity: 2})
	require.NoError(t, err)

	view, err := f.cartSvc.UpdateItem(ctx, "b1", "kale", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Entries[0].Quantity)

	view, err = f.cartSvc.UpdateItem(ctx, "b1", "kale", 50)
	require.NoError(t, err)
	assert.Equal(t, 10, view.Entries[0].Quantity)

	_, err = f.cartSvc.UpdateItem(ctx, "b1", "milk", 1)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	view, err = f.cartSvc.RemoveItem(ctx, "b1", "kale")
	require.NoError(t, err)
	assert.Empty(t, view.Entries)
	assert.Empty(t, f.carts.carts)
}

func TestCartUpdateCapsAtCurrentStock(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "kale", Quantity: 2})
	require.NoError(t, err)

	kale, _ := f.products.FindByID(ctx, "kale")
	kale.Quantity = decimal.NewFromInt(4)
	kale.Price = decimal.NewFromInt(35)
	require.NoError(t, f.products.Update(ctx, kale))

	view, err := f.cartSvc.UpdateItem(ctx, "b1", "kale", 8)
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, 4, view.Entries[0].Quantity)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(140)))
}

func TestCheckoutPlacesOrderPerSeller(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "tomato", Quantity: 2})
	require.NoError(t, err)
	_, err = f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "milk", Quantity: 3})
	require.NoError(t, err)

	orders, err := f.cartSvc.Checkout(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "s1", orders[0].SellerID)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, "s2", orders[1].SellerID)
	assert.Equal(t, models.OrderPending, orders[1].Status)

	view, err := f.cartSvc.View(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, view.Entries)

	tomato, _ := f.products.FindByID(ctx, "tomato")
	assert.True(t, tomato.Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	_, err := f.cartSvc.AddItem(ctx, "b1", models.AddToCartRequest{ProductID: "milk", Quantity: 3})
	require.NoError(t, err)

	// someone else bought the milk in the meantime
	milk, _ := f.products.FindByID(ctx, "milk")
	milk.Quantity = decimal.NewFromInt(1)
	require.NoError(t, f.products.Update(ctx, milk))

	_, err = f.cartSvc.Checkout(ctx, "b1")
	assert.True(t, errors.Is(err, models.ErrValidation))

	view, err := f.cartSvc.View(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, 3, view.Entries[0].Quantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newShopFixture(t)
	_, err := f.cartSvc.Checkout(context.Background(), "b1")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

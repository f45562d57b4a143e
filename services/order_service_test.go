package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"farmconnect/cart"
	"farmconnect/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOne(t *testing.T, f *shopFixture, buyer, productID string, q int) models.Order {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)

	orders, err := f.orderSvc.Place(context.Background(), buyer, []cart.SellerGroup{{
		SellerID: p.SellerID,
		Entries:  []models.CartEntry{{Product: *p, Quantity: q, SellerID: p.SellerID}},
	}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return orders[0]
}

func TestOrderNotifiesSeller(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	seller := &models.Account{Email: "seller@example.com", Metadata: models.AccountMetadata{Name: "Njeri", Role: models.RoleSeller}}
	require.NoError(t, f.accounts.Create(ctx, seller))

	eggs := &models.Product{SellerID: seller.ID, Name: "Eggs", Price: decimal.NewFromInt(15), Quantity: decimal.NewFromInt(30), Unit: models.UnitDozen}
	require.NoError(t, f.products.Create(ctx, eggs))

	placeOne(t, f, "b1", eggs.ID, 2)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "order", f.mailer.sent[0].kind)
	assert.Equal(t, "seller@example.com", f.mailer.sent[0].to)
}

func TestOrderNotificationFailureIsIgnored(t *testing.T) {
	f := newShopFixture(t)
	f.mailer.err = errors.New("smtp down")

	o := placeOne(t, f, "b1", "tomato", 1)
	assert.Equal(t, models.OrderPending, o.Status)
}

func TestOrderListing(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	placeOne(t, f, "b1", "tomato", 1)
	placeOne(t, f, "b2", "milk", 1)

	mine, err := f.orderSvc.ListForBuyer(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "s1", mine[0].SellerID)

	sales, err := f.orderSvc.ListForSeller(ctx, "s2", "")
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	sales, err = f.orderSvc.ListForSeller(ctx, "s2", models.OrderCompleted)
	require.NoError(t, err)
	assert.Empty(t, sales)

	_, err = f.orderSvc.ListForSeller(ctx, "s2", "shipped")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestOrderVisibleToBuyerAndSellerOnly(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	o := placeOne(t, f, "b1", "kale", 1)

	got, err := f.orderSvc.Get(ctx, "b1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.orderSvc.Get(ctx, "s1", o.ID)
	require.NoError(t, err)

	_, err = f.orderSvc.Get(ctx, "b2", o.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestOrderStatusTransitions(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	o := placeOne(t, f, "b1", "tomato", 2)

	_, err := f.orderSvc.UpdateStatus(ctx, "s2", o.ID, models.OrderCompleted)
	assert.True(t, errors.Is(err, models.ErrPermission))

	_, err = f.orderSvc.UpdateStatus(ctx, "s1", o.ID, models.OrderPending)
	assert.True(t, errors.Is(err, models.ErrValidation))

	cancelled, err := f.orderSvc.UpdateStatus(ctx, "s1", o.ID, models.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	tomato, _ := f.products.FindByID(ctx, "tomato")
	assert.True(t, tomato.Quantity.Equal(decimal.NewFromInt(5)))

	_, err = f.orderSvc.UpdateStatus(ctx, "s1", o.ID, models.OrderCompleted)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.orderSvc.UpdateStatus(ctx, "s1", o.ID, "lost")
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestOrderPlacementError(t *testing.T) {
	f := newShopFixture(t)
	f.orders.Fail = errStoreDown

	_, err := f.orderSvc.Place(context.Background(), "b1", []cart.SellerGroup{{SellerID: "s1", Entries: []models.CartEntry{{Product: product("tomato", "s1", "Tomatoes", 120, 5), Quantity: 1, SellerID: "s1"}}}})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 0, f.cache.invalidated)
}

func TestMailServiceComposesMessages(t *testing.T) {
	sender := &recordingSender{}
	svc := &MailService{sender: sender, from: "FarmConnect <no-reply@farmconnect.test>"}

	require.NoError(t, svc.SendConfirmation("a@example.com", "<Amina>", "http://x/auth/confirm?token=t"))
	require.NoError(t, svc.SendOrderNotification("s@example.com", "Njeri", models.Order{
		ID:    "ord-1",
		Total: decimal.NewFromInt(240),
		Items: []models.OrderItem{{ProductName: "Tomatoes", Quantity: 2, Unit: models.UnitKg, Price: decimal.NewFromInt(120)}},
	}))

	require.Len(t, sender.messages, 2)
	assert.Equal(t, []string{"a@example.com"}, sender.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"New FarmConnect order"}, sender.messages[1].GetHeader("Subject"))

	var body strings.Builder
	_, err := sender.messages[0].WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "&lt;Amina&gt;")

	sender.err = errors.New("dial failed")
	assert.Error(t, svc.SendConfirmation("a@example.com", "A", "http://x"))
}

func TestSellerStats(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()

	completed := placeOne(t, f, "b1", "tomato", 1)
	placeOne(t, f, "b2", "kale", 2)
	cancelled := placeOne(t, f, "b3", "tomato", 1)
	placeOne(t, f, "b1", "milk", 1)

	_, err := f.orderSvc.UpdateStatus(ctx, "s1", completed.ID, models.OrderCompleted)
	require.NoError(t, err)
	_, err = f.orderSvc.UpdateStatus(ctx, "s1", cancelled.ID, models.OrderCancelled)
	require.NoError(t, err)

	listings, err := f.products.ListBySeller(ctx, "s1")
	require.NoError(t, err)

	stats, err := f.orderSvc.SellerStats(ctx, "s1", listings)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(120)), stats.Revenue.String())
	assert.Equal(t, 2, stats.Customers)
	require.Len(t, stats.RecentOrders, 3)
	assert.Equal(t, cancelled.ID, stats.RecentOrders[0].ID)
}

func TestSellerStatsKeepsLatestOrders(t *testing.T) {
	orders := make([]models.Order, 7)
	for i := range orders {
		orders[i] = models.Order{ID: string(rune('a' + i)), BuyerID: "b1", Status: models.OrderPending}
	}
	stats := summarizeSeller(nil, orders)
	assert.Equal(t, 7, stats.PendingOrders)
	assert.Equal(t, 1, stats.Customers)
	assert.True(t, stats.Revenue.IsZero())
	require.Len(t, stats.RecentOrders, recentOrderLimit)
	assert.Equal(t, "a", stats.RecentOrders[0].ID)
}

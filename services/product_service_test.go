package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmconnect/catalog"
	"farmconnect/models"
	"farmconnect/repositories"
	"farmconnect/testutil"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, seller, name string, price, stock int64) models.Product {
	return models.Product{
		ID:       id,
		SellerID: seller,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: decimal.NewFromInt(stock),
		Unit:     models.UnitKg,
		Category: models.CategoryVegetables,
		Location: "Nairobi",
	}
}

func createReq() models.CreateProductRequest {
	return models.CreateProductRequest{
		Name:     "Sukuma wiki",
		Price:    decimal.NewFromInt(30),
		Quantity: decimal.NewFromInt(12),
		Unit:     models.UnitBag,
		Category: models.CategoryVegetables,
		Location: "Kiambu",
	}
}

func TestProductListUsesCache(t *testing.T) {
	store := testutil.NewProducts(product("1", "s1", "Tomatoes", 120, 10), product("2", "s1", "Maize", 40, 10))
	cache := newMemCache()
	svc := NewProductService(store, cache, zerolog.Nop())
	ctx := context.Background()

	all, err := svc.List(ctx, catalog.Criteria{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(ctx, catalog.Criteria{Search: "tom"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Tomatoes", filtered[0].Name)

	assert.Equal(t, 1, store.ListCalls())
	_, hit, _ := cache.Get(ctx, repositories.ProductListAllKey)
	assert.True(t, hit)
}

func TestProductListWithNilRedisCache(t *testing.T) {
	store := testutil.NewProducts(product("1", "s1", "Tomatoes", 120, 10))
	svc := NewProductService(store, repositories.NewProductCache(nil, 0), zerolog.Nop())

	got, err := svc.List(context.Background(), catalog.Criteria{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProductCreateValidatesAndInvalidates(t *testing.T) {
	store := testutil.NewProducts()
	cache := newMemCache()
	svc := NewProductService(store, cache, zerolog.Nop())
	ctx := context.Background()

	p, err := svc.Create(ctx, "s1", createReq())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "s1", p.SellerID)
	assert.Equal(t, 1, cache.invalidated)

	bad := createReq()
	bad.Price = decimal.Zero
	_, err = svc.Create(ctx, "s1", bad)
	assert.True(t, errors.Is(err, models.ErrValidation))

	bad = createReq()
	bad.Unit = "tonne"
	_, err = svc.Create(ctx, "s1", bad)
	assert.True(t, errors.Is(err, models.ErrValidation))

	bad = createReq()
	bad.Quantity = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, "s1", bad)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestProductUpdateAndDeleteRequireOwner(t *testing.T) {
	store := testutil.NewProducts(product("1", "s1", "Tomatoes", 120, 10))
	cache := newMemCache()
	svc := NewProductService(store, cache, zerolog.Nop())
	ctx := context.Background()

	price := decimal.NewFromInt(150)
	_, err := svc.Update(ctx, "s2", "1", models.UpdateProductRequest{Price: &price})
	assert.True(t, errors.Is(err, models.ErrPermission))

	updated, err := svc.Update(ctx, "s1", "1", models.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Tomatoes", updated.Name)

	zero := decimal.Zero
	_, err = svc.Update(ctx, "s1", "1", models.UpdateProductRequest{Price: &zero})
	assert.True(t, errors.Is(err, models.ErrValidation))

	assert.True(t, errors.Is(svc.Delete(ctx, "s2", "1"), models.ErrPermission))
	require.NoError(t, svc.Delete(ctx, "s1", "1"))
	_, err = svc.Get(ctx, "1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, 2, cache.invalidated)
}

func TestProductListBySeller(t *testing.T) {
	store := testutil.NewProducts(product("1", "s1", "A", 1, 1), product("2", "s2", "B", 1, 1), product("3", "s1", "C", 1, 1))
	svc := NewProductService(store, newMemCache(), zerolog.Nop())

	got, err := svc.ListBySeller(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "C", got[1].Name)
}

func TestRecommendPrice(t *testing.T) {
	fresh := func(p models.Product) models.Product {
		p.CreatedAt = time.Now()
		return p
	}
	milk := product("6", "s2", "Milk", 60, 1)
	milk.Category = models.CategoryDairy
	store := testutil.NewProducts(
		product("1", "s2", "Tomatoes", 100, 1),
		product("2", "s3", "Onions", 110, 1),
		fresh(product("3", "s4", "Kale", 140, 1)),
		fresh(product("4", "s5", "Spinach", 150, 1)),
		product("5", "s1", "Own cabbage", 10, 1),
		milk,
	)
	svc := NewProductService(store, newMemCache(), zerolog.Nop())
	ctx := context.Background()

	rec, err := svc.RecommendPrice(ctx, "s1", models.CategoryVegetables, models.UnitKg, decimal.NewFromInt(150))
	require.NoError(t, err)
	assert.Equal(t, 4, rec.SampleSize)
	assert.True(t, rec.RecommendedPrice.Equal(decimal.NewFromInt(125)), rec.RecommendedPrice.String())
	assert.True(t, rec.MinPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, rec.MaxPrice.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, models.TrendRising, rec.MarketTrend)
	assert.Equal(t, 80, rec.Confidence)
	assert.Contains(t, rec.Reasoning, "Your price is 20% above the recommendation")

	rec, err = svc.RecommendPrice(ctx, "s1", models.CategoryVegetables, models.UnitKg, decimal.Zero)
	require.NoError(t, err)
	assert.Len(t, rec.Reasoning, 3)

	_, err = svc.RecommendPrice(ctx, "s2", models.CategoryDairy, models.UnitKg, decimal.Zero)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = svc.RecommendPrice(ctx, "s1", models.CategoryVegetables, "tonne", decimal.Zero)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmconnect/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCartRepository_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, 24*time.Hour)
	ctx := context.Background()

	empty, err := repo.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", empty.BuyerID)
	assert.Empty(t, empty.Entries)

	stored := &models.StoredCart{
		BuyerID: "buyer-1",
		Entries: []models.CartEntry{{
			Product:  models.Product{ID: "p1", Name: "Tomatoes", Price: decimal.RequireFromString("120.50"), SellerID: "s1"},
			Quantity: 2,
			SellerID: "s1",
		}},
	}
	require.NoError(t, repo.Save(ctx, stored))

	assert.True(t, mr.Exists("cart:buyer-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:buyer-1"))

	got, err := repo.Get(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 2, got.Entries[0].Quantity)
	assert.True(t, got.Entries[0].Product.Price.Equal(decimal.RequireFromString("120.5")))
}

func TestCartRepository_SaveEmptyDeletes(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("cart:b", `{"buyer_id":"b","entries":[]}`))
	require.NoError(t, repo.Save(ctx, &models.StoredCart{BuyerID: "b"}))
	assert.False(t, mr.Exists("cart:b"))
}

func TestCartRepository_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.StoredCart{BuyerID: "b", Entries: []models.CartEntry{{Quantity: 1}}}))
	mr.FastForward(2 * time.Minute)

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestTokenRepository(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewTokenRepository(client)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked_token:jti-old"))
}

func TestProductCache(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewProductCache(client, 5*time.Minute)
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, ProductListAllKey)
	require.NoError(t, err)
	assert.False(t, hit)

	products := []models.Product{{ID: "p1", Name: "Maize", Price: decimal.NewFromInt(40)}}
	require.NoError(t, cache.Set(ctx, ProductListAllKey, products))
	require.NoError(t, mr.Set("products_list_seller_x", "[]"))
	require.NoError(t, mr.Set("cart:keep", "{}"))

	got, hit, err := cache.Get(ctx, ProductListAllKey)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "Maize", got[0].Name)

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(ProductListAllKey))
	assert.False(t, mr.Exists("products_list_seller_x"))
	assert.True(t, mr.Exists("cart:keep"))
}

func TestNilProductCacheNeverHits(t *testing.T) {
	var cache *ProductCache
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ProductListAllKey, nil))
	_, hit, err := cache.Get(ctx, ProductListAllKey)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, cache.Invalidate(ctx))
	assert.Nil(t, NewProductCache(nil, time.Minute))
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil, "x"))
	assert.True(t, errors.Is(translate(pgx.ErrNoRows, "product"), models.ErrNotFound))
	assert.True(t, errors.Is(translate(&pgconn.PgError{Code: pgUniqueViolation}, "account"), models.ErrDuplicate))
	assert.True(t, errors.Is(translate(&pgconn.PgError{Code: pgForeignKeyViolation}, "profile"), models.ErrNotFound))
	assert.True(t, errors.Is(translate(&pgconn.PgError{Code: pgCheckViolation, ConstraintName: "products_price_check"}, "product"), models.ErrValidation))

	other := errors.New("boom")
	assert.Equal(t, other, translate(other, "x"))
}

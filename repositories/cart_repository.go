package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmconnect/models"

	"github.com/redis/go-redis/v9"
)

// CartRepository keeps one JSON cart per buyer under cart:<buyer id>. Every
// save refreshes the expiry.
type CartRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(rdb *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{rdb: rdb, ttl: ttl}
}

func cartKey(buyerID string) string {
	return "cart:" + buyerID
}

// Get returns the stored cart, or an empty one when the buyer has none.
func (r *CartRepository) Get(ctx context.Context, buyerID string) (*models.StoredCart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.StoredCart{BuyerID: buyerID, Entries: []models.CartEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var c models.StoredCart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c.Entries == nil {
		c.Entries = []models.CartEntry{}
	}
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *models.StoredCart) error {
	if len(c.Entries) == 0 {
		return r.Delete(ctx, c.BuyerID)
	}
	c.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.rdb.Set(ctx, cartKey(c.BuyerID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, buyerID string) error {
	if err := r.rdb.Del(ctx, cartKey(buyerID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

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

const (
	productListPrefix = "products_list_"
	ProductListAllKey = productListPrefix + "all"
)

// ProductCache holds serialized product lists under products_list_* keys.
// A nil *ProductCache is valid and never hits.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if rdb == nil {
		return nil
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context, key string) ([]models.Product, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read product cache: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("decode product cache: %w", err)
	}
	return products, true, nil
}

func (c *ProductCache) Set(ctx context.Context, key string, products []models.Product) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode product cache: %w", err)
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops every cached product list.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, productListPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("invalidate product cache: %w", err)
		}
	}
	return iter.Err()
}

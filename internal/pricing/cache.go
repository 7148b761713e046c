package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedLookup decorates a PriceLookup with a Redis cache. Cache failures
// fall through to the inner lookup; concurrent lookups for the same key are
// collapsed so a busy cart does not stampede the store.
type CachedLookup struct {
	inner PriceLookup
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedLookup builds the cache decorator.
func NewCachedLookup(inner PriceLookup, rdb *redis.Client, ttl time.Duration) *CachedLookup {
	return &CachedLookup{inner: inner, rdb: rdb, ttl: ttl}
}

// ItemPrice implements PriceLookup.
func (c *CachedLookup) ItemPrice(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error) {
	key := cacheKey("price", itemID, customerID, quantity)
	return c.cached(ctx, key, func() (float64, error) {
		return c.inner.ItemPrice(ctx, itemID, customerID, quantity)
	})
}

// ItemDiscount implements PriceLookup.
func (c *CachedLookup) ItemDiscount(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error) {
	key := cacheKey("discount", itemID, customerID, quantity)
	return c.cached(ctx, key, func() (float64, error) {
		return c.inner.ItemDiscount(ctx, itemID, customerID, quantity)
	})
}

func (c *CachedLookup) cached(ctx context.Context, key string, load func() (float64, error)) (float64, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
			if v, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				return v, nil
			}
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := load()
		if err != nil {
			return 0.0, err
		}
		if c.rdb != nil {
			_ = c.rdb.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), c.ttl).Err()
		}
		return value, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func cacheKey(kind string, itemID int64, customerID *int64, quantity float64) string {
	cust := "anon"
	if customerID != nil {
		cust = strconv.FormatInt(*customerID, 10)
	}
	return fmt.Sprintf("pricing:%s:%d:%s:%s", kind, itemID, cust, strconv.FormatFloat(quantity, 'f', -1, 64))
}

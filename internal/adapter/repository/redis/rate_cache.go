package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache implements usecase.RateCache. Rates are stored one key per
// ordered pair as decimal strings, so no precision is lost round-tripping
// through Redis.
type RateCache struct {
	client *redis.Client
	prefix string
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "fxrate:",
	}
}

func (c *RateCache) key(base, target string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, base, target)
}

// GetRate retrieves a cached rate. A miss is reported via ok=false.
func (c *RateCache) GetRate(ctx context.Context, base, target string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(base, target)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}

	if err != nil {
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt entry behaves like a miss so the chain can repair it.
		return decimal.Zero, false, nil
	}

	return rate, true, nil
}

// SetRate stores a rate with TTL.
func (c *RateCache) SetRate(ctx context.Context, base, target string, rate decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(base, target), rate.String(), ttl).Err()
}

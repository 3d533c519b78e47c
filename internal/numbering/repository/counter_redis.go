package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/ledgerly/internal/numbering/domain"
)

const keyVoucherSeries = "ledgerly:numbering:%s:%s"

// RedisClient is the subset of *redis.Client the counter needs.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisCounter issues sequences with INCR. The key is seeded from the series
// row on first use so switching backends does not reissue numbers.
type RedisCounter struct {
	client RedisClient
}

func NewRedisCounter(client RedisClient) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Next(ctx context.Context, series domain.Series) (int64, error) {
	key := seriesKey(series)
	if err := c.client.SetNX(ctx, key, seed(series), 0).Err(); err != nil {
		return 0, err
	}
	return c.client.Incr(ctx, key).Result()
}

func (c *RedisCounter) Peek(ctx context.Context, series domain.Series) (int64, error) {
	raw, err := c.client.Get(ctx, seriesKey(series)).Result()
	if errors.Is(err, redis.Nil) {
		return seed(series) + 1, nil
	}
	if err != nil {
		return 0, err
	}
	current, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", seriesKey(series), err)
	}
	return current + 1, nil
}

func seriesKey(series domain.Series) string {
	return fmt.Sprintf(keyVoucherSeries, series.CompanyID, series.VoucherType)
}

func seed(series domain.Series) int64 {
	if series.NextNumber <= 1 {
		return 0
	}
	return series.NextNumber - 1
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect builds the shared redis client and verifies the connection.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, errs.Wrap(err, "failed to connect to redis")
	}
	cleanup := func() { _ = client.Close() }
	return client, cleanup, nil
}

// AvailabilityCache caches availability search results in a redis hash per
// restaurant and date, one field per party size. Slot mutations drop the
// whole hash; correctness never depends on this cache.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, cfg config.RedisConfig) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: cfg.TTL}
}

func availabilityKey(restaurantID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("availability:%s:%s", restaurantID, date.Format("2006-01-02"))
}

func (c *AvailabilityCache) Get(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int) ([]queries.AvailableSlotView, bool, error) {
	raw, err := c.client.HGet(ctx, availabilityKey(restaurantID, date), strconv.Itoa(minCapacity)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to read availability cache")
	}
	var views []queries.AvailableSlotView
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		return nil, false, errs.Wrap(err, "failed to decode cached availability")
	}
	return views, true, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, restaurantID uuid.UUID, date time.Time, minCapacity int, views []queries.AvailableSlotView) error {
	raw, err := json.Marshal(views)
	if err != nil {
		return errs.Wrap(err, "failed to encode availability")
	}
	key := availabilityKey(restaurantID, date)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(minCapacity), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrap(err, "failed to write availability cache")
	}
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, restaurantID uuid.UUID, date time.Time) error {
	if err := c.client.Del(ctx, availabilityKey(restaurantID, date)).Err(); err != nil {
		return errs.Wrap(err, "failed to invalidate availability cache")
	}
	return nil
}

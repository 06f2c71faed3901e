package cache

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDistanceCache keeps distances in Redis hashes, one per unordered city
// pair, each expiring after TTL.
type RedisDistanceCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, Prefix: "distance", TTL: ttl}
}

// key orders the pair so both directions share one entry.
func (c *RedisDistanceCache) key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return c.Prefix + ":" + a + "|" + b
}

// Fetch cached distances for one origin and multiple destinations.
func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if c.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	out := make(map[string]ports.DistanceResult, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	pipe := c.Client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(uniq))
	for i, d := range uniq {
		cmds[i] = pipe.HGetAll(ctx, c.key(origin, d))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get distance cache: redis pipeline: %w", err)
	}

	for i, d := range uniq {
		fields, err := cmds[i].Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		km, err := strconv.Atoi(fields["km"])
		if err != nil {
			continue
		}
		secs, _ := strconv.Atoi(fields["sec"])
		out[d] = ports.DistanceResult{DistanceKm: km, DurationSeconds: secs}
	}

	return out, nil
}

// Store many cached distance results for a single origin.
func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if c.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.Client.TxPipeline()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		k := c.key(origin, dest)
		pipe.HSet(ctx, k, "km", r.DistanceKm, "sec", r.DurationSeconds)
		if c.TTL > 0 {
			pipe.Expire(ctx, k, c.TTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: redis pipeline: %w", err)
	}
	return nil
}

package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis initializes a Redis client from URL or host:port input
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// CachedComputer wraps a Computer with a Redis cache. Entries are keyed by
// (customer_id, as_of, schema_version) and are immutable, so concurrent
// readers and writers never conflict; a schema bump changes every key.
type CachedComputer struct {
	computer *Computer
	client   *redis.Client
	ttl      time.Duration
	log      *zap.Logger
}

// NewCachedComputer creates a caching wrapper around a feature computer
func NewCachedComputer(computer *Computer, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedComputer {
	return &CachedComputer{
		computer: computer,
		client:   client,
		ttl:      ttl,
		log:      log,
	}
}

func cacheKey(customerID string, asOf int64) string {
	return fmt.Sprintf("features:%s:%d:%s", customerID, asOf, SchemaVersion)
}

// Compute returns the cached vector when present, otherwise computes and
// caches it. Cache failures degrade to direct computation.
func (c *CachedComputer) Compute(ctx context.Context, customerID string, asOf int64) (*Vector, error) {
	key := cacheKey(customerID, asOf)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var v Vector
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		c.log.Warn("Discarding undecodable cached feature vector", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("Feature cache read failed", zap.String("key", key), zap.Error(err))
	}

	vector, err := c.computer.Compute(ctx, customerID, asOf)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vector); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warn("Feature cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return vector, nil
}

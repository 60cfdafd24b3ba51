package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// RedisMatchCache memoizes caller lookups per normalized number. Entries
// with a nil payload are negative markers: the number was checked and did
// not match, so repeat callers skip the repository scan either way. All
// failures degrade to a cache miss.
type RedisMatchCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisMatchCache creates a match cache with the given entry TTL.
func NewRedisMatchCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisMatchCache {
	return &RedisMatchCache{client: client, logger: logger, ttl: ttl}
}

type cachedBlocklistMatch struct {
	Entry *blocklist.Entry `json:"entry"`
}

type cachedContactMatch struct {
	Contact *contact.Contact `json:"contact"`
}

// GetBlocklistMatch returns the cached blacklist result for a number.
func (c *RedisMatchCache) GetBlocklistMatch(ctx context.Context, number values.PhoneNumber) (*blocklist.Entry, bool, bool) {
	var cached cachedBlocklistMatch
	if !c.get(ctx, BlocklistMatchPrefix+number.String(), &cached) {
		return nil, false, false
	}
	if cached.Entry == nil {
		return nil, true, true
	}
	return cached.Entry, false, true
}

// SetBlocklistMatch stores a blacklist result; a nil entry records a
// negative marker.
func (c *RedisMatchCache) SetBlocklistMatch(ctx context.Context, number values.PhoneNumber, entry *blocklist.Entry) {
	c.set(ctx, BlocklistMatchPrefix+number.String(), cachedBlocklistMatch{Entry: entry})
}

// GetContactMatch returns the cached whitelist result for a number.
func (c *RedisMatchCache) GetContactMatch(ctx context.Context, number values.PhoneNumber) (*contact.Contact, bool, bool) {
	var cached cachedContactMatch
	if !c.get(ctx, ContactMatchPrefix+number.String(), &cached) {
		return nil, false, false
	}
	if cached.Contact == nil {
		return nil, true, true
	}
	return cached.Contact, false, true
}

// SetContactMatch stores a whitelist result; a nil contact records a
// negative marker.
func (c *RedisMatchCache) SetContactMatch(ctx context.Context, number values.PhoneNumber, match *contact.Contact) {
	c.set(ctx, ContactMatchPrefix+number.String(), cachedContactMatch{Contact: match})
}

// Invalidate drops all match entries. Called after whitelist or blacklist
// mutations so stale matches never outlive a list change by more than one
// round trip.
func (c *RedisMatchCache) Invalidate(ctx context.Context) {
	for _, pattern := range []string{BlocklistMatchPrefix + "*", ContactMatchPrefix + "*"} {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, 200).Result()
			if err != nil {
				c.logger.Warn("match cache invalidation scan failed", zap.Error(err))
				return
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					c.logger.Warn("match cache invalidation delete failed", zap.Error(err))
					return
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
}

func (c *RedisMatchCache) get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("match cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("match cache entry corrupt, dropping",
			zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return false
	}
	return true
}

func (c *RedisMatchCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("match cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("match cache set failed", zap.String("key", key), zap.Error(err))
	}
}

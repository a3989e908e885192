package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"socialfeed/internal/middleware"
	"socialfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedListKeyPrefix namespaces every cached feed-listing page. Invalidation
	// deletes everything under it, so any new page key must live here too.
	FeedListKeyPrefix = "feeds:list:"

	feedListKeyFormat = FeedListKeyPrefix + "offset:%d:limit:%d"
)

const (
	// FeedListTTL bounds how stale a cached listing page may be.
	FeedListTTL = 60 * time.Second
)

// FeedListKey returns the cache key for one page of the active-feed listing.
func FeedListKey(offset, limit int) string {
	return fmt.Sprintf(feedListKeyFormat, offset, limit)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
// Cache write failures are swallowed: the store result is still returned.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		// A broken cache never fails a read, it just stops helping.
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		found = false
	}
	if found {
		middleware.CacheHits.WithLabelValues(FeedListKeyPrefix).Inc()
		return nil
	}
	middleware.CacheMisses.WithLabelValues(FeedListKeyPrefix).Inc()

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a single key. Best-effort, fire-and-forget.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeedLists deletes every cached feed-listing page. Pages are keyed
// by (offset, limit), so any insertion or deactivation shifts all of them;
// a prefix scan-and-delete is the whole invalidation policy.
func InvalidateFeedLists(ctx context.Context) {
	if client == nil {
		return
	}

	ctx, span := observability.TraceCacheOperation(ctx, "invalidate_feed_lists")
	defer span.End()

	iter := client.Scan(ctx, 0, FeedListKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "feed list cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "curves"
	scanCount        = 200
)

// CachingCurveRepository decorates a CurveRepository with Redis caching.
// Only LatestBefore is cached; Save writes through and invalidates every
// cached lookup of the same curve kind.
type CachingCurveRepository struct {
	inner     usecase.CurveRepository
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var _ usecase.CurveRepository = (*CachingCurveRepository)(nil)

// NewCachingCurveRepository decorates a CurveRepository with Redis caching.
// ttl is evaluated on every write so entries can expire at a fixed daily cut-off.
// If ttl is nil it defaults to 5 minutes. If namespace is empty, it uses "curves".
func NewCachingCurveRepository(rdb *redis.Client, ttl func() time.Duration, inner usecase.CurveRepository, namespace string) *CachingCurveRepository {
	if ttl == nil {
		ttl = func() time.Duration { return defaultTTL }
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingCurveRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Save persists the curve and invalidates cached lookups for its kind.
func (c *CachingCurveRepository) Save(ctx context.Context, curve *entity.Curve) error {
	if err := c.inner.Save(ctx, curve); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// Best effort: a stale entry only lives until its TTL
	if err := c.deleteByPattern(ctx, c.cacheKeyPrefix(curve.Kind)+"*"); err != nil {
		slog.Warn("curve cache invalidation failed", "kind", curve.Kind, "error", err)
	}
	return nil
}

// LatestBefore checks the cache first, then falls back to the inner repository.
// Not-found results are never cached.
func (c *CachingCurveRepository) LatestBefore(ctx context.Context, kind entity.CurveKind, date time.Time) (*entity.Curve, error) {
	if c.rdb == nil {
		return c.inner.LatestBefore(ctx, kind, date)
	}

	key := c.cacheKey(kind, date)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Curve
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.LatestBefore(ctx, kind, date)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if ttl := c.ttl(); ttl > 0 {
			_ = c.rdb.Set(ctx, key, b, ttl).Err()
		}
	}

	return out, nil
}

// cacheKey generates a cache key for a specific lookup.
func (c *CachingCurveRepository) cacheKey(kind entity.CurveKind, date time.Time) string {
	return fmt.Sprintf("%s%s", c.cacheKeyPrefix(kind), entity.DateOf(date).Format(time.DateOnly))
}

// cacheKeyPrefix generates a prefix for invalidating every lookup of a kind.
func (c *CachingCurveRepository) cacheKeyPrefix(kind entity.CurveKind) string {
	return fmt.Sprintf("%s:%s:before:", c.namespace, safe(string(kind)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCurveRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

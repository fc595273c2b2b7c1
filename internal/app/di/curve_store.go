// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/adapters"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
	"yieldcurve_backend/internal/platform/cache"
)

// curveCacheNamespace は公表済みカーブのキャッシュキーの接頭辞です。
const curveCacheNamespace = "curves"

// NewCurveRepository creates a CurveRepository implementation.
// If Redis is available, reads are served through a Redis cache that expires at the
// daily cut-off in loc. Otherwise, it falls back to the database directly.
func NewCurveRepository(rdb *redis.Client, db *gorm.DB, loc *time.Location) usecase.CurveRepository {
	repo := adapters.NewCurveRepository(db)
	if rdb != nil {
		return cache.NewCachingCurveRepository(rdb, cache.CutoffTTL(loc, cache.DefaultCutoffHour), repo, curveCacheNamespace)
	}
	return repo
}

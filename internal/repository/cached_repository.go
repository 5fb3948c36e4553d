package repository

import (
	"context"
	"time"

	"github.com/stwalsh4118/hotelmatch/internal/cache"
	"github.com/stwalsh4118/hotelmatch/internal/logger"
)

// CachedMatchRepository memoizes a MatchRepository. Cache failures are
// logged and fall through to the warehouse.
type CachedMatchRepository struct {
	next  MatchRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedMatchRepository wraps next with c. A non-positive ttl uses
// cache.DefaultTTL.
func NewCachedMatchRepository(next MatchRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) *CachedMatchRepository {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &CachedMatchRepository{next: next, cache: c, ttl: ttl, log: log}
}

// Invalidate forgets the latest-day lookup so the next LatestDay call sees
// newly published days. Day tables stay cached under their own key.
func (r *CachedMatchRepository) Invalidate(ctx context.Context) error {
	return r.cache.Del(ctx, cache.LatestDayKey)
}

// LatestDay reads through the cache. An empty day is not cached.
func (r *CachedMatchRepository) LatestDay(ctx context.Context) (string, error) {
	var day string
	if hit, err := r.cache.Get(ctx, cache.LatestDayKey, &day); err != nil {
		r.log.Warn("cache read failed", map[string]interface{}{"key": cache.LatestDayKey, "error": err.Error()})
	} else if hit {
		return day, nil
	}

	day, err := r.next.LatestDay(ctx)
	if err != nil {
		return "", err
	}
	if day != "" {
		r.store(ctx, cache.LatestDayKey, day)
	}
	return day, nil
}

// HotelsForDay reads the day's rows through the cache.
func (r *CachedMatchRepository) HotelsForDay(ctx context.Context, day string) (HotelLoad, error) {
	key := cache.DayKey(day)

	var load HotelLoad
	if hit, err := r.cache.Get(ctx, key, &load); err != nil {
		r.log.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	} else if hit {
		return load, nil
	}

	load, err := r.next.HotelsForDay(ctx, day)
	if err != nil {
		return HotelLoad{}, err
	}
	if len(load.Records) > 0 {
		r.store(ctx, key, load)
	}
	return load, nil
}

func (r *CachedMatchRepository) store(ctx context.Context, key string, v any) {
	if err := r.cache.Set(ctx, key, v, r.ttl); err != nil {
		r.log.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

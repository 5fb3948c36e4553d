// Package cache memoizes warehouse results between sessions.
package cache

import (
	"context"
	"time"
)

const keyPrefix = "hotelmatch:"

// LatestDayKey holds the most recent ql2_day.
const LatestDayKey = keyPrefix + "latest-day"

// DefaultTTL bounds how long a day's rows are kept.
const DefaultTTL = 24 * time.Hour

// DayKey holds the hotel rows loaded for day.
func DayKey(day string) string {
	return keyPrefix + "day:" + day
}

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the value at key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

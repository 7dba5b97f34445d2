// Package solar wraps the sunrise/sunset and timezone-offset computations
// the night-time estimator depends on. Both lookups are memoized behind
// bounded LRU caches sized from configuration.
package solar

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nathan-osman/go-sunrise"
)

// Times holds one day's sunrise and sunset instants in UTC. OK is false at
// extreme latitudes where the sun does not rise or set that day; callers
// treat that as "no night-time contribution", never as an error.
type Times struct {
	Sunrise time.Time
	Sunset  time.Time
	OK      bool
}

// Calculator computes sunrise/sunset for a location and calendar date.
// Lookups made with a non-empty key are cached per (key, date).
type Calculator struct {
	cache  *lru.Cache[string, Times]
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCalculator(cacheSize int) (*Calculator, error) {
	cache, err := lru.New[string, Times](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Calculator{cache: cache}, nil
}

// ForDate returns sun times for the given calendar date at lat/lon. key is
// the memoization key, normally the airport code; pass "" to skip the cache
// (interpolated route points are effectively unique and would only churn it).
func (c *Calculator) ForDate(key string, lat, lon float64, year int, month time.Month, day int) Times {
	cacheKey := ""
	if key != "" {
		cacheKey = fmt.Sprintf("%s/%04d-%02d-%02d", key, year, month, day)
		if t, ok := c.cache.Get(cacheKey); ok {
			c.hits.Add(1)
			return t
		}
		c.misses.Add(1)
	}

	rise, set := sunrise.SunriseSunset(lat, lon, year, month, day)
	t := Times{Sunrise: rise, Sunset: set, OK: !rise.IsZero() && !set.IsZero()}
	if cacheKey != "" {
		c.cache.Add(cacheKey, t)
	}
	return t
}

// Hits reports cache hits since construction.
func (c *Calculator) Hits() uint64 { return c.hits.Load() }

// Misses reports cache misses since construction.
func (c *Calculator) Misses() uint64 { return c.misses.Load() }

// LocalDate resolves the calendar date of instant t in the named timezone.
// The destination timezone decides which local day a route sample belongs to.
func LocalDate(t time.Time, tz string) (year int, month time.Month, day int, err error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	year, month, day = t.In(loc).Date()
	return year, month, day, nil
}

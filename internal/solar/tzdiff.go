package solar

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TZDiff computes the absolute difference in hours between two timezones'
// current UTC offsets. The offset is taken at the reference instant supplied
// by nowFn, not at the flight date; flights near a daylight-saving switch
// keep the behavior the rest of the toolchain expects.
type TZDiff struct {
	cache  *lru.Cache[string, float64]
	nowFn  func() time.Time
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewTZDiff builds a calculator with a bounded cache of the given size.
// A nil nowFn means time.Now.
func NewTZDiff(cacheSize int, nowFn func() time.Time) (*TZDiff, error) {
	if nowFn == nil {
		nowFn = time.Now
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return nil, err
	}
	return &TZDiff{cache: cache, nowFn: nowFn}, nil
}

// DiffHours returns the absolute UTC-offset difference between the two zones.
// Symmetric; memoized per unordered pair for the lifetime of the calculator.
func (d *TZDiff) DiffHours(tzA, tzB string) (float64, error) {
	key := tzA + "|" + tzB
	if tzB < tzA {
		key = tzB + "|" + tzA
	}
	if v, ok := d.cache.Get(key); ok {
		d.hits.Add(1)
		return v, nil
	}
	d.misses.Add(1)

	now := d.nowFn()
	offA, err := utcOffsetHours(tzA, now)
	if err != nil {
		return 0, err
	}
	offB, err := utcOffsetHours(tzB, now)
	if err != nil {
		return 0, err
	}
	diff := offA - offB
	if diff < 0 {
		diff = -diff
	}
	d.cache.Add(key, diff)
	return diff, nil
}

// Hits reports cache hits since construction.
func (d *TZDiff) Hits() uint64 { return d.hits.Load() }

// Misses reports cache misses since construction.
func (d *TZDiff) Misses() uint64 { return d.misses.Load() }

func utcOffsetHours(tz string, at time.Time) (float64, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	_, offSec := at.In(loc).Zone()
	return float64(offSec) / 3600.0, nil
}

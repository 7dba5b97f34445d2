package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts tried in order. The raw extract uses MM/DD/YYYY; the
// logbook.aero path also accepts ISO and day-first dates, first match wins.
var (
	DateLayoutsFAA      = []string{"01/02/2006"}
	DateLayoutsFlexible = []string{"2006-01-02", "01/02/2006", "02/01/2006"}
)

// TimeParser turns (date, clock) string pairs into UTC instants. Malformed
// input degrades through documented fallbacks instead of failing: a missing
// or junk clock value becomes noon, an unparseable date becomes the current
// wall-clock instant. Each fallback is reported through the warn sink.
type TimeParser struct {
	layouts []string
	nowFn   func() time.Time
}

// NewTimeParser builds a parser over the given date layouts. A nil nowFn
// means time.Now.
func NewTimeParser(layouts []string, nowFn func() time.Time) *TimeParser {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &TimeParser{layouts: layouts, nowFn: nowFn}
}

// ParseDate parses a date string alone, midnight UTC.
func (p *TimeParser) ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	for _, layout := range p.layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", dateStr)
}

// Parse combines a date and an HH:MM clock value into a UTC instant,
// applying the fallback policy. It never fails.
func (p *TimeParser) Parse(dateStr, timeStr string, warn Warnf) time.Time {
	ts := strings.TrimSpace(timeStr)
	if ts == "" || ts == "." {
		warn("malformed time value %q for date %s, using 12:00 instead", timeStr, dateStr)
		ts = "12:00"
	}

	date, err := p.ParseDate(dateStr)
	if err != nil {
		warn("could not parse date %q, using current datetime instead", dateStr)
		return p.nowFn().UTC()
	}

	hour, minute, err := parseClock(ts)
	if err != nil {
		warn("could not parse time %q for date %s: %v, using 12:00 instead", timeStr, dateStr, err)
		hour, minute = 12, 0
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}

// SafeFloat converts a numeric field to float64, treating empty strings and
// the "." placeholder as zero. Unparseable values are zero as well.
func SafeFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

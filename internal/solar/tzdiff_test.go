package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedJanNow() time.Time {
	return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
}

func TestDiffHours(t *testing.T) {
	d, err := NewTZDiff(16, fixedJanNow)
	require.NoError(t, err)

	diff, err := d.DiffHours("UTC", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, 9.0, diff)

	// January: EST is UTC-5, HST is UTC-10.
	diff, err = d.DiffHours("America/New_York", "Pacific/Honolulu")
	require.NoError(t, err)
	assert.Equal(t, 5.0, diff)

	diff, err = d.DiffHours("America/New_York", "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, 3.0, diff)
}

func TestDiffHoursSymmetric(t *testing.T) {
	d, err := NewTZDiff(16, fixedJanNow)
	require.NoError(t, err)

	ab, err := d.DiffHours("America/New_York", "Asia/Tokyo")
	require.NoError(t, err)
	ba, err := d.DiffHours("Asia/Tokyo", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDiffHoursMemoized(t *testing.T) {
	d, err := NewTZDiff(16, fixedJanNow)
	require.NoError(t, err)

	_, err = d.DiffHours("UTC", "Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), d.Hits())
	assert.Equal(t, uint64(1), d.Misses())

	// Same pair in both orders hits the same entry.
	_, err = d.DiffHours("UTC", "Asia/Tokyo")
	require.NoError(t, err)
	_, err = d.DiffHours("Asia/Tokyo", "UTC")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), d.Hits())
	assert.Equal(t, uint64(1), d.Misses())
}

func TestDiffHoursUnknownZone(t *testing.T) {
	d, err := NewTZDiff(16, fixedJanNow)
	require.NoError(t, err)

	_, err = d.DiffHours("UTC", "Nowhere/Atlantis")
	assert.Error(t, err)
}

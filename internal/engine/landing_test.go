package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbook-formatter/internal/airport"
	"logbook-formatter/internal/solar"
)

func newTestClassifier(t *testing.T) *LandingClassifier {
	t.Helper()
	dir, err := airport.LoadEmbedded()
	require.NoError(t, err)
	sun, err := solar.NewCalculator(128)
	require.NoError(t, err)
	parser := NewTimeParser(DateLayoutsFAA, januaryNow)
	return NewLandingClassifier(dir, sun, parser)
}

func landingFlight(off, on string, done bool) FlightRecord {
	return FlightRecord{
		Date:        "01/15/2024",
		Origin:      "JFK",
		Destination: "BOS",
		OffTime:     off,
		OnTime:      on,
		LandingDone: done,
	}
}

func TestClassifyNotPerformed(t *testing.T) {
	c := newTestClassifier(t)

	var warnings []string
	got := c.Classify(landingFlight("05:00", "06:00", false), collectWarnings(&warnings))
	assert.Equal(t, LandingClassification{}, got)
	assert.Zero(t, got.Approaches())
}

func TestClassifyNight(t *testing.T) {
	c := newTestClassifier(t)

	var warnings []string
	got := c.Classify(landingFlight("05:00", "06:00", true), collectWarnings(&warnings))
	assert.Equal(t, LandingClassification{NightLandings: 1, NightTakeoffs: 1}, got)
	assert.Equal(t, 1, got.Approaches())
}

func TestClassifyDay(t *testing.T) {
	c := newTestClassifier(t)

	var warnings []string
	got := c.Classify(landingFlight("15:00", "18:00", true), collectWarnings(&warnings))
	assert.Equal(t, LandingClassification{DayLandings: 1, DayTakeoffs: 1}, got)
}

// An event between sunset and the end of civil twilight still counts as day.
func TestClassifyTwilightIsDay(t *testing.T) {
	c := newTestClassifier(t)

	// Boston sunset on Jan 15 2024 is ~21:32 UTC; 21:45 is inside the
	// 30-minute twilight window, 23:00 is well past it.
	var warnings []string
	got := c.Classify(landingFlight("15:00", "21:45", true), collectWarnings(&warnings))
	assert.Equal(t, 1, got.DayLandings)

	got = c.Classify(landingFlight("15:00", "23:00", true), collectWarnings(&warnings))
	assert.Equal(t, 1, got.NightLandings)
}

func TestClassifyUnknownAirportDefaultsToDay(t *testing.T) {
	c := newTestClassifier(t)

	f := landingFlight("05:00", "06:00", true)
	f.Destination = "ZZZ"
	var warnings []string
	got := c.Classify(f, collectWarnings(&warnings))
	assert.Equal(t, 1, got.DayLandings)
	assert.Equal(t, 1, got.NightTakeoffs)
	assert.NotEmpty(t, warnings)
}

func TestClassifyExactlyOneEach(t *testing.T) {
	c := newTestClassifier(t)

	for _, on := range []string{"02:00", "12:30", "17:00", "22:00"} {
		var warnings []string
		got := c.Classify(landingFlight("01:00", on, true), collectWarnings(&warnings))
		assert.Equal(t, 1, got.DayLandings+got.NightLandings, "on %s", on)
		assert.Equal(t, 1, got.DayTakeoffs+got.NightTakeoffs, "on %s", on)
	}
}

package engine

import (
	"fmt"
	"time"

	"logbook-formatter/internal/airport"
	"logbook-formatter/internal/solar"
)

// civilTwilight is how long after sunset an event still counts as day.
const civilTwilight = 30 * time.Minute

// LandingClassifier decides whether a flight's landing and takeoff happened
// in daylight or at night.
type LandingClassifier struct {
	airports *airport.Directory
	sun      *solar.Calculator
	parser   *TimeParser
}

func NewLandingClassifier(airports *airport.Directory, sun *solar.Calculator, parser *TimeParser) *LandingClassifier {
	return &LandingClassifier{airports: airports, sun: sun, parser: parser}
}

// Classify credits exactly one landing and one takeoff, each day or night,
// when the crew member performed the landing; all zeros otherwise. Whoever
// performed the landing also performed the takeoff on that leg. When the
// airport or sun position cannot be resolved the event defaults to day.
func (c *LandingClassifier) Classify(f FlightRecord, warn Warnf) LandingClassification {
	if !f.LandingDone {
		return LandingClassification{}
	}

	var out LandingClassification

	landingTime := c.parser.Parse(f.Date, f.OnTime, warn)
	if c.isNightAt(landingTime, f.Destination, warn) {
		out.NightLandings = 1
	} else {
		out.DayLandings = 1
	}

	takeoffTime := c.parser.Parse(f.Date, f.OffTime, warn)
	if c.isNightAt(takeoffTime, f.Origin, warn) {
		out.NightTakeoffs = 1
	} else {
		out.DayTakeoffs = 1
	}

	return out
}

// isNightAt reports whether the instant is at or after civil twilight, or at
// or before sunrise, at the given airport. Failures default to day.
func (c *LandingClassifier) isNightAt(t time.Time, code string, warn Warnf) bool {
	night, err := c.nightCheck(t, code)
	if err != nil {
		warn("determining day/night at %s: %v, defaulting to day", code, err)
		return false
	}
	return night
}

func (c *LandingClassifier) nightCheck(t time.Time, code string) (bool, error) {
	info, ok := c.airports.Resolve(code)
	if !ok {
		return false, fmt.Errorf("unknown airport %q", code)
	}
	year, month, day, err := solar.LocalDate(t, info.Timezone)
	if err != nil {
		return false, err
	}
	st := c.sun.ForDate(info.Code, info.Lat, info.Lon, year, month, day)
	if !st.OK {
		return false, fmt.Errorf("no sunrise/sunset at %s on %04d-%02d-%02d", info.Code, year, month, day)
	}
	return !t.Before(st.Sunset.Add(civilTwilight)) || !t.After(st.Sunrise), nil
}

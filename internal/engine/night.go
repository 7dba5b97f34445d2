package engine

import (
	"math"
	"time"

	"logbook-formatter/internal/airport"
	"logbook-formatter/internal/solar"
)

const (
	// Flights whose endpoints are separated by more than this many hours
	// of UTC offset get the sampled route calculation; anything shorter is
	// adequately approximated by the destination's sun times alone. A
	// long-haul path can cross the day/night boundary more than once,
	// which the single-airport rule cannot see.
	tzBranchThresholdHours = 4.0

	sampleStep        = 10 * time.Minute
	sampleStepMinutes = 10
)

// NightEstimator estimates night flying hours for a flight.
type NightEstimator struct {
	airports *airport.Directory
	tzdiff   *solar.TZDiff
	sun      *solar.Calculator
	parser   *TimeParser
}

func NewNightEstimator(airports *airport.Directory, tzdiff *solar.TZDiff, sun *solar.Calculator, parser *TimeParser) *NightEstimator {
	return &NightEstimator{airports: airports, tzdiff: tzdiff, sun: sun, parser: parser}
}

// Estimate returns the night hours for one flight, rounded to one decimal
// and clamped to the flight hours. An unresolvable airport, timezone, or sun
// position yields zero night time and a warning, never an error.
func (e *NightEstimator) Estimate(f FlightRecord, warn Warnf) NightTimeResult {
	origin, ok := e.airports.Resolve(f.Origin)
	if !ok {
		warn("unknown origin airport %q, assuming no night time", f.Origin)
		return NightTimeResult{}
	}
	dest, ok := e.airports.Resolve(f.Destination)
	if !ok {
		warn("unknown destination airport %q, assuming no night time", f.Destination)
		return NightTimeResult{}
	}

	tzDiff, err := e.tzdiff.DiffHours(origin.Timezone, dest.Timezone)
	if err != nil {
		warn("timezone difference %s/%s: %v", origin.Timezone, dest.Timezone, err)
		return NightTimeResult{}
	}

	offTime := e.parser.Parse(f.Date, f.OffTime, warn)
	onTime := e.parser.Parse(f.Date, f.OnTime, warn)
	fltHours := f.FlightHours

	if tzDiff <= tzBranchThresholdHours {
		return e.estimateByDestination(f, dest, offTime, onTime, fltHours, warn)
	}
	return e.estimateSampled(origin, dest, offTime, onTime, fltHours, warn)
}

// estimateByDestination applies the coarse rule: the whole flight is night,
// half night, or all day depending on where the destination's sunrise and
// sunset fall relative to the off/on window.
func (e *NightEstimator) estimateByDestination(f FlightRecord, dest airport.Info, offTime, onTime time.Time, fltHours float64, warn Warnf) NightTimeResult {
	date, err := e.parser.ParseDate(f.Date)
	if err != nil {
		warn("could not parse flight date %q: %v", f.Date, err)
		return NightTimeResult{}
	}
	st := e.sun.ForDate(dest.Code, dest.Lat, dest.Lon, date.Year(), date.Month(), date.Day())
	if !st.OK {
		warn("no sunrise/sunset at %s on %s, assuming no night time", dest.Code, f.Date)
		return NightTimeResult{}
	}

	switch {
	case !offTime.Before(st.Sunset) || !onTime.After(st.Sunrise):
		// Airborne entirely after sunset or entirely before sunrise.
		return NightTimeResult{NightHours: round1(fltHours)}
	case (offTime.Before(st.Sunset) && st.Sunset.Before(onTime)) ||
		(offTime.Before(st.Sunrise) && st.Sunrise.Before(onTime)):
		// One day/night boundary crossed in flight.
		return NightTimeResult{NightHours: round1(fltHours * 0.5)}
	default:
		return NightTimeResult{}
	}
}

// estimateSampled walks the flight in fixed steps, linearly interpolating
// position between the endpoints, and credits each step whose instant falls
// outside that day's sunrise/sunset at the interpolated point. Samples whose
// sun position cannot be computed are skipped, not fatal.
func (e *NightEstimator) estimateSampled(origin, dest airport.Info, offTime, onTime time.Time, fltHours float64, warn Warnf) NightTimeResult {
	if !onTime.After(offTime) {
		return NightTimeResult{}
	}
	total := onTime.Sub(offTime).Seconds()
	nightMinutes := 0

	for cur := offTime; cur.Before(onTime); cur = cur.Add(sampleStep) {
		frac := cur.Sub(offTime).Seconds() / total
		lat := origin.Lat + frac*(dest.Lat-origin.Lat)
		lon := origin.Lon + frac*(dest.Lon-origin.Lon)

		year, month, day, err := solar.LocalDate(cur, dest.Timezone)
		if err != nil {
			warn("sun position at lat=%.4f lon=%.4f: %v", lat, lon, err)
			continue
		}
		st := e.sun.ForDate("", lat, lon, year, month, day)
		if !st.OK {
			warn("no sunrise/sunset at lat=%.4f lon=%.4f on %04d-%02d-%02d", lat, lon, year, month, day)
			continue
		}
		if cur.Before(st.Sunrise) || cur.After(st.Sunset) {
			nightMinutes += sampleStepMinutes
		}
	}

	night := round1(float64(nightMinutes) / 60.0)
	if night > fltHours {
		night = fltHours
	}
	return NightTimeResult{NightHours: night}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Package engine derives logbook facts from raw flight-log rows: night
// flying hours, day/night landing and takeoff counts, and crew time split by
// seat role. It is the computational core; file formats and transports live
// elsewhere.
package engine

import "errors"

// FlightRecord is one raw logbook row. Clock fields stay as strings until
// parsed; Extra carries columns the engine does not touch so the output
// formats can pass them through.
type FlightRecord struct {
	Date         string // DEPT_DATE
	Origin       string // ORG
	Destination  string // DEST
	OutTime      string // OUT
	OffTime      string // OFF
	OnTime       string // ON
	InTime       string // IN
	FlightHours  float64
	BlockHours   float64
	LandingDone  bool
	FlightNumber string
	Tail         string
	Extra        map[string]string
}

// NightTimeResult is the estimated night flying time for one flight,
// rounded to one decimal and never exceeding the flight hours.
type NightTimeResult struct {
	NightHours float64
}

// LandingClassification credits at most one landing and one takeoff per
// flight, each classified as day or night.
type LandingClassification struct {
	DayLandings   int
	NightLandings int
	DayTakeoffs   int
	NightTakeoffs int
}

// Approaches reports the instrument-approach count: one per credited
// landing.
func (l LandingClassification) Approaches() int {
	return l.DayLandings + l.NightLandings
}

// CrewTimeResult is the per-role time breakdown for one flight.
type CrewTimeResult struct {
	PICTime      float64
	SICTime      float64
	Duration     float64
	CrossCountry float64
}

// Role identifies the crew seat used for time apportionment.
type Role string

const (
	RoleCaptain            Role = "captain"
	RoleFirstOfficer       Role = "first_officer"
	RoleReliefFirstOfficer Role = "relief_first_officer"
	RoleReliefCaptain      Role = "relief_captain"

	// RoleAuto resolves to the Operating-Experience role per flight,
	// falling back to captain.
	RoleAuto Role = "auto"
)

type roleShare struct {
	pic      float64
	sic      float64
	duration float64
}

var roleShares = map[Role]roleShare{
	RoleCaptain:            {pic: 1.0, sic: 0.0, duration: 1.0},
	RoleFirstOfficer:       {pic: 0.0, sic: 1.0, duration: 1.0},
	RoleReliefFirstOfficer: {pic: 0.0, sic: 0.5, duration: 0.5},
	RoleReliefCaptain:      {pic: 0.5, sic: 0.0, duration: 0.5},
}

// Override carries per-flight Operating-Experience data: the seat the crew
// member actually occupied and, when recorded, authoritative PIC/SIC hours
// that replace the computed split.
type Override struct {
	Role    Role
	PICTime *float64
	SICTime *float64
}

// Warnf is the diagnostics sink for recoverable row-level defects. The
// processor collects warnings into the batch report; fallbacks never abort
// a row.
type Warnf func(format string, args ...any)

var (
	// ErrInvalidRole aborts a batch: an unrecognized role is a caller
	// configuration error, not data noise.
	ErrInvalidRole = errors.New("invalid crew role")

	// ErrNoRows aborts a batch that produced zero processable rows.
	ErrNoRows = errors.New("no valid flight data could be processed")
)

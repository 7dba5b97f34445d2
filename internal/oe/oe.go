// Package oe loads Operating-Experience data: which seat a crew member
// actually occupied on a flight and any authoritative PIC/SIC hour
// overrides. The set is loaded once per batch run and read-only afterwards.
package oe

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"logbook-formatter/internal/engine"
)

// KeyScheme selects how override rows are matched to flight rows. The FAA
// export keys by flight number alone; logbook.aero keys by flight number
// plus origin, destination, and date. Both exist in the wild, so both are
// supported.
type KeyScheme int

const (
	KeyFlightNumber KeyScheme = iota
	KeyComposite
)

// Set is the per-batch override lookup.
type Set struct {
	scheme KeyScheme
	data   map[string]engine.Override
}

// Load parses an OE CSV. Rows need a FLIGHT column; SEAT (or ROLE) decides
// the crew role, and the role-specific hour columns supply overrides. Zero
// or negative hours mean "no override recorded".
func Load(r io.Reader, scheme KeyScheme) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read OE header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	if _, ok := col["FLIGHT"]; !ok {
		return nil, fmt.Errorf("OE data must have a FLIGHT column")
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	set := &Set{scheme: scheme, data: make(map[string]engine.Override)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read OE row: %w", err)
		}

		ov := decodeOverride(rec, col, field)

		var key string
		switch scheme {
		case KeyComposite:
			key = compositeKey(
				field(rec, "FLIGHT"),
				field(rec, "ORG"),
				field(rec, "DEST"),
				normalizeOEDate(field(rec, "FLT_DT")),
			)
		default:
			key = padFlight(field(rec, "FLIGHT"))
		}
		set.data[key] = ov
	}

	if len(set.data) > 0 {
		log.Printf("loaded OE data for %d flights", len(set.data))
	}
	return set, nil
}

// decodeOverride maps a SEAT (or ROLE) value to a crew role and picks up
// that role's override hours. Captains log PIC only, first officers SIC
// only; relief seats use their own OE columns.
func decodeOverride(rec []string, col map[string]int, field func([]string, string) string) engine.Override {
	ov := engine.Override{Role: engine.RoleCaptain}

	if _, hasSeat := col["SEAT"]; hasSeat {
		switch strings.ToUpper(field(rec, "SEAT")) {
		case "CAPT", "CPT", "CAPTAIN":
			ov.Role = engine.RoleCaptain
			if _, ok := col["PIC_OE"]; ok {
				ov.PICTime = positiveHours(field(rec, "PIC_OE"))
				ov.SICTime = zeroHours()
			}
		case "FO", "F/O", "FIRST OFFICER":
			ov.Role = engine.RoleFirstOfficer
			if _, ok := col["SIC_OE"]; ok {
				ov.SICTime = positiveHours(field(rec, "SIC_OE"))
				ov.PICTime = zeroHours()
			}
		case "RFO", "RF/O", "R/FO", "RELIEF FIRST OFFICER":
			ov.Role = engine.RoleReliefFirstOfficer
			ov.PICTime = zeroHours()
			if _, ok := col["SIC_RFO_OE"]; ok {
				ov.SICTime = positiveHours(field(rec, "SIC_RFO_OE"))
			}
		case "RF2", "RC", "RELIEF CAPTAIN":
			ov.Role = engine.RoleReliefCaptain
			ov.SICTime = zeroHours()
			if _, ok := col["PIC_RFO_OE"]; ok {
				ov.PICTime = positiveHours(field(rec, "PIC_RFO_OE"))
			}
		}
	} else if _, hasRole := col["ROLE"]; hasRole {
		switch strings.ToUpper(field(rec, "ROLE")) {
		case "PIC":
			ov.Role = engine.RoleCaptain
			ov.PICTime = hours(field(rec, "PIC_OE"))
			ov.SICTime = zeroHours()
		case "SIC":
			ov.Role = engine.RoleFirstOfficer
			ov.SICTime = hours(field(rec, "SIC_OE"))
			ov.PICTime = zeroHours()
		}
	}

	// Fall back to the plain PIC/SIC columns when the seat-specific ones
	// produced nothing.
	if ov.PICTime == nil && ov.SICTime == nil {
		if _, ok := col["PIC_OE"]; ok && ov.Role == engine.RoleCaptain {
			if t := positiveHours(field(rec, "PIC_OE")); t != nil {
				ov.PICTime = t
				ov.SICTime = zeroHours()
			}
		}
		if _, ok := col["SIC_OE"]; ok && ov.Role == engine.RoleFirstOfficer {
			if t := positiveHours(field(rec, "SIC_OE")); t != nil {
				ov.SICTime = t
				ov.PICTime = zeroHours()
			}
		}
	}

	return ov
}

// Lookup returns the override for a flight row, or nil when none matches.
func (s *Set) Lookup(f engine.FlightRecord) *engine.Override {
	if s == nil {
		return nil
	}
	var key string
	switch s.scheme {
	case KeyComposite:
		key = compositeKey(f.FlightNumber, f.Origin, f.Destination, normalizeFlightDate(f.Date))
	default:
		key = padFlight(f.FlightNumber)
	}
	if ov, ok := s.data[key]; ok {
		return &ov
	}
	return nil
}

// Len reports the number of loaded override rows.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// padFlight zero-pads flight numbers to four digits so "83" and "0083"
// match.
func padFlight(flight string) string {
	flight = strings.TrimSpace(flight)
	for len(flight) < 4 {
		flight = "0" + flight
	}
	return flight
}

func compositeKey(flight, origin, dest, date string) string {
	return fmt.Sprintf("%s_%s_%s_%s",
		padFlight(flight),
		strings.ToUpper(strings.TrimSpace(origin)),
		strings.ToUpper(strings.TrimSpace(dest)),
		strings.TrimSpace(date))
}

// normalizeOEDate converts the OE file's DDMMMYYYY dates (02DEC2025) to
// YYYY-MM-DD. Unparseable values pass through unchanged so a mismatched key
// simply fails to match.
func normalizeOEDate(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 9 {
		return s
	}
	titled := s[:2] + s[2:3] + strings.ToLower(s[3:5]) + s[5:]
	t, err := time.Parse("02Jan2006", titled)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// normalizeFlightDate converts a flight row date to YYYY-MM-DD for the
// composite key, accepting the same layouts the logbook.aero path accepts.
func normalizeFlightDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "01/02/2006", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func hours(s string) *float64 {
	v := engine.SafeFloat(s)
	return &v
}

func positiveHours(s string) *float64 {
	v := engine.SafeFloat(s)
	if v <= 0 {
		return nil
	}
	return &v
}

func zeroHours() *float64 {
	v := 0.0
	return &v
}

package logbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"logbook-formatter/internal/engine"
)

// Format selects the output layout.
type Format string

const (
	FormatFAA  Format = "faa"
	FormatAero Format = "aero"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatFAA:
		return FormatFAA, nil
	case FormatAero:
		return FormatAero, nil
	}
	return "", fmt.Errorf("unknown output format %q (want faa or aero)", s)
}

var faaColumns = []string{
	"Date", "Aircraft Type", "Aircraft Ident.",
	"Route From", "Route To",
	"Out", "Off", "On", "In",
	"Duration", "Block", "PIC", "SIC", "Cross Country", "Night", "Actual Instrument",
	"Day Landings", "Night Landings", "Approaches",
}

var aeroColumns = []string{
	"Date",
	"Departure_Airfield",
	"Arrival_Airfield",
	"Route",
	"Departure_Time",
	"Arrival_Time",
	"Aircraft_Type",
	"Aircraft_Registration",
	"Total_Time",
	"MultiPilot_Time",
	"PIC_Name",
	"SIC_Name",
	"Takeoff_Day",
	"Takeoff_Night",
	"Landing_Day",
	"Landing_Night",
	"Night_Time",
	"IFR_Time",
	"PIC_Time",
	"CoPilot_Time",
	"XC_Time",
	"Instrument_Approach",
}

// Write renders processed rows in the chosen format. pilotName fills the
// PIC_Name/SIC_Name columns of the logbook.aero layout for the seat the
// crew member occupied.
func Write(w io.Writer, format Format, rows []engine.RowResult, pilotName string) error {
	switch format {
	case FormatAero:
		return writeAero(w, rows, pilotName)
	default:
		return writeFAA(w, rows)
	}
}

func writeFAA(w io.Writer, rows []engine.RowResult) error {
	cw := csv.NewWriter(w)

	// Columns the engine does not know about ride along after the standard
	// set, in a stable order.
	extras := extraColumns(rows)
	header := append(append([]string{}, faaColumns...), extras...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		f := row.Flight
		rec := []string{
			f.Date,
			f.Extra["EQUIP"],
			FormatTail(f.Tail),
			f.Origin,
			f.Destination,
			f.OutTime,
			f.OffTime,
			f.OnTime,
			f.InTime,
			ff1(f.FlightHours),
			ff1(f.BlockHours),
			ff1(row.Crew.PICTime),
			ff1(row.Crew.SICTime),
			ff1(row.Crew.CrossCountry),
			ff1(row.Night.NightHours),
			ff1(row.ActualInstrument),
			strconv.Itoa(row.Landings.DayLandings),
			strconv.Itoa(row.Landings.NightLandings),
			faaApproaches(f),
		}
		for _, name := range extras {
			rec = append(rec, f.Extra[name])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeAero(w io.Writer, rows []engine.RowResult, pilotName string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(aeroColumns); err != nil {
		return err
	}

	for _, row := range rows {
		f := row.Flight
		block := f.BlockHours
		// Night and IFR time cannot exceed the total (block) time in this
		// layout.
		night := math.Min(row.Night.NightHours, block)
		ifr := math.Min(row.ActualInstrument, block)

		picName, sicName := "", ""
		switch row.Role {
		case engine.RoleCaptain, engine.RoleReliefCaptain:
			picName = pilotName
		case engine.RoleFirstOfficer, engine.RoleReliefFirstOfficer:
			sicName = pilotName
		}

		rec := []string{
			FormatDateISO(f.Date),
			f.Origin,
			f.Destination,
			f.Origin + "-" + f.Destination,
			FormatTimeHHMM(f.OutTime),
			FormatTimeHHMM(f.InTime),
			f.Extra["EQUIP"],
			FormatTail(f.Tail),
			ff1(block),
			ff1(block),
			picName,
			sicName,
			strconv.Itoa(row.Landings.DayTakeoffs),
			strconv.Itoa(row.Landings.NightTakeoffs),
			strconv.Itoa(row.Landings.DayLandings),
			strconv.Itoa(row.Landings.NightLandings),
			ff1(night),
			ff1(ifr),
			ff1(row.Crew.PICTime),
			ff1(row.Crew.SICTime),
			ff1(row.Crew.CrossCountry),
			strconv.Itoa(row.Landings.Approaches()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func extraColumns(rows []engine.RowResult) []string {
	seen := map[string]bool{"EQUIP": true} // consumed as Aircraft Type
	var names []string
	for _, row := range rows {
		for name := range row.Flight.Extra {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// faaApproaches renders the FAA approaches field: "1;DEST" when the crew
// member performed the landing, empty otherwise.
func faaApproaches(f engine.FlightRecord) string {
	if !f.LandingDone {
		return ""
	}
	return "1;" + f.Destination
}

// FormatTail turns a bare numeric tail into a registration (115 -> N115FE);
// anything else passes through.
func FormatTail(tail string) string {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return tail
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return tail
		}
	}
	return "N" + tail + "FE"
}

// FormatDateISO normalizes a date to YYYY-MM-DD, accepting the flexible
// input layouts. Unparseable dates pass through.
func FormatDateISO(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range engine.DateLayoutsFlexible {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// FormatTimeHHMM normalizes a clock value to zero-padded HH:MM. Placeholder
// values become empty, anything unrecognized passes through.
func FormatTimeHHMM(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return s
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// OutputFilename derives a default output path from the input filename, the
// format, and the run date.
func OutputFilename(format Format, inputPath string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	date := now.Format("2006-01-02")
	if format == FormatAero {
		return fmt.Sprintf("Logbook_Aero_%s_%s.csv", base, date)
	}
	return fmt.Sprintf("FAA_%s_%s.csv", base, date)
}

// ff1 formats a float rounded to one decimal, the precision both layouts
// publish.
func ff1(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

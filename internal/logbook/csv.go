// Package logbook reads raw flight extracts and writes the two supported
// logbook formats (FAA and logbook.aero) from engine results.
package logbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"logbook-formatter/internal/engine"
)

// engineColumns are the raw columns consumed into the typed record and
// remapped on output; anything else is passed through untouched. FLIGHT and
// LANDING are consumed too but stay in the pass-through set so the FAA
// output echoes them like the rest of the upstream extract.
var engineColumns = map[string]bool{
	"DEPT_DATE": true, "ORG": true, "DEST": true,
	"OUT": true, "OFF": true, "ON": true, "IN": true,
	"FLT_HRS": true, "BLK_HRS": true, "TAIL": true,
}

// ReadFlights parses a raw flight extract into engine records. Unrecognized
// columns land in the Extra bag and reappear in FAA output.
func ReadFlights(r io.Reader) ([]engine.FlightRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read flights header: %w", err)
	}
	names := make([]string, len(header))
	col := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(h))
		names[i] = name
		col[name] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var flights []engine.FlightRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read flights row: %w", err)
		}

		f := engine.FlightRecord{
			Date:         field(rec, "DEPT_DATE"),
			Origin:       strings.ToUpper(field(rec, "ORG")),
			Destination:  strings.ToUpper(field(rec, "DEST")),
			OutTime:      field(rec, "OUT"),
			OffTime:      field(rec, "OFF"),
			OnTime:       field(rec, "ON"),
			InTime:       field(rec, "IN"),
			FlightHours:  engine.SafeFloat(field(rec, "FLT_HRS")),
			BlockHours:   engine.SafeFloat(field(rec, "BLK_HRS")),
			LandingDone:  field(rec, "LANDING") == "1",
			FlightNumber: field(rec, "FLIGHT"),
			Tail:         field(rec, "TAIL"),
			Extra:        map[string]string{},
		}
		for i, name := range names {
			if engineColumns[name] || i >= len(rec) {
				continue
			}
			f.Extra[name] = rec[i]
		}
		flights = append(flights, f)
	}
	return flights, nil
}

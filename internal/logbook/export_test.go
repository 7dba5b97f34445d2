package logbook

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbook-formatter/internal/engine"
)

func sampleRow() engine.RowResult {
	return engine.RowResult{
		Flight: engine.FlightRecord{
			Date:         "01/15/2024",
			Origin:       "JFK",
			Destination:  "BOS",
			OutTime:      "0:45",
			OffTime:      "01:00",
			OnTime:       "02:00",
			InTime:       "02:10",
			FlightHours:  1.0,
			BlockHours:   1.4,
			LandingDone:  true,
			FlightNumber: "0083",
			Tail:         "115",
			Extra: map[string]string{
				"EQUIP": "B767", "REMARKS": "training leg",
				"FLIGHT": "0083", "LANDING": "1",
			},
		},
		Role:             engine.RoleCaptain,
		Night:            engine.NightTimeResult{NightHours: 1.0},
		Landings:         engine.LandingClassification{NightLandings: 1, NightTakeoffs: 1},
		Crew:             engine.CrewTimeResult{PICTime: 1.4, Duration: 1.0, CrossCountry: 1.4},
		ActualInstrument: 0.5,
	}
}

func parseCSV(t *testing.T, buf *bytes.Buffer) ([]string, [][]string) {
	t.Helper()
	recs, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	return recs[0], recs[1:]
}

func TestWriteFAA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatFAA, []engine.RowResult{sampleRow()}, "SELF"))

	header, rows := parseCSV(t, &buf)
	// Standard columns first, then pass-through extras in sorted order;
	// EQUIP is consumed as the aircraft type.
	assert.Equal(t, append(append([]string{}, faaColumns...), "FLIGHT", "LANDING", "REMARKS"), header)
	require.Len(t, rows, 1)

	row := rows[0]
	byName := map[string]string{}
	for i, name := range header {
		byName[name] = row[i]
	}
	assert.Equal(t, "01/15/2024", byName["Date"])
	assert.Equal(t, "B767", byName["Aircraft Type"])
	assert.Equal(t, "N115FE", byName["Aircraft Ident."])
	assert.Equal(t, "JFK", byName["Route From"])
	assert.Equal(t, "BOS", byName["Route To"])
	assert.Equal(t, "1.0", byName["Duration"])
	assert.Equal(t, "1.4", byName["Block"])
	assert.Equal(t, "1.4", byName["PIC"])
	assert.Equal(t, "0.0", byName["SIC"])
	assert.Equal(t, "1.0", byName["Night"])
	assert.Equal(t, "0.5", byName["Actual Instrument"])
	assert.Equal(t, "0", byName["Day Landings"])
	assert.Equal(t, "1", byName["Night Landings"])
	assert.Equal(t, "1;BOS", byName["Approaches"])
	assert.Equal(t, "training leg", byName["REMARKS"])
	assert.Equal(t, "0083", byName["FLIGHT"])
	assert.Equal(t, "1", byName["LANDING"])
}

func TestWriteFAANoLanding(t *testing.T) {
	row := sampleRow()
	row.Flight.LandingDone = false
	row.Landings = engine.LandingClassification{}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatFAA, []engine.RowResult{row}, ""))

	header, rows := parseCSV(t, &buf)
	require.Len(t, rows, 1)
	byName := map[string]string{}
	for i, name := range header {
		byName[name] = rows[0][i]
	}
	assert.Empty(t, byName["Approaches"])
}

func TestWriteAero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatAero, []engine.RowResult{sampleRow()}, "J DOE"))

	header, rows := parseCSV(t, &buf)
	assert.Equal(t, aeroColumns, header)
	require.Len(t, rows, 1)

	byName := map[string]string{}
	for i, name := range header {
		byName[name] = rows[0][i]
	}
	assert.Equal(t, "2024-01-15", byName["Date"])
	assert.Equal(t, "JFK-BOS", byName["Route"])
	assert.Equal(t, "00:45", byName["Departure_Time"])
	assert.Equal(t, "02:10", byName["Arrival_Time"])
	assert.Equal(t, "N115FE", byName["Aircraft_Registration"])
	assert.Equal(t, "1.4", byName["Total_Time"])
	assert.Equal(t, "J DOE", byName["PIC_Name"])
	assert.Empty(t, byName["SIC_Name"])
	assert.Equal(t, "1", byName["Landing_Night"])
	assert.Equal(t, "1", byName["Takeoff_Night"])
	assert.Equal(t, "1.0", byName["Night_Time"])
	assert.Equal(t, "1", byName["Instrument_Approach"])
}

func TestWriteAeroCapsNightToBlock(t *testing.T) {
	row := sampleRow()
	row.Night.NightHours = 2.0
	row.Flight.BlockHours = 1.4
	row.Role = engine.RoleFirstOfficer

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatAero, []engine.RowResult{row}, "J DOE"))

	header, rows := parseCSV(t, &buf)
	byName := map[string]string{}
	for i, name := range header {
		byName[name] = rows[0][i]
	}
	assert.Equal(t, "1.4", byName["Night_Time"])
	assert.Equal(t, "J DOE", byName["SIC_Name"])
	assert.Empty(t, byName["PIC_Name"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("FAA")
	require.NoError(t, err)
	assert.Equal(t, FormatFAA, f)

	f, err = ParseFormat(" aero ")
	require.NoError(t, err)
	assert.Equal(t, FormatAero, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormatTail(t *testing.T) {
	assert.Equal(t, "N115FE", FormatTail("115"))
	assert.Equal(t, "N115FE", FormatTail(" 115 "))
	assert.Equal(t, "N7000", FormatTail("N7000"))
	assert.Equal(t, "", FormatTail(""))
}

func TestFormatDateISO(t *testing.T) {
	assert.Equal(t, "2024-01-15", FormatDateISO("01/15/2024"))
	assert.Equal(t, "2024-01-15", FormatDateISO("2024-01-15"))
	assert.Equal(t, "junk", FormatDateISO("junk"))
}

func TestFormatTimeHHMM(t *testing.T) {
	assert.Equal(t, "06:05", FormatTimeHHMM("6:5"))
	assert.Equal(t, "14:30", FormatTimeHHMM("14:30"))
	assert.Equal(t, "", FormatTimeHHMM("."))
	assert.Equal(t, "", FormatTimeHHMM(""))
	assert.Equal(t, "junk", FormatTimeHHMM("junk"))
}

func TestOutputFilename(t *testing.T) {
	now := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "FAA_flights_2024-01-15.csv", OutputFilename(FormatFAA, "/data/flights.csv", now))
	assert.Equal(t, "Logbook_Aero_flights_2024-01-15.csv", OutputFilename(FormatAero, "flights.csv", now))
}

package logbook

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbook-formatter/internal/airport"
	"logbook-formatter/internal/engine"
	"logbook-formatter/internal/solar"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	dir, err := airport.LoadEmbedded()
	require.NoError(t, err)
	nowFn := func() time.Time {
		return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	}
	tzdiff, err := solar.NewTZDiff(64, nowFn)
	require.NoError(t, err)
	sun, err := solar.NewCalculator(128)
	require.NoError(t, err)
	parser := engine.NewTimeParser(engine.DateLayoutsFAA, nowFn)

	return &Runner{
		Processor: &engine.Processor{
			Night:    engine.NewNightEstimator(dir, tzdiff, sun, parser),
			Landings: engine.NewLandingClassifier(dir, sun, parser),
			Workers:  2,
		},
		PilotName: "SELF",
	}
}

func TestRunWithOverrides(t *testing.T) {
	r := newTestRunner(t)
	oeData := "FLIGHT,SEAT\n83,FO\n"

	var out bytes.Buffer
	report, err := r.Run(context.Background(), FormatFAA, engine.RoleAuto,
		strings.NewReader(sampleFlights), strings.NewReader(oeData), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Zero(t, report.Skipped)

	header, rows := parseCSV(t, &out)
	require.Len(t, rows, 2)
	byName := func(row []string) map[string]string {
		m := map[string]string{}
		for i, name := range header {
			m[name] = row[i]
		}
		return m
	}

	// Flight 83 matched the OE data and becomes a first-officer leg; flight
	// 84 has no override and falls back to captain.
	first := byName(rows[0])
	assert.Equal(t, "0.0", first["PIC"])
	assert.Equal(t, "1.4", first["SIC"])

	second := byName(rows[1])
	assert.Equal(t, "1.5", second["PIC"])
	assert.Equal(t, "0.0", second["SIC"])
}

func TestRunAutoWithoutOEFallsBackToCaptain(t *testing.T) {
	r := newTestRunner(t)

	var out bytes.Buffer
	report, err := r.Run(context.Background(), FormatFAA, engine.RoleAuto,
		strings.NewReader(sampleFlights), nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)

	header, rows := parseCSV(t, &out)
	byName := map[string]string{}
	for i, name := range header {
		byName[name] = rows[0][i]
	}
	assert.Equal(t, "1.4", byName["PIC"])
}

func TestRunBadOEDataDegrades(t *testing.T) {
	r := newTestRunner(t)

	// No FLIGHT column: the OE file is unusable, the batch still runs.
	var out bytes.Buffer
	report, err := r.Run(context.Background(), FormatFAA, engine.RoleCaptain,
		strings.NewReader(sampleFlights), strings.NewReader("SEAT\nCAPT\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
}

func TestRunEmptyBatch(t *testing.T) {
	r := newTestRunner(t)

	var out bytes.Buffer
	_, err := r.Run(context.Background(), FormatFAA, engine.RoleCaptain,
		strings.NewReader("FLIGHT,DEPT_DATE,ORG,DEST\n"), nil, &out)
	assert.ErrorIs(t, err, engine.ErrNoRows)
	assert.Zero(t, out.Len())
}

func TestRunAeroFormat(t *testing.T) {
	r := newTestRunner(t)

	var out bytes.Buffer
	_, err := r.Run(context.Background(), FormatAero, engine.RoleCaptain,
		strings.NewReader(sampleFlights), nil, &out)
	require.NoError(t, err)

	header, rows := parseCSV(t, &out)
	assert.Equal(t, aeroColumns, header)
	require.Len(t, rows, 2)
	byName := map[string]string{}
	for i, name := range header {
		byName[name] = rows[0][i]
	}
	assert.Equal(t, "2024-01-15", byName["Date"])
	assert.Equal(t, "SELF", byName["PIC_Name"])
}

// Package airport resolves IATA codes to geographic and timezone metadata.
// The primary dataset is an embedded CSV extract; codes missing from it are
// looked up in a small fallback table before being reported as unknown.
package airport

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed airports.csv
var airportCSV []byte

// Info holds the metadata the engine needs for one airport.
type Info struct {
	Code     string
	Name     string
	Timezone string
	Lat      float64
	Lon      float64
}

// fallbackAirports covers codes absent from the primary dataset.
var fallbackAirports = map[string]Info{
	"CAN": {Code: "CAN", Name: "Guangzhou", Timezone: "Asia/Shanghai", Lat: 23.3924, Lon: 113.2988},
	"BKK": {Code: "BKK", Name: "Bangkok", Timezone: "Asia/Bangkok", Lat: 13.6900, Lon: 100.7501},
	"PEN": {Code: "PEN", Name: "Penang", Timezone: "Asia/Kuala_Lumpur", Lat: 5.2976, Lon: 100.2760},
	"TPE": {Code: "TPE", Name: "Taipei", Timezone: "Asia/Taipei", Lat: 25.0777, Lon: 121.2330},
	"KIX": {Code: "KIX", Name: "Osaka", Timezone: "Asia/Tokyo", Lat: 34.4347, Lon: 135.2440},
}

// Directory is an immutable code -> Info lookup. Safe for concurrent use
// after construction.
type Directory struct {
	primary map[string]Info
}

// NewDirectory builds a directory over the given primary dataset. Entries
// missing a timezone or coordinates are dropped so that lookups fall through
// to the fallback table.
func NewDirectory(primary map[string]Info) *Directory {
	m := make(map[string]Info, len(primary))
	for code, info := range primary {
		if info.Timezone == "" || (info.Lat == 0 && info.Lon == 0) {
			continue
		}
		info.Code = code
		m[code] = info
	}
	return &Directory{primary: m}
}

// LoadEmbedded parses the embedded airport extract into a Directory.
func LoadEmbedded() (*Directory, error) {
	primary, err := parseCSV(bytes.NewReader(airportCSV))
	if err != nil {
		return nil, fmt.Errorf("parse embedded airports: %w", err)
	}
	return NewDirectory(primary), nil
}

func parseCSV(r io.Reader) (map[string]Info, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"iata", "name", "tz", "lat", "lon"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	m := make(map[string]Info)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		code := strings.ToUpper(strings.TrimSpace(rec[col["iata"]]))
		if code == "" {
			continue
		}
		lat, err := strconv.ParseFloat(rec[col["lat"]], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(rec[col["lon"]], 64)
		if err != nil {
			continue
		}
		m[code] = Info{
			Code:     code,
			Name:     rec[col["name"]],
			Timezone: rec[col["tz"]],
			Lat:      lat,
			Lon:      lon,
		}
	}
	return m, nil
}

// Resolve looks up an airport code, consulting the fallback table when the
// primary dataset has no usable entry. The second return is false when the
// code is unknown; callers treat that as "cannot classify", never as an
// error.
func (d *Directory) Resolve(code string) (Info, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if info, ok := d.primary[code]; ok {
		return info, true
	}
	if info, ok := fallbackAirports[code]; ok {
		return info, true
	}
	return Info{}, false
}

// Len reports the number of airports in the primary dataset.
func (d *Directory) Len() int { return len(d.primary) }

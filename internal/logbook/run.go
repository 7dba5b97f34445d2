package logbook

import (
	"context"
	"fmt"
	"io"
	"log"

	"logbook-formatter/internal/engine"
	"logbook-formatter/internal/oe"
	"logbook-formatter/internal/publisher"
)

// Runner wires the engine to the file formats: read raw rows, optionally
// attach Operating-Experience overrides, process, write. Both the CLI and
// the upload server run batches through it.
type Runner struct {
	Processor *engine.Processor
	Publisher *publisher.NATSPublisher
	PilotName string
}

// Run processes one batch. oeData may be nil. The returned report counts
// processed and skipped rows; errors mean no output was produced at all.
func (r *Runner) Run(ctx context.Context, format Format, defaultRole engine.Role, flights io.Reader, oeData io.Reader, out io.Writer) (engine.Report, error) {
	records, err := ReadFlights(flights)
	if err != nil {
		return engine.Report{}, fmt.Errorf("read flight data: %w", err)
	}

	var overrides func(engine.FlightRecord) *engine.Override
	if oeData != nil {
		scheme := oe.KeyFlightNumber
		if format == FormatAero {
			scheme = oe.KeyComposite
		}
		set, err := oe.Load(oeData, scheme)
		if err != nil {
			// OE data is an optional enrichment; a bad file degrades to
			// none rather than failing the batch.
			log.Printf("error loading OE data: %v", err)
		} else if set.Len() > 0 {
			overrides = set.Lookup
		}
	}
	if defaultRole == engine.RoleAuto && overrides == nil {
		log.Printf("no OE data loaded, falling back from auto to captain")
		defaultRole = engine.RoleCaptain
	}

	results, report, err := r.Processor.Process(ctx, records, defaultRole, overrides)
	if err != nil {
		return report, err
	}

	if err := Write(out, format, results, r.PilotName); err != nil {
		return report, fmt.Errorf("write output: %w", err)
	}

	if r.Publisher != nil {
		for _, row := range results {
			msg := publisher.EntryMessage{
				FlightNumber:  row.Flight.FlightNumber,
				Date:          FormatDateISO(row.Flight.Date),
				Origin:        row.Flight.Origin,
				Destination:   row.Flight.Destination,
				Tail:          FormatTail(row.Flight.Tail),
				Role:          string(row.Role),
				NightHours:    row.Night.NightHours,
				PICTime:       row.Crew.PICTime,
				SICTime:       row.Crew.SICTime,
				CrossCountry:  row.Crew.CrossCountry,
				DayLandings:   row.Landings.DayLandings,
				NightLandings: row.Landings.NightLandings,
				DayTakeoffs:   row.Landings.DayTakeoffs,
				NightTakeoffs: row.Landings.NightTakeoffs,
				Approaches:    row.Landings.Approaches(),
			}
			if err := r.Publisher.PublishEntry(msg); err != nil {
				log.Printf("publish error for flight %s: %v", row.Flight.FlightNumber, err)
			}
		}
	}

	return report, nil
}

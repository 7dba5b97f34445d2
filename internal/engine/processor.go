package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"logbook-formatter/internal/metrics"
)

// RowResult is the derived output for one processed flight.
type RowResult struct {
	Flight           FlightRecord
	Role             Role
	Night            NightTimeResult
	Landings         LandingClassification
	Crew             CrewTimeResult
	ActualInstrument float64
	Warnings         []string
}

// Report summarizes a batch run. Rows that could not produce any usable
// output are skipped and counted here, separately from processed rows.
type Report struct {
	Processed int
	Skipped   int
	Warnings  int
}

// Processor runs the engine over a batch of flight records. Rows are
// independent; they fan out across a bounded worker pool and come back in
// input order.
type Processor struct {
	Night    *NightEstimator
	Landings *LandingClassifier
	Workers  int
	Metrics  *metrics.Collector
}

// Process derives night time, landing classification, and crew time for
// every usable row. overrides may be nil; when present it supplies the
// per-flight Operating-Experience data. The only fatal conditions are an
// unrecognized default role and a batch with zero usable rows.
func (p *Processor) Process(ctx context.Context, flights []FlightRecord, defaultRole Role, overrides func(FlightRecord) *Override) ([]RowResult, Report, error) {
	if !ValidRole(defaultRole) {
		return nil, Report{}, fmt.Errorf("%w: %q", ErrInvalidRole, defaultRole)
	}
	if overrides == nil {
		overrides = func(FlightRecord) *Override { return nil }
	}

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	type slot struct {
		result RowResult
		ok     bool
	}
	slots := make([]slot, len(flights))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, ok := p.processRow(flights[i], defaultRole, overrides)
				slots[i] = slot{result: res, ok: ok}
			}
		}()
	}

feed:
	for i := range flights {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}

	var report Report
	results := make([]RowResult, 0, len(flights))
	for _, s := range slots {
		if !s.ok {
			report.Skipped++
			continue
		}
		report.Processed++
		report.Warnings += len(s.result.Warnings)
		results = append(results, s.result)
	}
	if report.Processed == 0 {
		return nil, report, ErrNoRows
	}
	return results, report, nil
}

func (p *Processor) processRow(f FlightRecord, defaultRole Role, overrides func(FlightRecord) *Override) (RowResult, bool) {
	start := time.Now()
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		log.Printf("warning: flight %s %s-%s: %s", f.FlightNumber, f.Origin, f.Destination, msg)
		if p.Metrics != nil {
			p.Metrics.RowWarnings.Inc()
		}
	}

	// Only a row missing both endpoints carries nothing to work with. A
	// single missing endpoint degrades downstream: zero night time, day
	// events, and a missing date rides the current-datetime fallback.
	if f.Origin == "" && f.Destination == "" {
		log.Printf("skipping row with missing critical data: ORG=%q DEST=%q DATE=%q", f.Origin, f.Destination, f.Date)
		if p.Metrics != nil {
			p.Metrics.RowsSkipped.Inc()
		}
		return RowResult{}, false
	}

	ov := overrides(f)
	role := ResolveRole(defaultRole, ov)

	night := p.Night.Estimate(f, warn)
	landings := p.Landings.Classify(f, warn)
	crew, err := Apportion(f, role, ov)
	if err != nil {
		// Roles reaching here come from OE data, not the caller; a bad
		// one loses the row, not the batch.
		warn("apportion crew time: %v, skipping row", err)
		if p.Metrics != nil {
			p.Metrics.RowsSkipped.Inc()
		}
		return RowResult{}, false
	}

	if p.Metrics != nil {
		p.Metrics.RowsProcessed.Inc()
		p.Metrics.RowDuration.Observe(time.Since(start).Seconds())
	}

	return RowResult{
		Flight:           f,
		Role:             role,
		Night:            night,
		Landings:         landings,
		Crew:             crew,
		ActualInstrument: night.NightHours * 0.5,
		Warnings:         warnings,
	}, true
}

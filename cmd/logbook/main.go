package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logbook-formatter/internal/airport"
	"logbook-formatter/internal/config"
	"logbook-formatter/internal/db"
	"logbook-formatter/internal/engine"
	"logbook-formatter/internal/logbook"
	"logbook-formatter/internal/metrics"
	"logbook-formatter/internal/publisher"
	"logbook-formatter/internal/solar"
	"logbook-formatter/internal/web"
)

func main() {
	flightsPath := flag.String("flights", "", "input CSV file with raw flight data")
	outputPath := flag.String("output", "", "output CSV path (derived from the input name when empty)")
	position := flag.String("position", "captain", "crew position: captain, first_officer, relief_first_officer, relief_captain, or auto")
	oePath := flag.String("oe-data", "", "optional CSV file with Operating Experience data")
	formatName := flag.String("format", "faa", "output format: faa or aero")
	pilotName := flag.String("pilot-name", "", "pilot name for the PIC/SIC name columns (aero format)")
	serve := flag.Bool("serve", false, "run the upload web form instead of a batch")
	flag.Parse()

	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *pilotName != "" {
		cfg.PilotName = *pilotName
	}

	format, err := logbook.ParseFormat(*formatName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Airport directory: Postgres reference table when configured, the
	// embedded extract otherwise. Loaded once, read-only afterwards.
	directory, err := loadAirports(ctx, cfg)
	if err != nil {
		log.Fatalf("load airports: %v", err)
	}
	log.Printf("airport directory loaded (%d airports)", directory.Len())

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.Workers)
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Optional NATS publisher for processed entries
	var pub *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		pub, err = publisher.NewNATSPublisher(cfg.NATSURL, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	tzdiff, err := solar.NewTZDiff(cfg.TZCacheSize, nil)
	if err != nil {
		log.Fatalf("tzdiff cache: %v", err)
	}
	sun, err := solar.NewCalculator(cfg.SunCacheSize)
	if err != nil {
		log.Fatalf("sun cache: %v", err)
	}

	parser := engine.NewTimeParser(dateLayouts(format), nil)
	proc := &engine.Processor{
		Night:    engine.NewNightEstimator(directory, tzdiff, sun, parser),
		Landings: engine.NewLandingClassifier(directory, sun, parser),
		Workers:  cfg.Workers,
		Metrics:  mcol,
	}
	runner := &logbook.Runner{Processor: proc, Publisher: pub, PilotName: cfg.PilotName}

	if *serve {
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = ":8080"
		}
		srv := (&web.Server{Runner: runner}).Serve(addr)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		log.Println("shutdown complete")
		return
	}

	if *flightsPath == "" {
		log.Fatalf("--flights is required in batch mode (or pass --serve)")
	}

	out := *outputPath
	if out == "" {
		out = logbook.OutputFilename(format, *flightsPath, time.Now())
		log.Printf("auto-generating output filename: %s", out)
	}

	report, err := runBatch(ctx, runner, format, engine.Role(*position), *flightsPath, *oePath, out)
	if err != nil {
		log.Fatalf("error processing flight data: %v", err)
	}

	if mcol != nil {
		mcol.TZCacheHits.Set(float64(tzdiff.Hits()))
		mcol.TZCacheMisses.Set(float64(tzdiff.Misses()))
		mcol.SunCacheHits.Set(float64(sun.Hits()))
		mcol.SunCacheMisses.Set(float64(sun.Misses()))
	}

	log.Printf("done: processed %d flights (%d skipped, %d warnings), output written to %s",
		report.Processed, report.Skipped, report.Warnings, out)
}

func runBatch(ctx context.Context, runner *logbook.Runner, format logbook.Format, role engine.Role, flightsPath, oePath, outputPath string) (engine.Report, error) {
	start := time.Now()
	flights, err := os.Open(flightsPath)
	if err != nil {
		return engine.Report{}, err
	}
	defer flights.Close()

	var oeData io.Reader
	if oePath != "" {
		f, err := os.Open(oePath)
		if err != nil {
			// Missing OE data degrades to none, matching the rest of the
			// optional-enrichment handling.
			log.Printf("warning: OE data file %s not found", oePath)
		} else {
			defer f.Close()
			oeData = f
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return engine.Report{}, err
	}
	defer out.Close()

	report, err := runner.Run(ctx, format, role, flights, oeData, out)
	if err != nil {
		// Do not leave a partial file behind when no output was produced.
		out.Close()
		os.Remove(outputPath)
		return report, err
	}
	if runner.Processor.Metrics != nil {
		runner.Processor.Metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}
	return report, nil
}

func loadAirports(ctx context.Context, cfg *config.Config) (*airport.Directory, error) {
	if cfg.DatabaseURL == "" {
		return airport.LoadEmbedded()
	}
	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()
	if err := db.Ping(ctx, sqlDB); err != nil {
		return nil, err
	}
	primary, err := db.FetchAirports(ctx, sqlDB)
	if err != nil {
		return nil, err
	}
	return airport.NewDirectory(primary), nil
}

// dateLayouts picks the date formats accepted per output variant: the FAA
// path sticks to the raw extract's MM/DD/YYYY, the aero path is flexible.
func dateLayouts(format logbook.Format) []string {
	if format == logbook.FormatAero {
		return engine.DateLayoutsFlexible
	}
	return engine.DateLayoutsFAA
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

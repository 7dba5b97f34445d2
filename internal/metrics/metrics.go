package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	RowsProcessed prometheus.Counter
	RowsSkipped   prometheus.Counter
	RowWarnings   prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	RowDuration     prometheus.Histogram
	BatchDuration   prometheus.Histogram
	PublishDuration prometheus.Histogram

	TZCacheHits    prometheus.Gauge
	TZCacheMisses  prometheus.Gauge
	SunCacheHits   prometheus.Gauge
	SunCacheMisses prometheus.Gauge

	Workers prometheus.Gauge
}

func NewCollector(workers int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_rows_processed_total",
			Help: "Total flight rows processed successfully.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_rows_skipped_total",
			Help: "Total flight rows skipped as unusable.",
		}),
		RowWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_row_warnings_total",
			Help: "Total recoverable data defects reported while processing.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logbook_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		RowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_row_duration_seconds",
			Help:    "Duration of per-row engine computations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_batch_duration_seconds",
			Help:    "Duration of complete batch runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logbook_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		TZCacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_tzdiff_cache_hits",
			Help: "Timezone-difference cache hits.",
		}),
		TZCacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_tzdiff_cache_misses",
			Help: "Timezone-difference cache misses.",
		}),
		SunCacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_sun_cache_hits",
			Help: "Sunrise/sunset cache hits.",
		}),
		SunCacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_sun_cache_misses",
			Help: "Sunrise/sunset cache misses.",
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logbook_workers",
			Help: "Configured worker-pool size.",
		}),
	}

	// Register
	reg.MustRegister(
		c.RowsProcessed, c.RowsSkipped, c.RowWarnings,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.RowDuration, c.BatchDuration, c.PublishDuration,
		c.TZCacheHits, c.TZCacheMisses, c.SunCacheHits, c.SunCacheMisses,
		c.Workers,
	)

	c.Workers.Set(float64(workers))

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	NATSURL         string
	MetricsAddr     string
	HTTPAddr        string
	Workers         int
	TZCacheSize     int
	SunCacheSize    int
	PilotName       string
	LogNATSSubjects bool
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Optional Postgres airport source; the embedded extract is used when
	// unset.
	cfg.DatabaseURL = firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)

	// Optional NATS publishing of processed entries. Empty disables.
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	// Upload server listen address. Empty means CLI batch mode only.
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")

	// Worker pool size
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid WORKERS: %q", v)
		}
		cfg.Workers = n
	} else {
		cfg.Workers = runtime.NumCPU()
	}

	// Memoization cache bounds
	if v := os.Getenv("TZ_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid TZ_CACHE_SIZE: %q", v)
		}
		cfg.TZCacheSize = n
	} else {
		cfg.TZCacheSize = 128
	}
	if v := os.Getenv("SUN_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SUN_CACHE_SIZE: %q", v)
		}
		cfg.SunCacheSize = n
	} else {
		cfg.SunCacheSize = 256
	}

	cfg.PilotName = getenvDefault("PILOT_NAME", "SELF")

	// Debug logging for NATS publish subjects
	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.LogNATSSubjects = true
		default:
			cfg.LogNATSSubjects = false
		}
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

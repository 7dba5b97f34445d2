package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector(4)

	c.RowsProcessed.Inc()
	c.RowsProcessed.Inc()
	c.RowsSkipped.Inc()
	c.RowWarnings.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.RowsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RowsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RowWarnings))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.Workers))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(2)
	c.RowsProcessed.Inc()
	c.TZCacheHits.Set(7)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "logbook_rows_processed_total 1")
	assert.Contains(t, body, "logbook_tzdiff_cache_hits 7")
	assert.Contains(t, body, "logbook_workers 2")
}

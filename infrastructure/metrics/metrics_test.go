package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"wmsadmin/infrastructure/importer"
)

var _ importer.Recorder = (*Import)(nil)

func TestObserveRowsAndBatches(t *testing.T) {
	m := New()
	m.ObserveRows("products", importer.StatusLoaded, 3)
	m.ObserveRows("products", importer.StatusError, 0)
	m.ObserveBatch("products", true, 20*time.Millisecond)
	m.ObserveBatch("products", false, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.rowsTotal.WithLabelValues("products", "loaded")); got != 3 {
		t.Fatalf("expected 3 loaded rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.batchesTotal.WithLabelValues("products", "error")); got != 1 {
		t.Fatalf("expected 1 failed batch, got %v", got)
	}
	if got := testutil.CollectAndCount(m.batchDuration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestHandlerExposesImportMetrics(t *testing.T) {
	m := New()
	m.ObserveRows("serials", importer.StatusLoaded, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `wms_import_rows_total{status="loaded",target="serials"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}

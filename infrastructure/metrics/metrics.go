// Package metrics holds the prometheus collectors for import runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wmsadmin/infrastructure/importer"
)

type Import struct {
	registry *prometheus.Registry

	rowsTotal     *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// New builds a private registry with the import collectors and the
// standard go/process collectors.
func New() *Import {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Import{
		registry: reg,
		rowsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows seen by the batch uploader, by final status.",
		}, []string{"target", "status"}),
		batchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wms",
			Subsystem: "import",
			Name:      "batches_total",
			Help:      "Upload batches sent to the backend.",
		}, []string{"target", "outcome"}),
		batchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wms",
			Subsystem: "import",
			Name:      "batch_duration_seconds",
			Help:      "Latency of one upload batch.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"target"}),
	}
}

func (m *Import) ObserveRows(target string, status importer.RowStatus, n int) {
	if n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(target, string(status)).Add(float64(n))
}

func (m *Import) ObserveBatch(target string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.batchesTotal.WithLabelValues(target, outcome).Inc()
	m.batchDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (m *Import) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Import) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

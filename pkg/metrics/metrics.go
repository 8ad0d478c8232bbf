// Package metrics exposes Prometheus instrumentation for the import
// pipeline.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ImportsTotal counts import calls by file format and outcome.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grandlivre_imports_total",
		Help: "Number of file imports by format and status.",
	}, []string{"format", "status"})

	// RowsImported counts accepted ledger rows.
	RowsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grandlivre_rows_imported_total",
		Help: "Number of rows accepted and persisted.",
	})

	// RowsSkipped counts rows dropped by the mapper's required-field and
	// zero-amount gates.
	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grandlivre_rows_skipped_total",
		Help: "Number of rows skipped during mapping.",
	})

	// RowsFailed counts rows whose persistence task failed.
	RowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grandlivre_rows_failed_total",
		Help: "Number of rows that failed to persist.",
	})

	// ImportDuration observes wall time per import call.
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grandlivre_import_duration_seconds",
		Help:    "Duration of file imports.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

// Serve exposes /metrics on the given port. Blocks; run in a goroutine.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

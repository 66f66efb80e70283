// Package telemetry exposes prometheus metrics for detection runs. Recording
// is best-effort and has no effect on detector output.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphrisk_scans_total",
		Help: "Detection runs by outcome (ok, error, cancelled).",
	}, []string{"outcome"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphrisk_scan_duration_seconds",
		Help:    "Wall time of full detection runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphrisk_findings_total",
		Help: "Findings produced, by scheme type.",
	}, []string{"scheme"})

	snapshotClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphrisk_snapshot_clients",
		Help: "Client count of the most recently scanned snapshot.",
	})
)

// ObserveScan records one completed run.
func ObserveScan(outcome string, elapsed time.Duration) {
	scansTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		scanDuration.Observe(elapsed.Seconds())
	}
}

// RecordFindings counts findings for one scheme type.
func RecordFindings(scheme string, n int) {
	findingsTotal.WithLabelValues(scheme).Add(float64(n))
}

// RecordSnapshotSize notes the size of the scanned snapshot.
func RecordSnapshotSize(clients int) {
	snapshotClients.Set(float64(clients))
}

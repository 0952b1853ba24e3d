// Package telemetry provides Prometheus instrumentation for list synchronization.
package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wooterm"

// SyncMetrics holds the Prometheus collectors for page sync metrics.
// All methods are safe to call on a nil *SyncMetrics.
type SyncMetrics struct {
	pagesRequested       *prometheus.CounterVec
	pagesCompleted       *prometheus.CounterVec
	duplicatesSuppressed *prometheus.CounterVec
	pageDuration         *prometheus.HistogramVec
	reloadDuration       prometheus.Histogram
}

// NewSyncMetrics creates the sync collectors and registers them with reg.
// If reg is nil, it returns nil (no-op metrics).
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &SyncMetrics{
		pagesRequested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pages_requested_total",
			Help:      "Number of page fetches issued",
		}, []string{"list"}),
		pagesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pages_completed_total",
			Help:      "Number of page fetches completed, by outcome",
		}, []string{"list", "success"}),
		duplicatesSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duplicates_suppressed_total",
			Help:      "Number of page requests dropped because the page was already in flight",
		}, []string{"list"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "page_duration_seconds",
			Help:      "Duration of page fetches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"list"}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "reload_duration_seconds",
			Help:      "Duration of dashboard reloads in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	collectors := []prometheus.Collector{
		m.pagesRequested,
		m.pagesCompleted,
		m.duplicatesSuppressed,
		m.pageDuration,
		m.reloadDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// RecordPageRequested counts a page fetch issued for list
func (m *SyncMetrics) RecordPageRequested(list string) {
	if m == nil {
		return
	}
	m.pagesRequested.WithLabelValues(list).Inc()
}

// RecordPageCompleted records the outcome and duration of a page fetch
func (m *SyncMetrics) RecordPageCompleted(list string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.pagesCompleted.WithLabelValues(list, strconv.FormatBool(err == nil)).Inc()
	m.pageDuration.WithLabelValues(list).Observe(duration.Seconds())
}

// RecordDuplicateSuppressed counts a request dropped by in-flight deduplication
func (m *SyncMetrics) RecordDuplicateSuppressed(list string) {
	if m == nil {
		return
	}
	m.duplicatesSuppressed.WithLabelValues(list).Inc()
}

// RecordReload records the duration of a dashboard reload
func (m *SyncMetrics) RecordReload(duration time.Duration) {
	if m == nil {
		return
	}
	m.reloadDuration.Observe(duration.Seconds())
}

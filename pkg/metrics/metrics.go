// Package metrics provides Prometheus metrics for the seiseki import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the import pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core pipeline metrics
	scoresImported  prometheus.Counter
	scoresFailed    *prometheus.CounterVec
	importsFatal    prometheus.Counter
	importDuration  prometheus.Histogram
	convertDuration prometheus.Histogram

	// Insert queue metrics
	queueSize    prometheus.Gauge
	queueFlushes prometheus.Counter
	queueFlushed prometheus.Counter

	// Personal best / stats metrics
	pbUpdates     prometheus.Counter
	classDeltas   prometheus.Counter
	statsUpserts  prometheus.Counter
	ratingWarning prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithRegistry sets the Prometheus registerer used for all metrics.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithHistogramBuckets overrides the default histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "seiseki",
		subsystem:        "import",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_imported_total",
		Help:      "Total number of scores successfully converted and queued",
	})

	m.scoresFailed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scores_failed_total",
			Help:      "Total number of per-record conversion failures by kind",
		},
		[]string{"kind"},
	)

	m.importsFatal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imports_fatal_total",
		Help:      "Total number of import batches aborted fatally",
	})

	m.importDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_milliseconds",
		Help:      "Histogram of full import batch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.convertDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "convert_duration_milliseconds",
		Help:      "Histogram of single-record conversion duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "insert_queue_size",
		Help:      "Current number of scores buffered in the insert queue",
	})

	m.queueFlushes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "insert_queue_flushes_total",
		Help:      "Total number of insert queue flushes",
	})

	m.queueFlushed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "insert_queue_flushed_scores_total",
		Help:      "Total number of scores written by insert queue flushes",
	})

	m.pbUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "personal_best_updates_total",
		Help:      "Total number of personal best recompositions",
	})

	m.classDeltas = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "class_deltas_total",
		Help:      "Total number of class transitions emitted",
	})

	m.statsUpserts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_stats_upserts_total",
		Help:      "Total number of game stats inserts and updates",
	})

	m.ratingWarning = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_diagnostics_total",
		Help:      "Total number of rating calculations degraded to zero or nil",
	})
}

// Registry returns the custom registry that holds all pipeline metrics.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level helpers operating on the global manager.

// RecordScoreImported increments the imported-score counter.
func RecordScoreImported() { globalManager.scoresImported.Inc() }

// RecordScoreFailed increments the failure counter for a failure kind.
func RecordScoreFailed(kind string) { globalManager.scoresFailed.WithLabelValues(kind).Inc() }

// RecordFatalImport increments the fatal batch counter.
func RecordFatalImport() { globalManager.importsFatal.Inc() }

// RecordImportDuration observes a full batch duration in milliseconds.
func RecordImportDuration(ms float64) { globalManager.importDuration.Observe(ms) }

// RecordConvertDuration observes a single conversion duration in milliseconds.
func RecordConvertDuration(ms float64) { globalManager.convertDuration.Observe(ms) }

// UpdateQueueSize sets the current insert queue size gauge.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// RecordQueueFlush records one flush writing n scores.
func RecordQueueFlush(n int) {
	globalManager.queueFlushes.Inc()
	globalManager.queueFlushed.Add(float64(n))
}

// RecordPBUpdate increments the personal best update counter.
func RecordPBUpdate() { globalManager.pbUpdates.Inc() }

// RecordClassDelta increments the class delta counter.
func RecordClassDelta() { globalManager.classDeltas.Inc() }

// RecordStatsUpsert increments the game stats upsert counter.
func RecordStatsUpsert() { globalManager.statsUpserts.Inc() }

// RecordRatingDiagnostic increments the degraded rating counter.
func RecordRatingDiagnostic() { globalManager.ratingWarning.Inc() }

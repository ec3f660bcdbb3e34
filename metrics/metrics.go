package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// Pipeline metrics
	SnapshotsReadTotal prometheus.Counter
	FilesSkippedTotal  *prometheus.CounterVec
	RowsDroppedTotal   *prometheus.CounterVec
	RowsMergedTotal    prometheus.Counter
	PipelineDuration   *prometheus.HistogramVec
	DatasetCacheTotal  *prometheus.CounterVec

	// Upstream metrics
	SearchRequestsTotal *prometheus.CounterVec
	SearchDuration      prometheus.Histogram

	// Dashboard metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector backed by its own registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		SnapshotsReadTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_read_total",
				Help:      "Total number of snapshot files read successfully",
			},
		),

		FilesSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_files_skipped_total",
				Help:      "Total number of snapshot files skipped by reason",
			},
			[]string{"reason"},
		),

		RowsDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_dropped_total",
				Help:      "Total number of fare rows dropped during merge by reason",
			},
			[]string{"reason"},
		),

		RowsMergedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_merged_total",
				Help:      "Total number of normalized fare rows produced",
			},
		),

		PipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"stage"},
		),

		DatasetCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_lookups_total",
				Help:      "Dataset cache lookups by result",
			},
			[]string{"result"},
		),

		SearchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_requests_total",
				Help:      "Total number of upstream flight searches by outcome",
			},
			[]string{"outcome"},
		),

		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Upstream flight search duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of dashboard requests by route and status",
			},
			[]string{"route", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Dashboard request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
			},
			[]string{"route"},
		),
	}
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordSnapshotRead() {
	if c == nil {
		return
	}
	c.SnapshotsReadTotal.Inc()
}

func (c *Collector) RecordFileSkipped(reason string) {
	if c == nil {
		return
	}
	c.FilesSkippedTotal.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordRowsDropped(reason string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.RowsDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

func (c *Collector) RecordRowsMerged(n int) {
	if c == nil {
		return
	}
	c.RowsMergedTotal.Add(float64(n))
}

func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.DatasetCacheTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSearch(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	c.SearchDuration.Observe(d.Seconds())
}

func (c *Collector) RecordHTTPRequest(route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	c.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Timer measures one pipeline stage.
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// StageTimer starts timing a pipeline stage.
func (c *Collector) StageTimer(stage string) *Timer {
	t := &Timer{start: time.Now()}
	if c != nil {
		t.observer = c.PipelineDuration.WithLabelValues(stage)
	}
	return t
}

// ObserveDuration records the elapsed time since timer creation.
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	DatasetLoads        *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram
	DatasetWarnings     prometheus.Gauge
	DatasetRows         *prometheus.GaugeVec
	DatasetLastSuccess  prometheus.Gauge
	RiskIndicators      *prometheus.GaugeVec
	ViewCache           *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers every collector on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendboard",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"status"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spendboard",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and parsing the three tables.",
			Buckets:   prometheus.DefBuckets,
		}),
		DatasetWarnings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spendboard",
			Name:      "dataset_warnings",
			Help:      "Coerced cells in the current dataset.",
		}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spendboard",
			Name:      "dataset_rows",
			Help:      "Rows in the current dataset by table.",
		}, []string{"table"}),
		DatasetLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spendboard",
			Name:      "dataset_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful load.",
		}),
		RiskIndicators: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spendboard",
			Name:      "risk_indicator",
			Help:      "Current value of each risk indicator.",
		}, []string{"indicator"}),
		ViewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendboard",
			Name:      "view_cache_requests_total",
			Help:      "View cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spendboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetWarnings,
		m.DatasetRows,
		m.DatasetLastSuccess,
		m.RiskIndicators,
		m.ViewCache,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// CacheHit and CacheMiss count view cache lookups.
func (m *Metrics) CacheHit()  { m.ViewCache.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.ViewCache.WithLabelValues("miss").Inc() }

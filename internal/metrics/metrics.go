// Package metrics - Prometheus-метрики forum-store.
//
// Собирает:
//   - HTTP-запросы по шаблону маршрута chi, методу и статусу (счётчик + гистограмма латентности);
//   - длительность и сбои перезаписи документа;
//   - число узлов в лесу после каждой загрузки и мутации.
//
// Metrics реализует document.Observer и middleware.HTTPObserver.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forum_store"

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	saveDuration prometheus.Histogram
	saveFailures prometheus.Counter
	nodes        prometheus.Gauge
}

// New регистрирует коллекторы в reg. nil - prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "save_duration_seconds",
			Help:      "Full document rewrite latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "save_failures_total",
			Help:      "Document rewrites that failed.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "forest",
			Name:      "nodes",
			Help:      "Posts and replies currently held in memory.",
		}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.saveDuration, m.saveFailures, m.nodes)

	return m
}

// ObserveHTTP - middleware.HTTPObserver.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveSave - document.Observer.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	m.saveDuration.Observe(d.Seconds())
	if err != nil {
		m.saveFailures.Inc()
	}
}

// ObserveNodes - document.Observer.
func (m *Metrics) ObserveNodes(n int) {
	m.nodes.Set(float64(n))
}

// Handler отдаёт метрики из g в формате Prometheus. nil - prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workstream-hq/hr-attend-api/internal/dto"
)

// MetricsService owns the Prometheus registry for the engine. It exposes the
// scrape handler plus a small JSON snapshot for the admin summary endpoint.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reconRuns     *prometheus.CounterVec
	reconJobItems *prometheus.CounterVec
	reconDuration prometheus.Histogram
}

// NewMetricsService builds a registry with process/go collectors plus the
// engine's own series.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hr_attend_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hr_attend_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reconRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hr_attend_reconciliation_runs_total",
			Help: "Reconciliation runs by result.",
		}, []string{"result"}),
		reconJobItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hr_attend_reconciliation_job_items_total",
			Help: "Per-item outcomes of reconciliation jobs.",
		}, []string{"job", "outcome"}),
		reconDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hr_attend_reconciliation_duration_seconds",
			Help:    "Wall time of one reconciliation run.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.reconRuns, m.reconJobItems, m.reconDuration)
	return m
}

// Handler returns the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *MetricsService) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveReconciliation records the outcome of one run.
func (m *MetricsService) ObserveReconciliation(summary *dto.ReconciliationSummary, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reconRuns.WithLabelValues(result).Inc()
	if summary == nil {
		return
	}
	m.reconDuration.Observe(float64(summary.DurationMS) / 1000)
	for _, job := range summary.Jobs {
		m.reconJobItems.WithLabelValues(job.Name, "succeeded").Add(float64(job.Succeeded))
		m.reconJobItems.WithLabelValues(job.Name, "skipped").Add(float64(job.Skipped))
		m.reconJobItems.WithLabelValues(job.Name, "failed").Add(float64(job.Failed))
	}
}

// MetricsSnapshot is the admin-facing totals view.
type MetricsSnapshot struct {
	HTTPRequests       float64            `json:"http_requests_total"`
	ReconciliationRuns map[string]float64 `json:"reconciliation_runs"`
	JobItems           map[string]float64 `json:"reconciliation_job_items"`
}

// Snapshot gathers current counter totals. Metric families the registry does
// not know yet (nothing observed) simply stay zero.
func (m *MetricsService) Snapshot() (*MetricsSnapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	snap := &MetricsSnapshot{
		ReconciliationRuns: map[string]float64{},
		JobItems:           map[string]float64{},
	}
	for _, family := range families {
		switch family.GetName() {
		case "hr_attend_http_requests_total":
			for _, metric := range family.GetMetric() {
				snap.HTTPRequests += metric.GetCounter().GetValue()
			}
		case "hr_attend_reconciliation_runs_total":
			for _, metric := range family.GetMetric() {
				for _, label := range metric.GetLabel() {
					if label.GetName() == "result" {
						snap.ReconciliationRuns[label.GetValue()] += metric.GetCounter().GetValue()
					}
				}
			}
		case "hr_attend_reconciliation_job_items_total":
			for _, metric := range family.GetMetric() {
				var job, outcome string
				for _, label := range metric.GetLabel() {
					switch label.GetName() {
					case "job":
						job = label.GetValue()
					case "outcome":
						outcome = label.GetValue()
					}
				}
				snap.JobItems[job+"."+outcome] += metric.GetCounter().GetValue()
			}
		}
	}
	return snap, nil
}

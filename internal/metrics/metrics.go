// Package metrics exposes prometheus instrumentation for the triage
// pipeline and its HTTP boundary.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/inbox-triage/triage/internal/agent"
)

type Metrics struct {
	// Pipeline metrics
	EmailsProcessed *prometheus.CounterVec
	ActionsProposed *prometheus.CounterVec
	BatchSize       prometheus.Histogram
	BatchDuration   prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors against reg and returns the handle used to
// record observations.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EmailsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_emails_processed_total",
				Help: "Emails processed, by assigned category",
			},
			[]string{"category"},
		),
		ActionsProposed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_actions_proposed_total",
				Help: "Actions proposed, by action type",
			},
			[]string{"type"},
		),
		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "triage_batch_size",
				Help:    "Number of emails per processed batch",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "triage_batch_duration_seconds",
				Help:    "Wall time spent processing a batch",
				Buckets: prometheus.DefBuckets,
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_http_requests_total",
				Help: "HTTP requests, by method, route, and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "triage_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordBatch records pipeline counters for one agent response.
func (m *Metrics) RecordBatch(resp agent.AgentResponse, duration time.Duration) {
	m.BatchSize.Observe(float64(len(resp.Decisions)))
	m.BatchDuration.Observe(duration.Seconds())

	for _, decision := range resp.Decisions {
		m.EmailsProcessed.WithLabelValues(string(decision.Category)).Inc()
		for _, action := range decision.Actions {
			m.ActionsProposed.WithLabelValues(string(action.Type)).Inc()
		}
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

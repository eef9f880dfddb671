// Package metrics defines Prometheus metrics for ticket-watcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tw"

// Poll results.
const (
	PollQualified = "qualified"
	PollNone      = "none"
	PollError     = "error"
)

// Poll metrics.
var (
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Total number of completed poll cycles by result.",
	}, []string{"result"})

	PollsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_skipped_total",
		Help:      "Total number of ticks skipped because a poll was in flight or the run had ended.",
	})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of fetch+evaluate cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	RunPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_phase",
		Help:      "Current run phase (0 idle, 1 polling, 2 succeeded, 3 failed).",
	})
)

// Evaluation metrics.
var (
	PerformancesSeenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "performances_seen_total",
		Help:      "Total number of performances returned by the catalog.",
	})

	AnomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "performance_anomalies_total",
		Help:      "Total number of performances skipped for missing start and end times.",
	})

	InvisibleRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invisible_rejected_total",
		Help:      "Total number of invisible performances that blocked a cycle.",
	})
)

// Catalog metrics.
var (
	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of catalog HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered by kind.",
	}, []string{"kind"})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of notification deliveries in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Status server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of status server requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or not (0).",
	})
)

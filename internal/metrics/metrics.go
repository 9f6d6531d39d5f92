package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "land_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "land_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WorkflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "land_workflow_transitions_total",
			Help: "Workflow operations by entity type, action and outcome",
		},
		[]string{"entity_type", "action", "outcome"},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "land_notification_failures_total",
			Help: "Notification fan-outs that could not be written",
		},
	)

	ReviewQueueItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "land_review_queue_items",
			Help: "Submitted entities in the last review queue build",
		},
		[]string{"entity_type"},
	)

	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "land_notification_ws_clients",
			Help: "Connected notification websocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WorkflowTransitions,
		NotificationFailures,
		ReviewQueueItems,
		WebsocketClients,
	)
}

// Outcome labels for WorkflowTransitions
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

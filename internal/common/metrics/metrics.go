// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	IntakeEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_entries_total",
			Help: "Provider lead notifications by outcome (persisted, rejected, skipped)",
		},
		[]string{"provider", "outcome", "reason"},
	)

	IntakeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lead_intake_fetch_duration_seconds",
			Help: "Duration of provider lead fetches in seconds",
		},
		[]string{"provider"},
	)

	PermissionDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Requests rejected by the permission check",
		},
		[]string{"role", "permission"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "New-lead alerts by channel and status",
		},
		[]string{"channel", "status"},
	)
)

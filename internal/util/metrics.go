package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of persisted order status changes",
	}, []string{"status"})

	OrderStatusUpdateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_update_failures_total",
		Help: "Total number of failed order status updates",
	}, []string{"reason"})

	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications accepted by the broker",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of notifications the broker rejected",
	})

	NotificationsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_stored_total",
		Help: "Total number of notifications written to user inboxes",
	})

	ViewInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "view_invalidations_total",
		Help: "Total number of views marked stale",
	}, []string{"path"})

	ViewCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "view_cache_lookups_total",
		Help: "View cache lookups by result",
	}, []string{"path", "result"})

	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aggregation_duration_seconds",
		Help:    "Latency of dashboard aggregations",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

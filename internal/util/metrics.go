package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ProductCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_requests_total",
		Help: "Product listing cache lookups by result",
	}, []string{"result"})

	ProductCacheWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_write_failures_total",
		Help: "Total number of failed product listing cache writes",
	})

	PaymentsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_created_total",
		Help: "Total number of payments created",
	}, []string{"payment_method"})

	PaymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_total",
		Help: "Total number of applied payment status transitions",
	}, []string{"from", "to"})

	PaymentTransitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_rejected_total",
		Help: "Total number of rejected payment status transitions",
	}, []string{"from", "to"})

	PaymentEventsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_recorded_total",
		Help: "Payment events written to the audit trail",
	}, []string{"event_type"})

	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_query_latency_seconds",
		Help:    "Latency of store operations issued by the services",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

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

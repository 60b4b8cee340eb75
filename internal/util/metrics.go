package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Total number of checkout attempts",
	})

	CheckoutSucceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_succeeded_total",
		Help: "Total number of successful checkouts",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	TokenizationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "card_tokenizations_total",
		Help: "Total number of card tokenization attempts",
	}, []string{"mode", "outcome"})

	TokenizationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "card_tokenization_latency_seconds",
		Help:    "Latency of card tokenization",
		Buckets: prometheus.DefBuckets,
	})

	PaymentConfirmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_confirm_latency_seconds",
		Help:    "Latency of payment confirmation",
		Buckets: prometheus.DefBuckets,
	})

	PaymentIntentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Total number of payment intents created",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of swallowed cart persistence failures",
	})

	OrdersRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_recorded_total",
		Help: "Total number of orders recorded in the order ledger",
	})

	OrdersEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_evicted_total",
		Help: "Total number of orders evicted by the history cap",
	})

	SearchQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_queries_total",
		Help: "Total number of executed product searches",
	})

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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuchikomi_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kuchikomi_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuchikomi_like_toggles_total",
		Help: "Like toggles by resulting state.",
	}, []string{"state"})

	AdEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuchikomi_ad_events_total",
		Help: "Sponsored post events by kind and outcome.",
	}, []string{"kind", "outcome"})

	PseudoUsers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuchikomi_pseudo_users_total",
		Help: "Pseudo-user bootstrap attempts by outcome.",
	}, []string{"outcome"})

	BestEffortFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kuchikomi_best_effort_failures_total",
		Help: "Side effects that failed without failing the request.",
	}, []string{"op"})
)

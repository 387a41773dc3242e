package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copysnap_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copysnap_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copysnap_generations_total",
			Help: "Total number of copy generation requests.",
		},
		[]string{"status"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copysnap_generation_duration_seconds",
			Help:    "End-to-end copy generation duration in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	QuotaDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copysnap_quota_denials_total",
			Help: "Total number of generation requests denied by quota.",
		},
		[]string{"limit"},
	)

	SubscriptionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copysnap_subscription_checks_total",
			Help: "Total number of subscription status checks against the billing provider.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		GenerationDuration,
		QuotaDenialsTotal,
		SubscriptionChecksTotal,
	)
}

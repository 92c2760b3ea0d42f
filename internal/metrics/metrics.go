package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring service health and performance
var (
	WebhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total number of webhook requests received, by outcome",
		},
		[]string{"outcome"},
	)

	JobsMatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_matched_total",
			Help: "Total number of production orders matched against the Evocon job catalog",
		},
	)

	ChangeoversPostedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "changeovers_posted_total",
			Help: "Total number of changeover events posted to Evocon, by upstream status",
		},
		[]string{"status"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Total number of failed calls to the Evocon API, by operation",
		},
		[]string{"op"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(WebhookRequestsTotal)
	prometheus.MustRegister(JobsMatchedTotal)
	prometheus.MustRegister(ChangeoversPostedTotal)
	prometheus.MustRegister(UpstreamErrorsTotal)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the engine-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	policyChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace_rules",
			Subsystem: "engine",
			Name:      "policy_checks_total",
			Help:      "Total number of basket policy evaluations.",
		},
		[]string{"outcome"},
	)

	discountCalcs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace_rules",
			Subsystem: "engine",
			Name:      "discount_calculations_total",
			Help:      "Total number of basket discount evaluations.",
		},
	)

	savingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace_rules",
			Subsystem: "engine",
			Name:      "savings_granted_total",
			Help:      "Monetary savings granted across all discount evaluations.",
		},
	)

	evalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace_rules",
			Subsystem: "engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of rule evaluations.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~0.26s
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(policyChecks, discountCalcs, savingsTotal, evalDuration)
}

// Handler exposes the engine registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Recorder adapts the collectors to the engine's MetricsRecorder port.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (*Recorder) PolicyCheck(allowed bool, seconds float64) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	policyChecks.WithLabelValues(outcome).Inc()
	evalDuration.WithLabelValues("policy_check").Observe(seconds)
}

func (*Recorder) DiscountCalc(total float64, seconds float64) {
	discountCalcs.Inc()
	if total > 0 {
		savingsTotal.Add(total)
	}
	evalDuration.WithLabelValues("discount_calc").Observe(seconds)
}

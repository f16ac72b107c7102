// Package metrics exposes the prometheus counters and histograms the
// coordinator, filter engine and list caches update as they run. Grounded on
// the teacher's metrics/prometheus gatherer, simplified from a generic
// registry adapter to direct client_golang collectors since this module has
// a small, fixed metric surface rather than a pluggable go-metrics registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the trading pipeline updates.
type Metrics struct {
	BuyAttempts      *prometheus.CounterVec
	SellAttempts     *prometheus.CounterVec
	FilterEvaluations *prometheus.CounterVec
	SubmissionLatency *prometheus.HistogramVec
	PriceWatchExits  *prometheus.CounterVec
}

// New registers and returns the metric bundle on reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sniper",
			Name:      "buy_attempts_total",
			Help:      "Number of buy swap attempts, labeled by outcome.",
		}, []string{"outcome"}),
		SellAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sniper",
			Name:      "sell_attempts_total",
			Help:      "Number of sell swap attempts, labeled by outcome.",
		}, []string{"outcome"}),
		FilterEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sniper",
			Name:      "filter_evaluations_total",
			Help:      "Number of pool filter engine evaluations, labeled by result.",
		}, []string{"result"}),
		SubmissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sniper",
			Name:      "submission_latency_seconds",
			Help:      "Time from submit to confirm/fail per transaction executor variant.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"executor"}),
		PriceWatchExits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sniper",
			Name:      "price_watch_exits_total",
			Help:      "Reason the price watcher's polling loop returned.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.BuyAttempts, m.SellAttempts, m.FilterEvaluations, m.SubmissionLatency, m.PriceWatchExits)
	return m
}

// Noop returns a Metrics bundle registered to a private registry, for call
// sites (tests, library users) that don't want to touch the default
// registerer.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	reloads            prometheus.Counter
	filterApplications prometheus.Counter
	realizations       prometheus.Counter
	intervalDuration   prometheus.Histogram
}

// newMetrics creates the report metrics. A nil registerer keeps them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beanreport",
			Name:      "reloads_total",
			Help:      "Total number of ledger reloads",
		}),
		filterApplications: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beanreport",
			Name:      "filter_applications_total",
			Help:      "Total number of times changed filters were applied",
		}),
		realizations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "beanreport",
			Name:      "realizations_total",
			Help:      "Total number of account tree realizations",
		}),
		intervalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beanreport",
			Name:      "interval_balances_duration_seconds",
			Help:      "Duration of interval balance computations in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

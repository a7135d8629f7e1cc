package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ParticipantsRegistered prometheus.Counter
	ParticipantsDeleted    prometheus.Counter
	PaymentsRecorded       prometheus.Counter
	RateSourceFailures     *prometheus.CounterVec
	RateFetchDuration      prometheus.Histogram
	ManualRateEntries      prometheus.Counter
}

// New creates all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registerer. Tests pass a fresh
// registry to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ParticipantsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "inscripciones_participants_registered_total",
			Help: "Total number of participants registered",
		}),
		ParticipantsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "inscripciones_participants_deleted_total",
			Help: "Total number of participants removed by staff",
		}),
		PaymentsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "inscripciones_payments_recorded_total",
			Help: "Total number of payment history entries appended",
		}),
		RateSourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inscripciones_rate_source_failures_total",
			Help: "Exchange-rate source failures by source name",
		}, []string{"source"}),
		RateFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inscripciones_rate_fetch_duration_seconds",
			Help:    "Latency of a full exchange-rate fallback chain run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ManualRateEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "inscripciones_manual_rate_entries_total",
			Help: "Total number of manually entered exchange rates",
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcomes used as the "outcome" label
const (
	OutcomeAdded    = "added"
	OutcomeSkipped  = "skipped"
	OutcomeUnparsed = "unparsed"
	OutcomeFailed   = "failed"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	SyncDuration      *prometheus.HistogramVec
	RemindersSent     *prometheus.CounterVec
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// A nil reg registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_messages_total",
			Help:      "The total number of inbound messages handled by a sync run",
		}, []string{"purpose", "outcome"}),
		SyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time taken by a full sync run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"purpose"}),
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "The total number of advance reminders attempted",
		}, []string{"result"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewNopMetrics returns metrics registered on a throwaway registry
func NewNopMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}

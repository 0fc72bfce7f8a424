package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Bulk sync outcomes.
const (
	SyncOutcomeSynced        = "synced"
	SyncOutcomeSkipped       = "skipped"
	SyncOutcomeAlreadyExists = "already_exists"
)

// SyncMetrics tracks bulk HubSpot contact syncs.
type SyncMetrics struct {
	contacts *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	contacts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_contacts_total",
		Help:      "Contacts processed by bulk sync runs, by outcome.",
	}, []string{"outcome"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Bulk sync runs by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of bulk sync runs in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
	reg.MustRegister(contacts, runs, duration)
	return &SyncMetrics{contacts: contacts, runs: runs, duration: duration}
}

func (m *SyncMetrics) IncContact(outcome string) {
	if m == nil || m.contacts == nil {
		return
	}
	m.contacts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveRun records a finished run; failed runs are counted under result="error".
func (m *SyncMetrics) ObserveRun(duration time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(duration.Seconds())
}

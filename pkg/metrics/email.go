package metrics

import "github.com/prometheus/client_golang/prometheus"

// EmailMetrics tracks the ad-hoc email dispatch queue.
type EmailMetrics struct {
	dispatched *prometheus.CounterVec
	queued     prometheus.Gauge
}

func NewEmailMetrics(reg prometheus.Registerer) *EmailMetrics {
	if reg == nil {
		return &EmailMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_dispatch_total",
		Help:      "Queued emails by template and delivery status.",
	}, []string{"template", "status"})
	queued := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "email_queue_depth",
		Help:      "Emails waiting in the dispatch queue.",
	})
	reg.MustRegister(dispatched, queued)
	return &EmailMetrics{dispatched: dispatched, queued: queued}
}

func (m *EmailMetrics) IncDispatched(template, status string) {
	if m == nil || m.dispatched == nil {
		return
	}
	m.dispatched.WithLabelValues(normalizeLabel(template), normalizeLabel(status)).Inc()
}

// SetQueueDepth reports the current number of pending emails.
func (m *EmailMetrics) SetQueueDepth(depth int) {
	if m == nil || m.queued == nil {
		return
	}
	m.queued.Set(float64(depth))
}

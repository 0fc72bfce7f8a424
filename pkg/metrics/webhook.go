package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lynk"

// Pipeline stages reported by WebhookMetrics.
const (
	StageReceived       = "received"
	StageFetchFailed    = "fetch_failed"
	StageMissingEmail   = "missing_email"
	StageContactUpsert  = "contact_upserted"
	StageUpsertFailed   = "upsert_failed"
	StageLockSkipped    = "lock_skipped"
	StageEventLogFailed = "event_log_failed"
)

// WebhookMetrics tracks the HubSpot webhook pipeline.
type WebhookMetrics struct {
	stages  *prometheus.CounterVec
	welcome *prometheus.CounterVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	stages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_stage_total",
		Help:      "HubSpot webhook pipeline stage outcomes.",
	}, []string{"stage", "subscription_type"})
	welcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "welcome_email_total",
		Help:      "Welcome emails by status and failure reason.",
	}, []string{"status", "reason"})
	reg.MustRegister(stages, welcome)
	return &WebhookMetrics{stages: stages, welcome: welcome}
}

// IncStage counts one webhook reaching the given stage.
func (m *WebhookMetrics) IncStage(stage, subscriptionType string) {
	if m == nil || m.stages == nil {
		return
	}
	m.stages.WithLabelValues(normalizeLabel(stage), normalizeLabel(subscriptionType)).Inc()
}

// IncWelcome counts one welcome attempt; reason is empty for successful sends.
func (m *WebhookMetrics) IncWelcome(status, reason string) {
	if m == nil || m.welcome == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.welcome.WithLabelValues(normalizeLabel(status), reason).Inc()
}

package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lynk-ai/lynk-backend/internal/email"
	"github.com/lynk-ai/lynk-backend/internal/hubspot"
	"github.com/lynk-ai/lynk-backend/internal/systemmetrics"
	"github.com/lynk-ai/lynk-backend/pkg/config"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

const testAPIKey = "internal-key"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) IdempotencyKey(scope, key string) string { return "idem:" + scope + ":" + key }

func (m *memoryRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryRedis) RateLimitKey(policy, subject string) string { return "rl:" + policy + ":" + subject }

type stubHubSpotService struct {
	webhookCalls int
	listCalls    int
	syncCalls    int
}

func (s *stubHubSpotService) HandleWebhook(context.Context, []byte, string) (*hubspot.WebhookResult, error) {
	s.webhookCalls++
	return &hubspot.WebhookResult{Status: "success", Message: "Webhook received and processed", EventID: "evt"}, nil
}

func (s *stubHubSpotService) SyncContacts(context.Context, int) (*hubspot.SyncResult, error) {
	s.syncCalls++
	return &hubspot.SyncResult{Status: "success"}, nil
}

func (s *stubHubSpotService) ListContacts(context.Context, pagination.Params) (*hubspot.ContactsResult, error) {
	s.listCalls++
	return &hubspot.ContactsResult{Status: "success", Contacts: []models.MarketingContact{}}, nil
}

type stubEmailService struct {
	mu     sync.Mutex
	queued int
}

func (s *stubEmailService) Enqueue(_ context.Context, req email.SendRequest) (*email.QueuedResult, error) {
	s.mu.Lock()
	s.queued++
	s.mu.Unlock()
	return &email.QueuedResult{Message: "Email to " + req.Recipient + " has been queued"}, nil
}

func (s *stubEmailService) Run(context.Context) error { return nil }

type stubAgentCounter struct {
	calls int
}

func (s *stubAgentCounter) IncrementAgentCount(context.Context) (*systemmetrics.AgentCount, error) {
	s.calls++
	return &systemmetrics.AgentCount{AgentCount: int64(s.calls)}, nil
}

type testRouter struct {
	handler http.Handler
	hubspot *stubHubSpotService
	agents  *stubAgentCounter
	email   *stubEmailService
}

func newTestRouter(t *testing.T) testRouter {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Env: "dev", Name: "Lynk AI"},
		Security: config.SecurityConfig{InternalAPIKey: testAPIKey, CORSOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{
			EmailWindow:         time.Minute,
			EmailRecipientLimit: 3,
		},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
	reg := prometheus.NewRegistry()
	metrics.NewWebhookMetrics(reg).IncStage("received", "contact.creation")

	hs := &stubHubSpotService{}
	agents := &stubAgentCounter{}
	mail := &stubEmailService{}
	handler := NewRouter(
		cfg,
		logger.Nop(),
		stubPinger{},
		newMemoryRedis(),
		reg,
		hs,
		nil,
		nil,
		mail,
		agents,
	)
	return testRouter{handler: handler, hubspot: hs, agents: agents, email: mail}
}

func (tr testRouter) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	tr.handler.ServeHTTP(resp, req)
	return resp
}

func TestInternalRoutesRejectMissingAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "contacts", method: http.MethodGet, path: "/hubspot/contacts"},
		{name: "sync", method: http.MethodPost, path: "/hubspot/sync-contacts"},
		{name: "agent count", method: http.MethodPost, path: "/api/v1/metrics/increment-agent-count"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestRouter(t)
			for _, headers := range []map[string]string{nil, {"X-API-Key": "wrong"}} {
				resp := tr.do(tc.method, tc.path, "", headers)
				if resp.Code != http.StatusForbidden {
					t.Fatalf("expected 403 got %d", resp.Code)
				}
				var body struct {
					Error struct {
						Message string `json:"message"`
					} `json:"error"`
				}
				if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Error.Message != "Invalid API key" {
					t.Fatalf("unexpected message %q", body.Error.Message)
				}
			}
			if tr.hubspot.listCalls+tr.hubspot.syncCalls+tr.agents.calls != 0 {
				t.Fatal("no dependency should be touched when the key is rejected")
			}
		})
	}
}

func TestInternalRoutesAcceptValidAPIKey(t *testing.T) {
	tr := newTestRouter(t)
	headers := map[string]string{"X-API-Key": testAPIKey}

	if resp := tr.do(http.MethodGet, "/hubspot/contacts", "", headers); resp.Code != http.StatusOK {
		t.Fatalf("contacts: expected 200 got %d", resp.Code)
	}
	if resp := tr.do(http.MethodPost, "/hubspot/sync-contacts?limit=5", "", headers); resp.Code != http.StatusOK {
		t.Fatalf("sync: expected 200 got %d", resp.Code)
	}
	resp := tr.do(http.MethodPost, "/api/v1/metrics/increment-agent-count", "", headers)
	if resp.Code != http.StatusOK {
		t.Fatalf("agent count: expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"agent_count":1`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestWebhookIsPublic(t *testing.T) {
	tr := newTestRouter(t)
	resp := tr.do(http.MethodPost, "/hubspot/webhook", `{"subscriptionType":"contact.creation","objectId":1}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if tr.hubspot.webhookCalls != 1 {
		t.Fatalf("expected one webhook call, got %d", tr.hubspot.webhookCalls)
	}
}

func TestPublicRoutes(t *testing.T) {
	tr := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   string
	}{
		{method: http.MethodGet, path: "/", want: "Welcome to Lynk AI"},
		{method: http.MethodGet, path: "/health", want: `"healthy"`},
		{method: http.MethodGet, path: "/health/ready", want: `"ready"`},
		{method: http.MethodGet, path: "/metrics", want: "lynk_webhook_stage_total"},
		{
			method: http.MethodPost,
			path:   "/email/send",
			body:   `{"recipient":"jane@example.com","subject":"Hi","template_name":"welcome"}`,
			want:   "Email to jane@example.com has been queued",
		},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp := tr.do(tc.method, tc.path, tc.body, nil)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
			}
			if !strings.Contains(resp.Body.String(), tc.want) {
				t.Fatalf("expected %q in %s", tc.want, resp.Body.String())
			}
		})
	}
}

func TestEmailSendIdempotencyKeyReplays(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"recipient":"jane@example.com","subject":"Hi","template_name":"welcome"}`
	headers := map[string]string{"Idempotency-Key": "send-1"}

	first := tr.do(http.MethodPost, "/email/send", body, headers)
	second := tr.do(http.MethodPost, "/email/send", body, headers)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("unexpected statuses %d %d", first.Code, second.Code)
	}
	if tr.email.queued != 1 {
		t.Fatalf("expected a single enqueue, got %d", tr.email.queued)
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replayed response")
	}
}

func TestEmailSendRecipientRateLimit(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"recipient":"jane@example.com","subject":"Hi","template_name":"welcome"}`

	for i := 0; i < 3; i++ {
		if resp := tr.do(http.MethodPost, "/email/send", body, nil); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.Code)
		}
	}
	resp := tr.do(http.MethodPost, "/email/send", body, nil)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if tr.email.queued != 3 {
		t.Fatalf("expected 3 enqueues, got %d", tr.email.queued)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	tr := newTestRouter(t)
	resp := tr.do(http.MethodGet, "/health", "", map[string]string{"X-Request-Id": "req-123"})
	if got := resp.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	tr := newTestRouter(t)
	resp := tr.do(http.MethodOptions, "/events", "", map[string]string{
		"Origin":                        "https://app.lynk.ai",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if resp.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", resp.Header())
	}
}

package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTemplates map[string]bool

func (s stubTemplates) Has(name string) bool { return s[name] }

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Message
	sendFn func(ctx context.Context, msg mailer.Message) error
	done   chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{done: make(chan struct{}, 16)}
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

func newTestService(t *testing.T, m Mailer, queueSize int) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Mailer:    m,
		Templates: stubTemplates{"welcome_email": true},
		Logger:    logger.Nop(),
		QueueSize: queueSize,
		Workers:   1,
	})
	require.NoError(t, err)
	return svc
}

func waitForSend(t *testing.T, m *fakeMailer) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email delivery")
	}
}

func TestEnqueueDeliversInBackground(t *testing.T) {
	m := newFakeMailer()
	svc := newTestService(t, m, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	reqCtx, reqCancel := context.WithCancel(context.Background())
	result, err := svc.Enqueue(reqCtx, SendRequest{
		Recipient:    " jane@example.com ",
		Subject:      "Hello",
		TemplateName: "welcome_email",
		TemplateData: map[string]any{"first_name": "Jane"},
	})
	reqCancel()
	require.NoError(t, err)
	assert.Equal(t, "Email to jane@example.com has been queued", result.Message)

	waitForSend(t, m)
	sent := m.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@example.com", sent[0].To)
	assert.Equal(t, "Hello", sent[0].Subject)
	assert.Equal(t, "Jane", sent[0].Data["first_name"])
}

func TestEnqueueDeliveryOutlivesRequestContext(t *testing.T) {
	m := newFakeMailer()
	var sendErr error
	m.sendFn = func(ctx context.Context, _ mailer.Message) error {
		sendErr = ctx.Err()
		return nil
	}
	svc := newTestService(t, m, 4)

	reqCtx, reqCancel := context.WithCancel(context.Background())
	_, err := svc.Enqueue(reqCtx, SendRequest{Recipient: "a@example.com", Subject: "s", TemplateName: "welcome_email"})
	require.NoError(t, err)
	reqCancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()
	waitForSend(t, m)
	assert.NoError(t, sendErr)
}

func TestEnqueueRejectsUnknownTemplate(t *testing.T) {
	m := newFakeMailer()
	svc := newTestService(t, m, 4)

	_, err := svc.Enqueue(context.Background(), SendRequest{Recipient: "a@example.com", Subject: "s", TemplateName: "missing"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, m.messages())
}

func TestEnqueueRejectsWhenQueueFull(t *testing.T) {
	svc := newTestService(t, newFakeMailer(), 1)
	req := SendRequest{Recipient: "a@example.com", Subject: "s", TemplateName: "welcome_email"}

	_, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), req)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestRunDrainsQueueOnShutdown(t *testing.T) {
	m := newFakeMailer()
	svc := newTestService(t, m, 4)
	req := SendRequest{Recipient: "a@example.com", Subject: "s", TemplateName: "welcome_email"}
	for i := 0; i < 3; i++ {
		_, err := svc.Enqueue(context.Background(), req)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))
	assert.Len(t, m.messages(), 3)
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	m := newFakeMailer()
	m.sendFn = func(context.Context, mailer.Message) error { return errors.New("smtp down") }
	svc := newTestService(t, m, 4)

	_, err := svc.Enqueue(context.Background(), SendRequest{Recipient: "a@example.com", Subject: "s", TemplateName: "welcome_email"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Run(ctx))
	assert.Len(t, m.messages(), 1)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Templates: stubTemplates{}, Logger: logger.Nop()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Mailer: newFakeMailer(), Logger: logger.Nop()})
	assert.Error(t, err)
}

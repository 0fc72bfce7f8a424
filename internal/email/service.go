package email

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/mailer"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
)

const (
	defaultQueueSize   = 100
	defaultWorkers     = 2
	defaultSendTimeout = 30 * time.Second
)

// SendRequest is a templated email submitted through POST /email/send.
type SendRequest struct {
	Recipient    string         `json:"recipient" validate:"required,email"`
	CC           string         `json:"cc" validate:"omitempty,email"`
	Subject      string         `json:"subject" validate:"required"`
	TemplateName string         `json:"template_name" validate:"required"`
	TemplateData map[string]any `json:"template_data"`
}

type QueuedResult struct {
	Message string `json:"message"`
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Templates reports whether a template pair exists.
type Templates interface {
	Has(name string) bool
}

type Service interface {
	Enqueue(ctx context.Context, req SendRequest) (*QueuedResult, error)
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Mailer      Mailer
	Templates   Templates
	Metrics     *metrics.EmailMetrics
	Logger      *logger.Logger
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

type service struct {
	mailer      Mailer
	templates   Templates
	metrics     *metrics.EmailMetrics
	logg        *logger.Logger
	queue       chan job
	workers     int
	sendTimeout time.Duration
}

type job struct {
	ctx context.Context
	msg mailer.Message
}

func NewService(params ServiceParams) (Service, error) {
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	if params.Templates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "template registry required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	queueSize := params.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	sendTimeout := params.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &service{
		mailer:      params.Mailer,
		templates:   params.Templates,
		metrics:     params.Metrics,
		logg:        params.Logger,
		queue:       make(chan job, queueSize),
		workers:     workers,
		sendTimeout: sendTimeout,
	}, nil
}

// Enqueue accepts the email for background delivery. Delivery failures are
// only logged; callers learn nothing beyond acceptance.
func (s *service) Enqueue(ctx context.Context, req SendRequest) (*QueuedResult, error) {
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if !s.templates.Has(req.TemplateName) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown email template").
			WithDetails(map[string]string{"template_name": req.TemplateName})
	}

	data := req.TemplateData
	if data == nil {
		data = map[string]any{}
	}
	// the request context is cancelled once the response is written
	jobCtx := s.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"recipient": recipient,
		"template":  req.TemplateName,
	})
	queued := job{
		ctx: jobCtx,
		msg: mailer.Message{
			To:       recipient,
			CC:       strings.TrimSpace(req.CC),
			Subject:  req.Subject,
			Template: req.TemplateName,
			Data:     data,
		},
	}

	select {
	case s.queue <- queued:
	default:
		s.logg.Warn(jobCtx, "email queue is full; rejecting send")
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email queue is full")
	}
	s.metrics.SetQueueDepth(len(s.queue))
	s.logg.Info(jobCtx, "email queued")
	return &QueuedResult{Message: fmt.Sprintf("Email to %s has been queued", recipient)}, nil
}

// Run delivers queued emails until ctx is cancelled, then drains what is
// already queued before returning.
func (s *service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx)
		}()
	}
	wg.Wait()
	s.drain()
	return nil
}

func (s *service) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.deliver(j)
		}
	}
}

func (s *service) drain() {
	for {
		select {
		case j := <-s.queue:
			s.deliver(j)
		default:
			return
		}
	}
}

func (s *service) deliver(j job) {
	s.metrics.SetQueueDepth(len(s.queue))
	ctx, cancel := context.WithTimeout(j.ctx, s.sendTimeout)
	defer cancel()

	if err := s.mailer.Send(ctx, j.msg); err != nil {
		s.metrics.IncDispatched(j.msg.Template, "failed")
		s.logg.Error(j.ctx, "queued email delivery failed", err)
		return
	}
	s.metrics.IncDispatched(j.msg.Template, "sent")
	s.logg.Info(j.ctx, "queued email sent")
}

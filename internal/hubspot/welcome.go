package hubspot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lynk-ai/lynk-backend/pkg/enums"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/mailer"
)

// WelcomeReason is the typed failure of a welcome attempt; empty means the email was sent.
type WelcomeReason string

const (
	WelcomeReasonInvalidFormat        WelcomeReason = "invalid_format"
	WelcomeReasonValidatorUnavailable WelcomeReason = "validator_unavailable"
	WelcomeReasonDeliveryFailed       WelcomeReason = "delivery_failed"
)

// WelcomeOutcome is the record folded back into the contact's communications log.
type WelcomeOutcome struct {
	Success     bool                 `json:"success"`
	Subject     string               `json:"subject"`
	Message     string               `json:"message"`
	Timestamp   time.Time            `json:"timestamp"`
	MessageType enums.MessageType    `json:"message_type"`
	Status      enums.DeliveryStatus `json:"status"`
	Template    enums.EmailTemplate  `json:"template"`
}

// WelcomeResult always carries a well-formed Outcome; Reason is set only on failure.
type WelcomeResult struct {
	Outcome WelcomeOutcome
	Reason  WelcomeReason
}

func (r WelcomeResult) Sent() bool {
	return r.Reason == ""
}

// WelcomeRequest describes the freshly enriched contact. PriorSource is the source
// stored before this webhook's upsert, empty when the contact is new.
type WelcomeRequest struct {
	Email       string
	FirstName   string
	Company     string
	PriorSource enums.ContactSource
}

type AddressValidator interface {
	IsValidFormat(ctx context.Context, email string) (bool, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Branding holds the static fields merged into every welcome template.
type Branding struct {
	AppName        string
	ReplyTo        string
	SupportContact string
	Website        string
}

type WelcomerParams struct {
	Validator        AddressValidator
	Mailer           Mailer
	Branding         Branding
	CC               string
	ValidatorTimeout time.Duration
	SendTimeout      time.Duration
	Logger           *logger.Logger
	Now              func() time.Time
}

// Welcomer validates, renders and sends the welcome email for a new contact.
type Welcomer struct {
	validator        AddressValidator
	mailer           Mailer
	branding         Branding
	cc               string
	validatorTimeout time.Duration
	sendTimeout      time.Duration
	logg             *logger.Logger
	now              func() time.Time
}

func NewWelcomer(params WelcomerParams) (*Welcomer, error) {
	if params.Validator == nil {
		return nil, errors.New("address validator required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if strings.TrimSpace(params.Branding.AppName) == "" {
		return nil, errors.New("branding app name required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Welcomer{
		validator:        params.Validator,
		mailer:           params.Mailer,
		branding:         params.Branding,
		cc:               params.CC,
		validatorTimeout: params.ValidatorTimeout,
		sendTimeout:      params.SendTimeout,
		logg:             params.Logger,
		now:              now,
	}, nil
}

// SelectTemplate applies the variant precedence: newsletter history, then a known first name.
func SelectTemplate(priorSource enums.ContactSource, firstName string) enums.EmailTemplate {
	switch {
	case priorSource.Provenance() == enums.ProvenanceNewsletter:
		return enums.EmailTemplateWelcomeNewsletter
	case strings.TrimSpace(firstName) != "":
		return enums.EmailTemplateWelcome
	default:
		return enums.EmailTemplateWelcomeNoName
	}
}

func (w *Welcomer) subject(template enums.EmailTemplate, firstName string) string {
	switch template {
	case enums.EmailTemplateWelcomeNewsletter:
		return fmt.Sprintf("Thanks for joining %s from our newsletter!", w.branding.AppName)
	case enums.EmailTemplateWelcome:
		return fmt.Sprintf("Welcome to %s, %s!", w.branding.AppName, firstName)
	default:
		return fmt.Sprintf("Welcome to %s!", w.branding.AppName)
	}
}

// Send never returns an error: every failure is folded into the result.
func (w *Welcomer) Send(ctx context.Context, req WelcomeRequest) WelcomeResult {
	firstName := capitalize(req.FirstName)
	template := SelectTemplate(req.PriorSource, firstName)
	outcome := WelcomeOutcome{
		Subject:     w.subject(template, firstName),
		Timestamp:   w.now().UTC(),
		MessageType: enums.MessageTypeWelcome,
		Status:      enums.DeliveryStatusFailed,
		Template:    template,
	}
	ctx = w.logg.WithFields(ctx, map[string]any{"template": string(template)})

	valid, err := w.validate(ctx, req.Email)
	if err != nil {
		w.logg.Error(ctx, "email validation unavailable", err)
		outcome.Message = fmt.Sprintf("Email validation unavailable: %v", err)
		return WelcomeResult{Outcome: outcome, Reason: WelcomeReasonValidatorUnavailable}
	}
	if !valid {
		w.logg.Warn(ctx, "welcome email skipped: invalid address format")
		outcome.Message = fmt.Sprintf("Invalid email format: %s", req.Email)
		return WelcomeResult{Outcome: outcome, Reason: WelcomeReasonInvalidFormat}
	}

	sendCtx, cancel := withOptionalTimeout(ctx, w.sendTimeout)
	defer cancel()
	err = w.mailer.Send(sendCtx, mailer.Message{
		To:       req.Email,
		CC:       w.cc,
		Subject:  outcome.Subject,
		Template: string(template),
		Data: map[string]any{
			"email":           req.Email,
			"first_name":      firstName,
			"company":         strings.TrimSpace(req.Company),
			"app_name":        w.branding.AppName,
			"reply_to":        w.branding.ReplyTo,
			"support_contact": w.branding.SupportContact,
			"website":         w.branding.Website,
			"year":            outcome.Timestamp.Year(),
		},
	})
	if err != nil {
		w.logg.Error(ctx, "welcome email delivery failed", err)
		outcome.Message = fmt.Sprintf("Failed to send welcome email: %v", err)
		return WelcomeResult{Outcome: outcome, Reason: WelcomeReasonDeliveryFailed}
	}

	outcome.Success = true
	outcome.Status = enums.DeliveryStatusSent
	outcome.Message = "Welcome email sent successfully"
	w.logg.Info(ctx, "welcome email sent")
	return WelcomeResult{Outcome: outcome}
}

func (w *Welcomer) validate(ctx context.Context, email string) (bool, error) {
	validateCtx, cancel := withOptionalTimeout(ctx, w.validatorTimeout)
	defer cancel()
	return w.validator.IsValidFormat(validateCtx, email)
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

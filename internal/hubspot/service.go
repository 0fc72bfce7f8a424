package hubspot

import (
	"context"
	"time"

	"github.com/lynk-ai/lynk-backend/internal/contacts"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	dbtypes "github.com/lynk-ai/lynk-backend/pkg/db/types"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/hubspot"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
	"github.com/lynk-ai/lynk-backend/pkg/pagination"
)

const (
	WebhookEventName        = "hubspot_webhook"
	webhookEventDescription = "HubSpot webhook notification"
	defaultSyncPageSize     = 100
)

// CRM is the subset of the HubSpot client used by the pipeline and bulk sync.
type CRM interface {
	GetContact(ctx context.Context, id string) (*hubspot.Contact, error)
	ListContacts(ctx context.Context, after string, limit int) (*hubspot.ContactPage, error)
}

// EventLog appends webhook deliveries to the events log.
type EventLog interface {
	Append(ctx context.Context, event *models.Event) error
}

type WelcomeSender interface {
	Send(ctx context.Context, req WelcomeRequest) WelcomeResult
}

// Locker serializes work per contact email. Lock returns an unlock func.
type Locker interface {
	Lock(ctx context.Context, id string) (func(), error)
}

// Service is the webhook ingestion pipeline plus the admin contact operations.
type Service interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error)
	SyncContacts(ctx context.Context, limit int) (*SyncResult, error)
	ListContacts(ctx context.Context, params pagination.Params) (*ContactsResult, error)
}

type ServiceParams struct {
	Contacts     contacts.Service
	Events       EventLog
	CRM          CRM
	Welcome      WelcomeSender
	Locker       Locker
	Metrics      *metrics.WebhookMetrics
	SyncMetrics  *metrics.SyncMetrics
	Logger       *logger.Logger
	CRMTimeout   time.Duration
	SyncPageSize int
}

type service struct {
	contacts     contacts.Service
	events       EventLog
	crm          CRM
	welcome      WelcomeSender
	locker       Locker
	metrics      *metrics.WebhookMetrics
	syncMetrics  *metrics.SyncMetrics
	logg         *logger.Logger
	crmTimeout   time.Duration
	syncPageSize int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Contacts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "contacts service required")
	}
	if params.Events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event log required")
	}
	if params.CRM == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "crm client required")
	}
	if params.Welcome == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "welcome sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	pageSize := params.SyncPageSize
	if pageSize <= 0 {
		pageSize = defaultSyncPageSize
	}
	return &service{
		contacts:     params.Contacts,
		events:       params.Events,
		crm:          params.CRM,
		welcome:      params.Welcome,
		locker:       params.Locker,
		metrics:      params.Metrics,
		syncMetrics:  params.SyncMetrics,
		logg:         params.Logger,
		crmTimeout:   params.CRMTimeout,
		syncPageSize: pageSize,
	}, nil
}

type WebhookResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	EventID string `json:"event_id"`

	Enriched bool           `json:"-"`
	Welcome  *WelcomeResult `json:"-"`
}

// enrichedContact is a contact written by this delivery. unlock must be
// called once the communications log has been updated.
type enrichedContact struct {
	email       string
	profile     *hubspot.Contact
	priorSource enums.ContactSource
	unlock      func()
}

// HandleWebhook only fails when the event itself cannot be logged; enrichment
// and welcome failures are logged and folded into the result.
func (s *service) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	decoded := decodePayload(body)
	subType := string(enums.SubscriptionUnknown)
	if decoded.Notification != nil {
		subType = string(decoded.Notification.SubscriptionType)
		ctx = s.logg.WithFields(ctx, map[string]any{
			"subscription_type": decoded.Notification.RawSubscriptionType,
			"object_id":         decoded.Notification.ObjectID,
		})
	}
	s.metrics.IncStage(metrics.StageReceived, subType)

	if signature == "" {
		s.logg.Info(ctx, "hubspot webhook received without signature header")
	} else {
		// X-HubSpot-Signature is not verified yet.
		s.logg.Info(ctx, "hubspot webhook received with unverified signature header")
	}
	if decoded.BatchSize > 1 {
		batchCtx := s.logg.WithField(ctx, "batch_size", decoded.BatchSize)
		s.logg.Warn(batchCtx, "hubspot webhook batch received; only the first notification is processed")
	}

	enriched := s.enrich(ctx, decoded.Notification)
	if enriched != nil {
		defer enriched.unlock()
	}

	desc := webhookEventDescription
	event := &models.Event{
		Name:        WebhookEventName,
		Description: &desc,
		Data:        decoded.Document,
		Processed:   enriched != nil,
	}
	if err := s.events.Append(ctx, event); err != nil {
		s.metrics.IncStage(metrics.StageEventLogFailed, subType)
		s.logg.Error(ctx, "failed to log hubspot webhook event", err)
		return nil, err
	}
	ctx = s.logg.WithEventID(ctx, event.ID.String())

	result := &WebhookResult{
		Status:   "success",
		Message:  "Webhook received and processed",
		EventID:  event.ID.String(),
		Enriched: enriched != nil,
	}
	if enriched == nil {
		s.logg.Info(ctx, "hubspot webhook logged without enrichment")
		return result, nil
	}

	welcome := s.welcome.Send(ctx, WelcomeRequest{
		Email:       enriched.email,
		FirstName:   enriched.profile.FirstName,
		Company:     enriched.profile.Company,
		PriorSource: enriched.priorSource,
	})
	s.metrics.IncWelcome(string(welcome.Outcome.Status), string(welcome.Reason))
	s.recordWelcome(ctx, enriched.email, welcome)
	result.Welcome = &welcome
	if !welcome.Sent() {
		s.logg.Warn(s.logg.WithField(ctx, "welcome_reason", string(welcome.Reason)), "welcome email not sent")
	}

	s.logg.Info(ctx, "hubspot webhook processed")
	return result, nil
}

// enrich resolves a contact-creation notification into an upserted contact.
// It returns nil whenever enrichment is skipped or fails.
func (s *service) enrich(ctx context.Context, n *Notification) *enrichedContact {
	if n == nil {
		s.logg.Info(ctx, "hubspot webhook has no subscription type or object id; skipping enrichment")
		return nil
	}

	switch n.SubscriptionType {
	case enums.SubscriptionContactCreation:
	case enums.SubscriptionContactPropertyChange,
		enums.SubscriptionContactDeletion,
		enums.SubscriptionContactMerge,
		enums.SubscriptionContactRestore:
		s.logg.Info(ctx, "no enrichment for subscription type")
		return nil
	default:
		s.logg.Warn(ctx, "unknown hubspot subscription type; skipping enrichment")
		return nil
	}

	if n.ObjectID == "" {
		s.logg.Warn(ctx, "contact creation webhook without object id")
		return nil
	}

	profile, err := s.fetchContact(ctx, n.ObjectID)
	if err != nil {
		s.metrics.IncStage(metrics.StageFetchFailed, string(n.SubscriptionType))
		s.logg.Error(ctx, "failed to fetch hubspot contact", err)
		return nil
	}

	email := contacts.NormalizeEmail(profile.Email)
	if email == "" {
		s.metrics.IncStage(metrics.StageMissingEmail, string(n.SubscriptionType))
		s.logg.Warn(ctx, "hubspot contact has no email; skipping contact upsert")
		return nil
	}
	ctx = s.logg.WithEmail(ctx, email)

	unlock := s.lockContact(ctx, email, string(n.SubscriptionType))
	priorSource := s.priorSource(ctx, email)

	externalID := profile.ID
	if externalID == "" {
		externalID = n.ObjectID
	}
	_, err = s.contacts.Upsert(ctx, email, contacts.Fields{
		Name:       profile.FullName(),
		Company:    profile.Company,
		Source:     enums.ContactSourceFromChangeSource(n.ChangeSource),
		ExternalID: externalID,
		RawProfile: dbtypes.JSONDocument(profile.Raw),
	})
	if err != nil {
		unlock()
		s.metrics.IncStage(metrics.StageUpsertFailed, string(n.SubscriptionType))
		s.logg.Error(ctx, "failed to upsert marketing contact", err)
		return nil
	}
	s.metrics.IncStage(metrics.StageContactUpsert, string(n.SubscriptionType))

	return &enrichedContact{
		email:       email,
		profile:     profile,
		priorSource: priorSource,
		unlock:      unlock,
	}
}

func (s *service) fetchContact(ctx context.Context, id string) (*hubspot.Contact, error) {
	if s.crmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.crmTimeout)
		defer cancel()
	}
	profile, err := s.crm.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hubspot contact not found")
	}
	return profile, nil
}

// lockContact never blocks the pipeline for good: on timeout or redis failure
// the delivery proceeds unserialized.
func (s *service) lockContact(ctx context.Context, email, subType string) func() {
	noop := func() {}
	if s.locker == nil {
		return noop
	}
	unlock, err := s.locker.Lock(ctx, email)
	if err != nil {
		s.metrics.IncStage(metrics.StageLockSkipped, subType)
		s.logg.Warn(s.logg.WithField(ctx, "lock_error", err.Error()), "proceeding without per-contact lock")
		return noop
	}
	return unlock
}

// priorSource snapshots the stored source before the upsert replaces it.
func (s *service) priorSource(ctx context.Context, email string) enums.ContactSource {
	existing, err := s.contacts.FindByEmail(ctx, email)
	if err != nil {
		if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			s.logg.Error(ctx, "failed to read existing contact; assuming no prior source", err)
		}
		return ""
	}
	return existing.Source
}

func (s *service) recordWelcome(ctx context.Context, email string, welcome WelcomeResult) {
	outcome := welcome.Outcome
	entry := models.MarketingCommunication{
		Channel:     enums.CommunicationChannelEmail,
		Subject:     outcome.Subject,
		Body:        outcome.Message,
		SentAt:      outcome.Timestamp,
		MessageType: outcome.MessageType,
		Status:      outcome.Status,
		Success:     outcome.Success,
		Template:    string(outcome.Template),
	}
	if err := s.contacts.AppendCommunication(ctx, email, entry); err != nil {
		s.logg.Error(ctx, "failed to append welcome email to communications log", err)
	}
}

type ContactsResult struct {
	Status   string                    `json:"status"`
	Count    int                       `json:"count"`
	Contacts []models.MarketingContact `json:"contacts"`
}

func (s *service) ListContacts(ctx context.Context, params pagination.Params) (*ContactsResult, error) {
	rows, err := s.contacts.List(ctx, params.Normalize())
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.MarketingContact{}
	}
	return &ContactsResult{Status: "success", Count: len(rows), Contacts: rows}, nil
}

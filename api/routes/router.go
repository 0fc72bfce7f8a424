package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lynk-ai/lynk-backend/api/controllers"
	"github.com/lynk-ai/lynk-backend/api/middleware"
	"github.com/lynk-ai/lynk-backend/internal/cronjobs"
	"github.com/lynk-ai/lynk-backend/internal/email"
	"github.com/lynk-ai/lynk-backend/internal/events"
	"github.com/lynk-ai/lynk-backend/internal/hubspot"
	"github.com/lynk-ai/lynk-backend/internal/systemmetrics"
	"github.com/lynk-ai/lynk-backend/pkg/config"
	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer uses.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	redis.RateLimitStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	hubspotService hubspot.Service,
	eventsService events.Service,
	cronService cronjobs.Service,
	emailService email.Service,
	agentCounter systemmetrics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Security.CORSOrigins),
	)

	internalOnly := middleware.APIKey(cfg.Security.InternalAPIKey, logg)
	emailSendPolicy := middleware.NewRateLimitPolicy(
		"email_send",
		cfg.RateLimit.EmailWindow,
		cfg.RateLimit.EmailIPLimit,
		cfg.RateLimit.EmailRecipientLimit,
	)

	r.Get("/", controllers.Root(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health())
		r.Get("/ready", controllers.HealthReady(logg, dbP, redisStore))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/hubspot", func(r chi.Router) {
		r.Post("/webhook", controllers.HubSpotWebhook(hubspotService, logg))
		r.Group(func(r chi.Router) {
			r.Use(internalOnly)
			r.Get("/contacts", controllers.HubSpotContacts(hubspotService, logg))
			r.Post("/sync-contacts", controllers.HubSpotSyncContacts(hubspotService, logg))
		})
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", controllers.EventList(eventsService, logg))
		r.Post("/", controllers.EventCreate(eventsService, logg))
		r.Get("/{eventId}", controllers.EventGet(eventsService, logg))
		r.Put("/{eventId}", controllers.EventUpdate(eventsService, logg))
		r.Delete("/{eventId}", controllers.EventDelete(eventsService, logg))
	})

	r.Route("/cron", func(r chi.Router) {
		r.Get("/", controllers.CronList(cronService, logg))
		r.Post("/", controllers.CronCreate(cronService, logg))
		r.Get("/{jobId}", controllers.CronGet(cronService, logg))
		r.Put("/{jobId}", controllers.CronUpdate(cronService, logg))
		r.Delete("/{jobId}", controllers.CronDelete(cronService, logg))
		r.Post("/{jobId}/execute", controllers.CronExecute(cronService, logg))
	})

	r.With(
		middleware.Idempotency(redisStore, cfg.Idempotency.TTL, logg),
		middleware.RateLimit(emailSendPolicy, redisStore, logg),
	).Post("/email/send", controllers.EmailSend(emailService, logg))

	r.Route("/api/v1/metrics", func(r chi.Router) {
		r.Use(internalOnly)
		r.Post("/increment-agent-count", controllers.IncrementAgentCount(agentCounter, logg))
	})

	return r
}

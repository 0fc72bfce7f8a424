package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/lynk-ai/lynk-backend/api/routes"
	"github.com/lynk-ai/lynk-backend/internal/contacts"
	"github.com/lynk-ai/lynk-backend/internal/cronjobs"
	"github.com/lynk-ai/lynk-backend/internal/email"
	"github.com/lynk-ai/lynk-backend/internal/events"
	"github.com/lynk-ai/lynk-backend/internal/hubspot"
	"github.com/lynk-ai/lynk-backend/internal/locks"
	"github.com/lynk-ai/lynk-backend/internal/systemmetrics"
	"github.com/lynk-ai/lynk-backend/pkg/config"
	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/emailvalidation"
	hubspotclient "github.com/lynk-ai/lynk-backend/pkg/hubspot"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/mailer"
	"github.com/lynk-ai/lynk-backend/pkg/metrics"
	"github.com/lynk-ai/lynk-backend/pkg/migrate"
	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

const (
	serviceName     = "api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	crm, err := hubspotclient.NewClient(
		cfg.HubSpot.AccessToken,
		hubspotclient.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspotclient.WithTimeout(cfg.HubSpot.Timeout),
	)
	if err != nil {
		return err
	}
	validator, err := emailvalidation.NewClient(
		cfg.EmailValidation.APIKey,
		emailvalidation.WithBaseURL(cfg.EmailValidation.BaseURL),
		emailvalidation.WithTimeout(cfg.EmailValidation.Timeout),
	)
	if err != nil {
		return err
	}

	renderer, err := mailer.NewRenderer()
	if err != nil {
		return err
	}
	smtpSender, err := mailer.NewSMTPSender(cfg.SMTP)
	if err != nil {
		return err
	}
	gateway, err := mailer.NewGateway(mailer.GatewayParams{
		Renderer: renderer,
		Sender:   smtpSender,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return err
	}

	contactLocker, err := locks.NewKeyedLocker(locks.KeyedLockerParams{
		Store: redisClient,
		Scope: "contact",
		TTL:   cfg.Locks.ContactTTL,
		Wait:  cfg.Locks.ContactWait,
	})
	if err != nil {
		return err
	}
	cronLocker, err := locks.NewKeyedLocker(locks.KeyedLockerParams{
		Store: redisClient,
		Scope: "cron",
		TTL:   cfg.Locks.CronTTL,
	})
	if err != nil {
		return err
	}

	contactsService, err := contacts.NewService(contacts.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	eventsService, err := events.NewService(events.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	cronService, err := cronjobs.NewService(cronjobs.ServiceParams{
		Repo:    cronjobs.NewRepository(dbClient.DB()),
		Locker:  cronLocker,
		Metrics: metrics.NewCronJobMetrics(registry),
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	welcomer, err := hubspot.NewWelcomer(hubspot.WelcomerParams{
		Validator: validator,
		Mailer:    gateway,
		Branding: hubspot.Branding{
			AppName:        cfg.App.Name,
			ReplyTo:        cfg.Branding.ReplyTo,
			SupportContact: cfg.Branding.SupportContact,
			Website:        cfg.Branding.Website,
		},
		CC:               cfg.SMTP.CC,
		ValidatorTimeout: cfg.EmailValidation.Timeout,
		SendTimeout:      cfg.SMTP.Timeout,
		Logger:           logg,
	})
	if err != nil {
		return err
	}
	hubspotService, err := hubspot.NewService(hubspot.ServiceParams{
		Contacts:     contactsService,
		Events:       eventsService,
		CRM:          crm,
		Welcome:      welcomer,
		Locker:       contactLocker,
		Metrics:      metrics.NewWebhookMetrics(registry),
		SyncMetrics:  metrics.NewSyncMetrics(registry),
		Logger:       logg,
		CRMTimeout:   cfg.HubSpot.Timeout,
		SyncPageSize: cfg.HubSpot.SyncPageSize,
	})
	if err != nil {
		return err
	}

	emailService, err := email.NewService(email.ServiceParams{
		Mailer:      gateway,
		Templates:   renderer,
		Metrics:     metrics.NewEmailMetrics(registry),
		Logger:      logg,
		SendTimeout: cfg.SMTP.Timeout,
	})
	if err != nil {
		return err
	}
	agentCounter, err := systemmetrics.NewService(redisClient, logg)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			hubspotService,
			eventsService,
			cronService,
			emailService,
			agentCounter,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return emailService.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/lynk-ai/lynk-backend/pkg/env"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	Security        SecurityConfig
	HubSpot         HubSpotConfig
	EmailValidation EmailValidationConfig
	SMTP            SMTPConfig
	Branding        BrandingConfig
	Locks           LocksConfig
	RateLimit       RateLimitConfig
	Idempotency     IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// Cloud Run injects PORT; it wins over LYNK_APP_PORT.
	cfg.App.Port = env.First(cfg.App.Port, EnvCloudRunPort)
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LYNK_APP_ENV" required:"true"`
	Port         string `envconfig:"LYNK_APP_PORT" default:"8001"`
	Name         string `envconfig:"LYNK_APP_NAME" default:"Lynk AI"`
	LogLevel     string `envconfig:"LYNK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LYNK_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"LYNK_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"LYNK_DB_DSN"`

	LegacyHost     string `envconfig:"LYNK_DB_HOST"`
	LegacyPort     int    `envconfig:"LYNK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LYNK_DB_USER"`
	LegacyPassword string `envconfig:"LYNK_DB_PASSWORD"`
	LegacyName     string `envconfig:"LYNK_DB_NAME"`
	LegacySSLMode  string `envconfig:"LYNK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LYNK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LYNK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LYNK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LYNK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LYNK_REDIS_URL"`
	Address      string        `envconfig:"LYNK_REDIS_ADDR"`
	Password     string        `envconfig:"LYNK_REDIS_PASSWORD"`
	DB           int           `envconfig:"LYNK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LYNK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LYNK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LYNK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LYNK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LYNK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SecurityConfig struct {
	InternalAPIKey string   `envconfig:"LYNK_INTERNAL_API_KEY" required:"true"`
	CORSOrigins    []string `envconfig:"LYNK_CORS_ORIGINS" default:"*"`
}

type HubSpotConfig struct {
	AccessToken  string        `envconfig:"LYNK_HUBSPOT_ACCESS_TOKEN" required:"true"`
	BaseURL      string        `envconfig:"LYNK_HUBSPOT_BASE_URL" default:"https://api.hubapi.com"`
	Timeout      time.Duration `envconfig:"LYNK_HUBSPOT_TIMEOUT" default:"10s"`
	SyncPageSize int           `envconfig:"LYNK_HUBSPOT_SYNC_PAGE_SIZE" default:"100"`
}

type EmailValidationConfig struct {
	APIKey  string        `envconfig:"LYNK_EMAIL_VALIDATION_API_KEY" required:"true"`
	BaseURL string        `envconfig:"LYNK_EMAIL_VALIDATION_BASE_URL" default:"https://emailvalidation.abstractapi.com/v1"`
	Timeout time.Duration `envconfig:"LYNK_EMAIL_VALIDATION_TIMEOUT" default:"5s"`
}

type SMTPConfig struct {
	Host     string        `envconfig:"LYNK_SMTP_HOST" required:"true"`
	Port     int           `envconfig:"LYNK_SMTP_PORT" default:"587"`
	Username string        `envconfig:"LYNK_SMTP_USER"`
	Password string        `envconfig:"LYNK_SMTP_PASS"`
	From     string        `envconfig:"LYNK_SMTP_FROM" required:"true"`
	CC       string        `envconfig:"LYNK_SMTP_CC"`
	Timeout  time.Duration `envconfig:"LYNK_SMTP_TIMEOUT" default:"15s"`
}

// BrandingConfig holds the static fields merged into every transactional template.
type BrandingConfig struct {
	ReplyTo        string `envconfig:"LYNK_BRANDING_REPLY_TO" default:"hello@lynk.ai"`
	SupportContact string `envconfig:"LYNK_BRANDING_SUPPORT_CONTACT" default:"support@lynk.ai"`
	Website        string `envconfig:"LYNK_BRANDING_WEBSITE" default:"https://lynk.ai"`
}

type LocksConfig struct {
	ContactTTL  time.Duration `envconfig:"LYNK_LOCK_CONTACT_TTL" default:"1m"`
	ContactWait time.Duration `envconfig:"LYNK_LOCK_CONTACT_WAIT" default:"5s"`
	CronTTL     time.Duration `envconfig:"LYNK_LOCK_CRON_TTL" default:"5m"`
}

// RateLimitConfig throttles POST /email/send per client IP and per recipient.
// A zero limit disables that dimension.
type RateLimitConfig struct {
	EmailWindow         time.Duration `envconfig:"LYNK_RATE_LIMIT_EMAIL_WINDOW" default:"1m"`
	EmailIPLimit        int           `envconfig:"LYNK_RATE_LIMIT_EMAIL_IP" default:"30"`
	EmailRecipientLimit int           `envconfig:"LYNK_RATE_LIMIT_EMAIL_RECIPIENT" default:"5"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"LYNK_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

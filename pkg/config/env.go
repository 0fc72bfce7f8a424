package config

// EnvPrefix is passed to envconfig; every field carries an explicit envconfig tag.
const EnvPrefix = "LYNK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "LYNK_APP_ENV"
	EnvPort               = "LYNK_APP_PORT"
	EnvCloudRunPort       = "PORT"
	EnvDBDSN              = "LYNK_DB_DSN"
	EnvDBHost             = "LYNK_DB_HOST"
	EnvDBUser             = "LYNK_DB_USER"
	EnvDBName             = "LYNK_DB_NAME"
	EnvRedisURL           = "LYNK_REDIS_URL"
	EnvInternalAPIKey     = "LYNK_INTERNAL_API_KEY"
	EnvHubSpotToken       = "LYNK_HUBSPOT_ACCESS_TOKEN"
	EnvEmailValidationKey = "LYNK_EMAIL_VALIDATION_API_KEY"
	EnvSMTPHost           = "LYNK_SMTP_HOST"
	EnvSMTPFrom           = "LYNK_SMTP_FROM"
	EnvSMTPCC             = "LYNK_SMTP_CC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

const EnvPrefix = "TABLENOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	SlotLockLocal = "local"
	SlotLockRedis = "redis"
)

const (
	EnvAppEnv   = "TABLENOW_APP_ENV"
	EnvPort     = "TABLENOW_APP_PORT"
	EnvLogLevel = "TABLENOW_LOG_LEVEL"

	EnvDBDSN  = "TABLENOW_DB_DSN"
	EnvDBHost = "TABLENOW_DB_HOST"
	EnvDBUser = "TABLENOW_DB_USER"
	EnvDBName = "TABLENOW_DB_NAME"

	EnvRedisURL = "TABLENOW_REDIS_URL"

	EnvJWTSecret  = "TABLENOW_JWT_SECRET"
	EnvJWTIssuer  = "TABLENOW_JWT_ISSUER"
	EnvJWTExpMins = "TABLENOW_JWT_EXPIRATION_MINUTES"

	EnvReservationLocale      = "TABLENOW_RESERVATION_LOCALE"
	EnvReservationTimezone    = "TABLENOW_RESERVATION_TIMEZONE"
	EnvReservationSlotLock    = "TABLENOW_RESERVATION_SLOT_LOCK"
	EnvReservationSlotLockTTL = "TABLENOW_RESERVATION_SLOT_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

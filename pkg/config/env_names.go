package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// MB_-prefixed names so the prefix only matters for unannotated fields.
const EnvPrefix = "MB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MB_APP_ENV"
	EnvPort     = "MB_APP_PORT"
	EnvLogLevel = "MB_LOG_LEVEL"

	EnvDBDSN  = "MB_DB_DSN"
	EnvDBHost = "MB_DB_HOST"
	EnvDBUser = "MB_DB_USER"
	EnvDBName = "MB_DB_NAME"

	EnvRedisURL = "MB_REDIS_URL"

	EnvJWTSecret              = "MB_JWT_SECRET"
	EnvJWTIssuer              = "MB_JWT_ISSUER"
	EnvJWTExpMins             = "MB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MB_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

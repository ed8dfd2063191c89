package config

const EnvPrefix = "GUDANG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "GUDANG_APP_ENV"
	EnvPort      = "GUDANG_APP_PORT"
	EnvDBDSN     = "GUDANG_DB_DSN"
	EnvDBHost    = "GUDANG_DB_HOST"
	EnvDBUser    = "GUDANG_DB_USER"
	EnvDBName    = "GUDANG_DB_NAME"
	EnvRedisURL  = "GUDANG_REDIS_URL"
	EnvJWTSecret = "GUDANG_JWT_SECRET"
	EnvUseSQLite = "GUDANG_USE_SQLITE"
	EnvLegacyMap = "GUDANG_IDENTITY_LEGACY_MAP"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

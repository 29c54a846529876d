package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "STOREFRONT_APP_ENV"
	EnvPort      = "STOREFRONT_APP_PORT"
	EnvLogLevel  = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat = "STOREFRONT_LOG_FORMAT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBPort = "STOREFRONT_DB_PORT"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBPass = "STOREFRONT_DB_PASSWORD"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvUseSQLite   = "STOREFRONT_USE_SQLITE"
	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvCatalogFetchTimeout = "STOREFRONT_CATALOG_FETCH_TIMEOUT"
	EnvCatalogCacheTTL     = "STOREFRONT_CATALOG_CACHE_TTL"
	EnvCatalogURLDebounce  = "STOREFRONT_CATALOG_URL_DEBOUNCE"

	EnvSessionIdleTTL = "STOREFRONT_SESSION_IDLE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

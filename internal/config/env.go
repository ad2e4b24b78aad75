package config

const EnvPrefix = "DLM"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv       = "DLM_APP_ENV"
	EnvPort         = "DLM_APP_PORT"
	EnvLogLevel     = "DLM_LOG_LEVEL"
	EnvLogFormat    = "DLM_LOG_FORMAT"
	EnvLogWarnStack = "DLM_LOG_WARN_STACK"

	EnvUpstreamAPIKey  = "DLM_UPSTREAM_API_KEY"
	EnvUpstreamURL     = "DLM_UPSTREAM_URL"
	EnvUpstreamTimeout = "DLM_UPSTREAM_TIMEOUT"

	EnvProductMap = "DLM_PRODUCT_MAP"

	EnvLicenseEndpoint = "DLM_LICENSE_ENDPOINT"
	EnvSiteURL         = "DLM_SITE_URL"
	EnvSiteID          = "DLM_SITE_ID"
	EnvPluginID        = "DLM_PLUGIN_ID"
	EnvTestMode        = "DLM_TEST_MODE"
	EnvLocalMode       = "DLM_LOCAL_MODE"
	EnvEnvironmentType = "DLM_ENVIRONMENT_TYPE"
	EnvDebug           = "DLM_DEBUG"
	EnvHostname        = "DLM_HOSTNAME"
	EnvClientTimeout   = "DLM_CLIENT_TIMEOUT"

	EnvStoreDriver   = "DLM_STORE_DRIVER"
	EnvStoreDSN      = "DLM_STORE_DSN"
	EnvStoreDatabase = "DLM_STORE_DATABASE"
	EnvStoreTable    = "DLM_STORE_TABLE"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

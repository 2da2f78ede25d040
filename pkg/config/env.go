package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv             = "STOREFRONT_APP_ENV"
	EnvBridgePort         = "STOREFRONT_BRIDGE_PORT"
	EnvLogLevel           = "STOREFRONT_LOG_LEVEL"
	EnvAPIURL             = "STOREFRONT_API_URL"
	EnvAPITimeout         = "STOREFRONT_API_TIMEOUT"
	EnvStorageDriver      = "STOREFRONT_STORAGE_DRIVER"
	EnvDBDriver           = "STOREFRONT_DB_DRIVER"
	EnvDBDSN              = "STOREFRONT_DB_DSN"
	EnvDBPath             = "STOREFRONT_DB_PATH"
	EnvRedisURL           = "STOREFRONT_REDIS_URL"
	EnvShippingRatesFile  = "STOREFRONT_SHIPPING_RATES_FILE"
	EnvShippingDefaultFee = "STOREFRONT_SHIPPING_DEFAULT_FEE"
)

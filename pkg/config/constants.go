package config

// EnvPrefix is the envconfig prefix shared by all settings.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvJWTSecret       = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer       = "STOREFRONT_JWT_ISSUER"
	EnvGatewayBaseURL  = "STOREFRONT_GATEWAY_BASE_URL"
	EnvGatewayReturn   = "STOREFRONT_GATEWAY_RETURN_URL"
	EnvOrderAPIBaseURL = "STOREFRONT_ORDER_API_BASE_URL"
	EnvStoreAPIBaseURL = "STOREFRONT_STORE_API_BASE_URL"
)

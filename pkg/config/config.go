package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
	OrderAPI OrderAPIConfig
	StoreAPI StoreAPIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type CartConfig struct {
	// TTL for persisted cart state; zero keeps carts until cleared.
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"0"`
}

type CheckoutConfig struct {
	// StagingTTL bounds how long an unconsumed staged draft survives an
	// abandoned gateway redirect.
	StagingTTL time.Duration `envconfig:"STOREFRONT_CHECKOUT_STAGING_TTL" default:"24h"`
	// ConsumedTTL bounds how long the consumed marker is kept to absorb
	// callback replays.
	ConsumedTTL      time.Duration `envconfig:"STOREFRONT_CHECKOUT_CONSUMED_TTL" default:"24h"`
	OrderDescription string        `envconfig:"STOREFRONT_CHECKOUT_ORDER_DESCRIPTION" default:"Order placed from storefront"`
}

type GatewayConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_GATEWAY_BASE_URL" required:"true"`
	ReturnURL string        `envconfig:"STOREFRONT_GATEWAY_RETURN_URL" required:"true"`
	Timeout   time.Duration `envconfig:"STOREFRONT_GATEWAY_TIMEOUT" default:"10s"`
}

type OrderAPIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_ORDER_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_ORDER_API_TIMEOUT" default:"10s"`
}

type StoreAPIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_STORE_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_STORE_API_TIMEOUT" default:"10s"`
}

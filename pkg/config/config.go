package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Gateway GatewayConfig
	Polling PollingConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VELORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VELORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VELORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the commerce backend that owns carts and orders.
type BackendConfig struct {
	BaseURL      string        `envconfig:"VELORA_BACKEND_BASE_URL" required:"true"`
	ServiceToken string        `envconfig:"VELORA_BACKEND_SERVICE_TOKEN"`
	Timeout      time.Duration `envconfig:"VELORA_BACKEND_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VELORA_REDIS_ADDR"`
	Password     string        `envconfig:"VELORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VELORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VELORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VELORA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// GatewayConfig selects and configures the hosted payment provider.
type GatewayConfig struct {
	Provider       string        `envconfig:"VELORA_GATEWAY_PROVIDER" default:"razorpay"`
	Currency       string        `envconfig:"VELORA_GATEWAY_CURRENCY" default:"INR"`
	ThemeColor     string        `envconfig:"VELORA_GATEWAY_THEME_COLOR" default:"#1f1f2e"`
	StripeAPIKey   string        `envconfig:"VELORA_STRIPE_API_KEY"`
	StripeEnv      string        `envconfig:"VELORA_STRIPE_ENV" default:"test"`
	OpenTimeout    time.Duration `envconfig:"VELORA_GATEWAY_OPEN_TIMEOUT" default:"15s"`
	StorefrontURL  string        `envconfig:"VELORA_GATEWAY_STOREFRONT_URL" default:"http://localhost:3000"`
	SuccessPath    string        `envconfig:"VELORA_GATEWAY_SUCCESS_PATH" default:"/checkout/success"`
	PendingPath    string        `envconfig:"VELORA_GATEWAY_PENDING_PATH" default:"/checkout/pending"`
}

// PollingConfig bounds the order-status polling sessions.
type PollingConfig struct {
	Interval time.Duration `envconfig:"VELORA_POLL_INTERVAL" default:"5s"`
	Budget   time.Duration `envconfig:"VELORA_POLL_BUDGET" default:"3m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"VELORA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Environment returns the normalized Stripe environment (test/live).
func (g GatewayConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(g.StripeEnv))
	if env == "" {
		return "test"
	}
	return env
}

func (g GatewayConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(g.Provider)) {
	case ProviderRazorpay, ProviderStripe:
		return nil
	default:
		return fmt.Errorf("unsupported gateway provider %q", g.Provider)
	}
}

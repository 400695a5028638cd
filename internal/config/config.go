package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	Environment    string `env:"APP_ENV" env-default:"development"`
	ServerAddress  string `env:"SERVER_ADDRESS" env-default:":8080"`
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"./migrations"`
	JWTSecret      string `env:"JWT_SECRET" env-required:"true"`

	// TrustedProxies lists the proxy addresses or CIDRs allowed to set
	// X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"console"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" env-default:"marquee-server"`

	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" env-default:"5s"`
	ActivityWindow    time.Duration `env:"ACTIVITY_WINDOW" env-default:"5m"`
	TopItemsLimit     int           `env:"TOP_ITEMS_LIMIT" env-default:"10"`
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" env-default:"15s"`
	IdempotencyTTL    time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h"`

	// IdempotencyPendingTTL bounds how long an unfinished batch holds its key.
	IdempotencyPendingTTL time.Duration `env:"IDEMPOTENCY_PENDING_TTL" env-default:"30s"`

	ExportDir       string `env:"EXPORT_DIR" env-default:"./exports"`
	UseSpaces       bool   `env:"USE_SPACES" env-default:"false"`
	SpacesEndpoint  string `env:"SPACES_ENDPOINT"`
	SpacesRegion    string `env:"SPACES_REGION"`
	SpacesBucket    string `env:"SPACES_BUCKET"`
	SpacesCDNURL    string `env:"SPACES_CDN_URL"`
	SpacesAccessKey string `env:"SPACES_ACCESS_KEY"`
	SpacesSecretKey string `env:"SPACES_SECRET_KEY"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TopItemsLimit <= 0 {
		return errors.New("TOP_ITEMS_LIMIT must be positive")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.IdempotencyPendingTTL < c.StoreTimeout {
		return errors.New("IDEMPOTENCY_PENDING_TTL must not be shorter than STORE_TIMEOUT")
	}
	if c.UseSpaces && (c.SpacesBucket == "" || c.SpacesEndpoint == "") {
		return errors.New("USE_SPACES requires SPACES_ENDPOINT and SPACES_BUCKET")
	}
	return nil
}

// RedisEnabled reports whether a redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddress != "" }

// MQTTEnabled reports whether telemetry should be published.
func (c *Config) MQTTEnabled() bool { return c.MQTTBrokerURL != "" }

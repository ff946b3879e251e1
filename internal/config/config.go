package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App            AppConfig
	Mongo          MongoConfig
	Redis          RedisConfig
	Logger         LoggerConfig
	Auth           AuthConfig
	Enrichment     EnrichmentConfig
	Reconciliation ReconciliationConfig
	Notification   NotificationConfig
	Queue          QueueConfig
	Defaults       DefaultsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document-store connection values.
type MongoConfig struct {
	URI            string
	Database       string
	TimeoutSeconds int
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// EnrichmentConfig holds chemistry-database client defaults. The base URL
// may be overridden by the admin-managed integration settings document.
type EnrichmentConfig struct {
	BaseURL            string
	MinIntervalMillis  int
	RequestTimeoutSecs int
}

// ReconciliationConfig holds enterprise-bridge client defaults.
type ReconciliationConfig struct {
	BaseURL          string
	Token            string
	Warehouse        string
	PollIntervalSecs int
	MaxPollAttempts  int
	PartNumberSuffix string
}

// NotificationConfig holds the chat webhook endpoint.
type NotificationConfig struct {
	WebhookURL string
}

// QueueConfig holds the optional event-mirror broker endpoint.
type QueueConfig struct {
	URL string
}

// DefaultsConfig holds business defaults injected by the normalizer.
type DefaultsConfig struct {
	SBU            string
	SettingsTTLSec int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "npdi-tracker"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 90),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:       getEnv("MONGO_DATABASE", "npdi"),
			TimeoutSeconds: getEnvAsInt("MONGO_TIMEOUT_SECONDS", 10),
			MaxPoolSize:    uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 100)),
			MinPoolSize:    uint64(getEnvAsInt("MONGO_MIN_POOL_SIZE", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Enrichment: EnrichmentConfig{
			BaseURL:            getEnv("ENRICHMENT_BASE_URL", "https://pubchem.ncbi.nlm.nih.gov/rest"),
			MinIntervalMillis:  getEnvAsInt("ENRICHMENT_MIN_INTERVAL_MS", 200),
			RequestTimeoutSecs: getEnvAsInt("ENRICHMENT_REQUEST_TIMEOUT_SECONDS", 15),
		},
		Reconciliation: ReconciliationConfig{
			BaseURL:          os.Getenv("RECONCILE_BASE_URL"),
			Token:            os.Getenv("RECONCILE_TOKEN"),
			Warehouse:        getEnv("RECONCILE_WAREHOUSE", "product_master"),
			PollIntervalSecs: getEnvAsInt("RECONCILE_POLL_INTERVAL_SECONDS", 1),
			MaxPollAttempts:  getEnvAsInt("RECONCILE_MAX_POLL_ATTEMPTS", 60),
			PartNumberSuffix: getEnv("RECONCILE_PART_SUFFIX", "-BULK"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Queue: QueueConfig{
			URL: os.Getenv("QUEUE_URL"),
		},
		Defaults: DefaultsConfig{
			SBU:            getEnv("DEFAULT_SBU", "SBU-CHEM"),
			SettingsTTLSec: getEnvAsInt("SETTINGS_CACHE_TTL_SECONDS", 300),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the connect timeout duration.
func (m MongoConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

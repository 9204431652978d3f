package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings, loaded from the environment.
type Config struct {
	Environment    string
	ServiceName    string
	ServiceVersion string

	HTTPAddr string

	DatabaseDriver string
	DatabaseDSN    string

	// BillingTimezone pins "today" for billing-day decisions regardless of
	// where the service is deployed.
	BillingTimezone string

	// StoreTimeout bounds individual store calls issued by the billing core.
	StoreTimeout time.Duration

	NormalizerPollInterval time.Duration
	NormalizerRunTimeout   time.Duration

	RateLimitPerMinute int

	TracingEnabled          bool
	TracingExporterEndpoint string
	TracingExporterProtocol string
	TracingSamplingRatio    float64
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:    getEnv("FGPLANT_ENV", "development"),
		ServiceName:    getEnv("FGPLANT_SERVICE_NAME", "fgplant"),
		ServiceVersion: getEnv("FGPLANT_SERVICE_VERSION", "dev"),

		HTTPAddr: getEnv("FGPLANT_HTTP_ADDR", ":8080"),

		DatabaseDriver: getEnv("FGPLANT_DB_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("FGPLANT_DB_DSN", "file:fgplant.db?_pragma=foreign_keys(1)"),

		BillingTimezone: getEnv("FGPLANT_BILLING_TIMEZONE", "Asia/Kolkata"),

		StoreTimeout: getDuration("FGPLANT_STORE_TIMEOUT", 5*time.Second),

		NormalizerPollInterval: getDuration("FGPLANT_NORMALIZER_POLL_INTERVAL", 15*time.Minute),
		NormalizerRunTimeout:   getDuration("FGPLANT_NORMALIZER_RUN_TIMEOUT", 30*time.Second),

		RateLimitPerMinute: getInt("FGPLANT_RATE_LIMIT_PER_MINUTE", 300),

		TracingEnabled:          getBool("FGPLANT_TRACING_ENABLED", false),
		TracingExporterEndpoint: getEnv("FGPLANT_TRACING_ENDPOINT", ""),
		TracingExporterProtocol: getEnv("FGPLANT_TRACING_PROTOCOL", "grpc"),
		TracingSamplingRatio:    getFloat("FGPLANT_TRACING_SAMPLING_RATIO", 1.0),
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

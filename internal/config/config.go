package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Firestore
	FirestoreProjectID    string
	FirestoreCredentials  string // path to a service-account JSON file
	InspectionsCollection string
	CatalogCollection     string

	// CPanel legacy invoicing API
	CPanelBaseURL      string
	CPanelAPIToken     string
	CPanelInvoiceLimit int

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CatalogCacheTTL time.Duration

	// Shop identity printed on invoices
	ShopName    string
	ShopAddress string
	ShopPhone   string

	// Observability
	OTLPEndpoint string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration
	// ShopPINHash is the bcrypt hash of the shared shop PIN. Empty disables
	// the login endpoint (and auth middleware rejects everything).
	ShopPINHash string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FirestoreProjectID:    getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentials:  getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		InspectionsCollection: getEnv("INSPECTIONS_COLLECTION", "inspections"),
		CatalogCollection:     getEnv("CATALOG_COLLECTION", "service_catalog"),

		CPanelBaseURL:      getEnv("CPANEL_BASE_URL", "http://localhost:8091"),
		CPanelAPIToken:     getEnv("CPANEL_API_TOKEN", ""),
		CPanelInvoiceLimit: getEnvInt("CPANEL_INVOICE_LIMIT", 500),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		ShopName:    getEnv("SHOP_NAME", "Auto Body Estimator"),
		ShopAddress: getEnv("SHOP_ADDRESS", ""),
		ShopPhone:   getEnv("SHOP_PHONE", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:    getEnv("JWT_SECRET", "estimator-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 12*time.Hour),
		ShopPINHash:  getEnv("SHOP_PIN_HASH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

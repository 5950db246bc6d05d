package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL           string
	DatabaseDriver        string
	Port                  string
	GoEnv                 string
	AWSRegion             string
	AWSS3Bucket           string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	LogLevel              string
	LogFormat             string
	CORSAllowedOrigins    []string
	OrderSubmitURL        string
	OrderSubmitTimeout    time.Duration
	OrderSubmitMaxRetries int
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// Environment variables may be set directly in deployed environments
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	timeout, err := time.ParseDuration(getEnv("ORDER_SUBMIT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_SUBMIT_TIMEOUT: %w", err)
	}
	retries, err := strconv.Atoi(getEnv("ORDER_SUBMIT_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_SUBMIT_MAX_RETRIES: %w", err)
	}

	config := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		Port:                  getEnv("PORT", "8080"),
		GoEnv:                 getEnv("GO_ENV", "development"),
		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		OrderSubmitURL:        getEnv("ORDER_SUBMIT_URL", ""),
		OrderSubmitTimeout:    timeout,
		OrderSubmitMaxRetries: retries,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverSQLite:
		// an empty URL falls back to an in-memory database
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}
	if c.OrderSubmitMaxRetries < 0 {
		return fmt.Errorf("ORDER_SUBMIT_MAX_RETRIES cannot be negative")
	}
	if c.OrderSubmitTimeout <= 0 {
		return fmt.Errorf("ORDER_SUBMIT_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// PhotoStorageEnabled reports whether an S3 bucket is configured for order photos
func (c *Config) PhotoStorageEnabled() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the loaded configuration
func GetConfig() *Config {
	return current
}

// SetConfig sets the configuration instance (used at startup and in tests)
func SetConfig(c *Config) {
	current = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

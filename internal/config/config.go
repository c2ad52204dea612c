// internal/config/config.go
// Centralized configuration read from the environment (optionally a .env file)

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-super-secret-key-change-this-in-production"

// Config holds all configuration for the application
type Config struct {
	// Server
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Storage
	StoreBackend     string // postgres, dynamodb or memory
	DatabaseURL      string
	DynamoDBTable    string
	DynamoDBEndpoint string
	AWSRegion        string
	StoreTimeout     time.Duration

	// Swipe locking
	LockBackend  string // local or redis
	RedisURL     string
	SwipeLockTTL time.Duration

	// Auth
	JWTSecret         string
	AccessTokenExpiry time.Duration
	BCryptCost        int

	// Email
	EmailProvider            string // sendgrid, smtp or mock
	EnableEmailNotifications bool
	SendGridAPIKey           string
	SMTPHost                 string
	SMTPPort                 int
	SMTPUser                 string
	SMTPPassword             string
	EmailFrom                string
	EmailFromName            string

	// Assistant
	AssistantAPIURL   string
	AssistantAPIToken string
	AssistantTimeout  time.Duration

	SeedSampleData bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", "30s"),
		CORSOrigins:     getEnvList("CORS_ORIGINS", "*"),

		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DynamoDBTable:    getEnv("DYNAMODB_TABLE", "roomie"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		StoreTimeout:     getEnvDuration("STORE_TIMEOUT", "5s"),

		LockBackend:  strings.ToLower(getEnv("LOCK_BACKEND", "local")),
		RedisURL:     getEnv("REDIS_URL", ""),
		SwipeLockTTL: getEnvDuration("SWIPE_LOCK_TTL", "5s"),

		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		AccessTokenExpiry: getEnvDuration("ACCESS_TOKEN_EXPIRY", "24h"),
		BCryptCost:        getEnvInt("BCRYPT_COST", 10),

		EmailProvider:            strings.ToLower(getEnv("EMAIL_PROVIDER", "mock")),
		EnableEmailNotifications: getEnvBool("ENABLE_EMAIL_NOTIFICATIONS", false),
		SendGridAPIKey:           getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 getEnvInt("SMTP_PORT", 587),
		SMTPUser:                 getEnv("SMTP_USER", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFrom:                getEnv("EMAIL_FROM", "noreply@roomie.app"),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Roomie"),

		AssistantAPIURL:   getEnv("ASSISTANT_API_URL", "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"),
		AssistantAPIToken: getEnv("ASSISTANT_API_TOKEN", ""),
		AssistantTimeout:  getEnvDuration("ASSISTANT_TIMEOUT", "30s"),

		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", false),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.JWTSecret == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret must be changed for production")
	}

	switch c.StoreBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for the postgres backend")
		}
	case "dynamodb":
		if c.DynamoDBTable == "" || c.AWSRegion == "" {
			return fmt.Errorf("DynamoDB table and AWS region are required for the dynamodb backend")
		}
	case "memory":
		if c.IsProduction() {
			return fmt.Errorf("memory store cannot be used in production")
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.StoreBackend)
	}

	switch c.LockBackend {
	case "local":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis lock backend")
		}
	default:
		return fmt.Errorf("invalid lock backend: %s", c.LockBackend)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}

	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}

	switch c.EmailProvider {
	case "sendgrid":
		if c.SendGridAPIKey == "" && c.EnableEmailNotifications {
			return fmt.Errorf("SendGrid API key is required when email notifications are enabled")
		}
	case "smtp":
		if c.SMTPHost == "" && c.EnableEmailNotifications {
			return fmt.Errorf("SMTP host is required when email notifications are enabled")
		}
	case "mock":
		if c.IsProduction() && c.EnableEmailNotifications {
			return fmt.Errorf("mock email provider cannot be used in production")
		}
	default:
		return fmt.Errorf("invalid email provider: %s", c.EmailProvider)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// If parsing fails, try to parse the default
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

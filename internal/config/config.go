package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store failure policies for the intake pipeline.
const (
	StoreFailureStrict     = "strict"
	StoreFailureBestEffort = "best_effort"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// Lead store
	LeadStore          string
	DatabaseURL        string
	LeadsTable         string
	StoreFailurePolicy string
	StepTimeout        time.Duration

	// Email
	EmailProvider               string
	ResendAPIKey                string
	SendGridAPIKey              string
	FromEmail                   string
	FromName                    string
	OwnerEmail                  string
	ConfirmationSummaryMaxChars int

	// Business profile
	BusinessProfilePath string
	BusinessName        string
	BusinessPhone       string
	BusinessSiteURL     string

	// Quote classifier
	GeminiAPIKey      string
	GeminiModelID     string
	BedrockModelID    string
	ClassifierTimeout time.Duration

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Rate limiting
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	RateLimitPerMinute int

	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),

		LeadStore:          strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", "memory"))),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		LeadsTable:         getEnv("LEADS_TABLE", "leads"),
		StoreFailurePolicy: normalizePolicy(getEnv("STORE_FAILURE_POLICY", StoreFailureStrict)),
		StepTimeout:        getEnvAsDuration("STEP_TIMEOUT", 10*time.Second),

		EmailProvider:               strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		ResendAPIKey:                getEnv("RESEND_API_KEY", ""),
		SendGridAPIKey:              getEnv("SENDGRID_API_KEY", ""),
		FromEmail:                   getEnv("FROM_EMAIL", ""),
		FromName:                    getEnv("FROM_NAME", ""),
		OwnerEmail:                  getEnv("OWNER_EMAIL", ""),
		ConfirmationSummaryMaxChars: getEnvAsInt("CONFIRMATION_SUMMARY_MAX_CHARS", 300),

		BusinessProfilePath: getEnv("BUSINESS_PROFILE_PATH", ""),
		BusinessName:        getEnv("BUSINESS_NAME", ""),
		BusinessPhone:       getEnv("BUSINESS_PHONE", ""),
		BusinessSiteURL:     getEnv("BUSINESS_SITE_URL", ""),

		GeminiAPIKey:      firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY_GEMINI")),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 15*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-west-2"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.LeadStore == "dynamodb" ||
		c.EmailProvider == "ses" ||
		c.BedrockModelID != ""
}

func normalizePolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "-", "_"))) {
	case StoreFailureBestEffort:
		return StoreFailureBestEffort
	default:
		return StoreFailureStrict
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

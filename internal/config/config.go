package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment at startup.
// It is built once and passed to the feature packages; nothing mutates it afterwards.
type Config struct {
	// Server
	Port         string
	CookieSecure bool
	CORSOrigins  []string
	LogLevel     string

	// Database
	DatabaseURL string

	// Session
	JWTSecret string

	// Outbound HTTP
	HTTPClientTimeout time.Duration

	// Rate limits
	RateLimitPerMinute  int
	AnalysisRatePerHour int

	// Bible text provider
	BibleAPIURL      string
	BibleTranslation string

	// Federated login
	IdentitySessionURL string

	// Stripe
	StripeAPIKey           string
	StripeWebhookSecret    string
	StripeAPIURL           string
	SubscriptionPriceCents int64

	// News analysis
	LLMAPIKey   string
	LLMAPIURL   string
	LLMModel    string
	NewsFeedURL string

	// Profile pictures
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Push
	VAPIDPublicKey string
}

// DefaultIdentitySessionURL is the federated login session-data endpoint.
const DefaultIdentitySessionURL = "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"

// Load reads the Config from the environment.
// It returns an error naming every required variable that is missing.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvString("PORT", "5050")
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", true)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"})
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	cfg.HTTPClientTimeout = getEnvDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	cfg.AnalysisRatePerHour = getEnvInt("ANALYSIS_RATE_PER_HOUR", 20)

	cfg.BibleAPIURL = strings.TrimRight(getEnvString("BIBLE_API_URL", "https://bible-api.com"), "/")
	cfg.BibleTranslation = getEnvString("BIBLE_TRANSLATION", "web")

	cfg.IdentitySessionURL = getEnvString("IDENTITY_SESSION_URL", DefaultIdentitySessionURL)

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.StripeAPIURL = strings.TrimRight(getEnvString("STRIPE_API_URL", "https://api.stripe.com"), "/")
	cfg.SubscriptionPriceCents = getEnvInt64("SUBSCRIPTION_PRICE_CENTS", 999)

	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMAPIURL = strings.TrimRight(getEnvString("LLM_API_URL", "https://api.openai.com"), "/")
	cfg.LLMModel = getEnvString("LLM_MODEL", "gpt-4o-mini")
	cfg.NewsFeedURL = getEnvString("NEWS_FEED_URL", "https://feeds.bbci.co.uk/news/world/rss.xml")

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = getEnvString("S3_REGION", "us-east-1")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")

	cfg.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")

	return cfg, nil
}

// StorageEnabled reports whether profile picture uploads can be presigned.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

package config

import (
	"os"
	"time"
)

// Server captures process level configuration assembled from the environment.
type Server struct {
	Addr            string
	Environment     string
	DatabaseURL     string
	RedisURL        string
	KafkaBrokers    string
	JWTSigningKey   string
	SessionTTL      time.Duration
	RoleCacheTTL    time.Duration
	BillingSecret   string
	EmailAPIKey     string
	EmailAPIBaseURL string
	EmailFrom       string
	ResetRedirect   string
}

// Defaults applied when the corresponding environment variable is unset or
// unparseable.
const (
	defaultRoleCacheTTL = 5 * time.Minute
	defaultSessionTTL   = 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("AUTOQUOTE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	env := os.Getenv("AUTOQUOTE_ENV")
	if env == "" {
		env = "development"
	}

	sessionTTL := durationFromEnv("SESSION_TTL", defaultSessionTTL)
	roleCacheTTL := durationFromEnv("ROLE_CACHE_TTL", defaultRoleCacheTTL)

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	emailBase := os.Getenv("EMAIL_API_BASE_URL")
	if emailBase == "" {
		emailBase = "https://api.resend.com"
	}

	return Server{
		Addr:            addr,
		Environment:     env,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		JWTSigningKey:   jwtSigningKey,
		SessionTTL:      sessionTTL,
		RoleCacheTTL:    roleCacheTTL,
		BillingSecret:   os.Getenv("BILLING_WEBHOOK_SECRET"),
		EmailAPIKey:     os.Getenv("EMAIL_API_KEY"),
		EmailAPIBaseURL: emailBase,
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		ResetRedirect:   os.Getenv("PASSWORD_RESET_REDIRECT_URL"),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

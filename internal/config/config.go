package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	Port     string
	LogLevel string

	// Upstream provider
	FrankfurterBaseURL string
	DefaultProvider    string
	HTTPTimeout        time.Duration

	// Caching
	RatesCacheTTL time.Duration

	// Retry policy for transient upstream failures
	RetryCount       int
	RetryBackoffBase time.Duration

	// Outbound rate limiting (upstream call budget)
	OutboundRateLimit   int
	OutboundRateWindow  time.Duration
	OutboundWaitForSlot bool

	// Circuit breaker
	BreakerFailureThreshold int
	BreakerOpenDuration     time.Duration

	// Upstream concurrency cap
	MaxConcurrentUpstream int

	// Currency policy
	CurrencyBlacklist []string

	// Inbound rate limiting (per client IP)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FrankfurterBaseURL: getEnv("FRANKFURTER_BASE_URL", "https://api.frankfurter.app"),
		DefaultProvider:    getEnv("DEFAULT_PROVIDER", "Frankfurter"),
		HTTPTimeout:        secondsEnv("HTTP_TIMEOUT_SECONDS", 30),

		RatesCacheTTL: secondsEnv("RATES_CACHE_TTL_SECONDS", 600),

		RetryCount:       mustAtoi(getEnv("RETRY_COUNT", "3")),
		RetryBackoffBase: secondsEnv("RETRY_BACKOFF_BASE_SECONDS", 1),

		OutboundRateLimit:   mustAtoi(getEnv("OUTBOUND_RATE_LIMIT", "5")),
		OutboundRateWindow:  secondsEnv("OUTBOUND_RATE_WINDOW_SECONDS", 1),
		OutboundWaitForSlot: getEnv("OUTBOUND_WAIT_FOR_SLOT", "true") == "true",

		BreakerFailureThreshold: mustAtoi(getEnv("BREAKER_FAILURE_THRESHOLD", "5")),
		BreakerOpenDuration:     secondsEnv("BREAKER_OPEN_DURATION_SECONDS", 30),

		MaxConcurrentUpstream: mustAtoi(getEnv("MAX_CONCURRENT_UPSTREAM", "4")),

		CurrencyBlacklist: splitList(getEnv("CURRENCY_BLACKLIST", "TRY,PLN,THB,MXN")),

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: mustAtoi(getEnv("RATE_LIMIT_REQUESTS", "100")),
		RateLimitWindow:   secondsEnv("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitBurst:    mustAtoi(getEnv("RATE_LIMIT_BURST", "10")),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// secondsEnv reads an integer environment variable as a duration in seconds
func secondsEnv(key string, fallback int) time.Duration {
	raw := getEnv(key, strconv.Itoa(fallback))
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// splitList parses a comma-separated list, dropping blanks
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

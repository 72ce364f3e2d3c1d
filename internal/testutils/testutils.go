package testutils

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/config"
)

// MockConfig returns a configuration suitable for fast tests
func MockConfig() *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "error",

		FrankfurterBaseURL: "http://localhost:0",
		DefaultProvider:    "Frankfurter",
		HTTPTimeout:        5 * time.Second,

		RatesCacheTTL: 10 * time.Minute,

		RetryCount:       3,
		RetryBackoffBase: time.Millisecond,

		OutboundRateLimit:   100,
		OutboundRateWindow:  time.Second,
		OutboundWaitForSlot: true,

		BreakerFailureThreshold: 5,
		BreakerOpenDuration:     100 * time.Millisecond,

		MaxConcurrentUpstream: 4,

		CurrencyBlacklist: []string{"TRY", "PLN", "THB", "MXN"},

		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitBurst:    10,
	}
}

// MockLogger returns a logger that discards all output
func MockLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

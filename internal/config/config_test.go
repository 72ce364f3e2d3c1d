package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("expected port 8081, got %s", cfg.Port)
	}
	if cfg.FrankfurterBaseURL != "https://api.frankfurter.app" {
		t.Errorf("unexpected base URL: %s", cfg.FrankfurterBaseURL)
	}
	if cfg.DefaultProvider != "Frankfurter" {
		t.Errorf("unexpected default provider: %s", cfg.DefaultProvider)
	}
	if cfg.RatesCacheTTL != 10*time.Minute {
		t.Errorf("expected 10m cache TTL, got %v", cfg.RatesCacheTTL)
	}
	if cfg.RetryCount != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.RetryCount)
	}
	if cfg.RetryBackoffBase != time.Second {
		t.Errorf("expected 1s backoff base, got %v", cfg.RetryBackoffBase)
	}
	if cfg.OutboundRateLimit != 5 || cfg.OutboundRateWindow != time.Second {
		t.Errorf("expected 5 req/s outbound budget, got %d/%v", cfg.OutboundRateLimit, cfg.OutboundRateWindow)
	}
	if cfg.BreakerFailureThreshold != 5 {
		t.Errorf("expected breaker threshold 5, got %d", cfg.BreakerFailureThreshold)
	}
	if cfg.BreakerOpenDuration != 30*time.Second {
		t.Errorf("expected 30s breaker window, got %v", cfg.BreakerOpenDuration)
	}
	if len(cfg.CurrencyBlacklist) != 4 {
		t.Errorf("expected 4 blacklisted currencies, got %v", cfg.CurrencyBlacklist)
	}
	if !cfg.RateLimitEnabled {
		t.Error("expected inbound rate limiting enabled by default")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	overrides := map[string]string{
		"PORT":                      "9000",
		"FRANKFURTER_BASE_URL":      "http://localhost:7777",
		"RATES_CACHE_TTL_SECONDS":   "120",
		"RETRY_COUNT":               "1",
		"BREAKER_FAILURE_THRESHOLD": "2",
		"CURRENCY_BLACKLIST":        "AAA, bbb,,CCC",
		"RATE_LIMIT_ENABLED":        "false",
	}
	for key, value := range overrides {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range overrides {
			os.Unsetenv(key)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.FrankfurterBaseURL != "http://localhost:7777" {
		t.Errorf("unexpected base URL: %s", cfg.FrankfurterBaseURL)
	}
	if cfg.RatesCacheTTL != 2*time.Minute {
		t.Errorf("expected 2m cache TTL, got %v", cfg.RatesCacheTTL)
	}
	if cfg.RetryCount != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.RetryCount)
	}
	if cfg.BreakerFailureThreshold != 2 {
		t.Errorf("expected threshold 2, got %d", cfg.BreakerFailureThreshold)
	}
	if len(cfg.CurrencyBlacklist) != 3 {
		t.Errorf("expected blanks dropped from the list, got %v", cfg.CurrencyBlacklist)
	}
	if cfg.RateLimitEnabled {
		t.Error("expected inbound rate limiting disabled")
	}
}

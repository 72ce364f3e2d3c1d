package ratelimit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/config"
)

// ErrLimitExceeded is returned when a fail-fast bucket has no token available
var ErrLimitExceeded = errors.New("rate limit exceeded")

// TokenBucket is a refilling token bucket. A bucket with capacity N refilling
// N tokens per window guarantees the call volume through it never exceeds
// that ceiling.
type TokenBucket struct {
	capacity     int
	tokens       int
	lastRefill   time.Time
	refillRate   int
	refillPeriod time.Duration
	mu           sync.Mutex
}

// NewTokenBucket creates a full bucket refilling refillRate tokens per
// refillPeriod, holding at most capacity tokens
func NewTokenBucket(capacity, refillRate int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		lastRefill:   time.Now(),
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
	}
}

// Allow takes a token when one is available
func (tokenBucket *TokenBucket) Allow() bool {
	tokenBucket.mu.Lock()
	defer tokenBucket.mu.Unlock()

	tokenBucket.refill()

	if tokenBucket.tokens > 0 {
		tokenBucket.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is cancelled
func (tokenBucket *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tokenBucket.Allow() {
			return nil
		}

		retryDelay := tokenBucket.nextTokenDelay()
		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill credits tokens earned since the last refill. Caller must hold mu.
func (tokenBucket *TokenBucket) refill() {
	currentTime := time.Now()
	if !currentTime.After(tokenBucket.lastRefill) {
		return
	}

	timeElapsed := currentTime.Sub(tokenBucket.lastRefill)
	tokensToAdd := int(timeElapsed.Seconds() / tokenBucket.refillPeriod.Seconds() * float64(tokenBucket.refillRate))
	if tokensToAdd > 0 {
		tokenBucket.tokens = minimum(tokenBucket.capacity, tokenBucket.tokens+tokensToAdd)
		tokenBucket.lastRefill = currentTime
	}
}

// nextTokenDelay estimates how long until one token is earned
func (tokenBucket *TokenBucket) nextTokenDelay() time.Duration {
	tokenBucket.mu.Lock()
	defer tokenBucket.mu.Unlock()

	if tokenBucket.refillRate <= 0 {
		return tokenBucket.refillPeriod
	}
	perToken := tokenBucket.refillPeriod / time.Duration(tokenBucket.refillRate)
	if perToken < time.Millisecond {
		perToken = time.Millisecond
	}
	return perToken
}

// Limiter applies per-client-IP token buckets to inbound requests
type Limiter struct {
	Configuration *config.Config
	logger        *logrus.Logger

	// Map of IP -> token bucket
	clientBuckets map[string]*TokenBucket
	bucketsMutex  sync.RWMutex

	// Cleanup goroutine control
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// NewLimiter creates a new inbound rate limiter
func NewLimiter(configuration *config.Config, logger *logrus.Logger) *Limiter {
	rateLimiter := &Limiter{
		Configuration: configuration,
		logger:        logger,
		clientBuckets: make(map[string]*TokenBucket),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	// Start cleanup goroutine
	go rateLimiter.cleanup()

	return rateLimiter
}

// Allow checks if a request from the given IP is allowed
func (rateLimiter *Limiter) Allow(clientIP string) bool {
	if !rateLimiter.Configuration.RateLimitEnabled {
		return true
	}

	rateLimiter.bucketsMutex.Lock()
	tokenBucket, bucketExists := rateLimiter.clientBuckets[clientIP]
	if !bucketExists {
		tokenBucket = NewTokenBucket(
			rateLimiter.Configuration.RateLimitBurst,
			rateLimiter.Configuration.RateLimitRequests,
			rateLimiter.Configuration.RateLimitWindow,
		)
		rateLimiter.clientBuckets[clientIP] = tokenBucket
	}
	rateLimiter.bucketsMutex.Unlock()

	return tokenBucket.Allow()
}

// GetClientIP extracts the real client IP from the request
func (rateLimiter *Limiter) GetClientIP(request *http.Request) string {
	// Check X-Forwarded-For header
	if xForwardedFor := request.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		if clientIP := net.ParseIP(xForwardedFor); clientIP != nil {
			return clientIP.String()
		}
		// If multiple IPs, take the first one
		if host, _, err := net.SplitHostPort(xForwardedFor); err == nil {
			if clientIP := net.ParseIP(host); clientIP != nil {
				return clientIP.String()
			}
		}
	}

	// Check X-Real-IP header
	if xRealIP := request.Header.Get("X-Real-IP"); xRealIP != "" {
		if clientIP := net.ParseIP(xRealIP); clientIP != nil {
			return clientIP.String()
		}
	}

	// Fall back to RemoteAddr
	clientIP, _, parseError := net.SplitHostPort(request.RemoteAddr)
	if parseError != nil {
		return request.RemoteAddr
	}
	return clientIP
}

// cleanup removes stale buckets to prevent memory leaks
func (rateLimiter *Limiter) cleanup() {
	for {
		select {
		case <-rateLimiter.cleanupTicker.C:
			rateLimiter.bucketsMutex.Lock()
			currentTime := time.Now()
			for clientIP, tokenBucket := range rateLimiter.clientBuckets {
				tokenBucket.mu.Lock()
				stale := currentTime.Sub(tokenBucket.lastRefill) > 24*time.Hour
				tokenBucket.mu.Unlock()
				if stale {
					delete(rateLimiter.clientBuckets, clientIP)
				}
			}
			rateLimiter.bucketsMutex.Unlock()
		case <-rateLimiter.stopCleanup:
			rateLimiter.cleanupTicker.Stop()
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rateLimiter *Limiter) Stop() {
	close(rateLimiter.stopCleanup)
}

// minimum returns the minimum of two integers
func minimum(firstValue, secondValue int) int {
	if firstValue < secondValue {
		return firstValue
	}
	return secondValue
}

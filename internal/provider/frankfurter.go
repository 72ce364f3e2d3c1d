package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"currency-converter-api/internal/breaker"
	"currency-converter-api/internal/cache"
	"currency-converter-api/internal/config"
	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/metrics"
	"currency-converter-api/internal/ratelimit"
)

// FrankfurterName is the registry name of the Frankfurter provider
const FrankfurterName = "Frankfurter"

const upstreamDateLayout = "2006-01-02"

// FrankfurterProvider fetches rates from the Frankfurter API behind a TTL
// cache, a bounded retry loop, an outbound token-bucket budget and a circuit
// breaker. The cache, bucket and breaker are process-wide and shared by all
// callers of one provider instance.
type FrankfurterProvider struct {
	baseURL    string
	httpClient *http.Client

	rateCache *cache.TTLCache
	cacheTTL  time.Duration

	retryCount  int
	backoffBase time.Duration

	outboundBucket *ratelimit.TokenBucket
	waitForSlot    bool

	circuitBreaker *breaker.Breaker
	upstreamSlots  *semaphore.Weighted

	logger          *logrus.Logger
	providerMetrics *metrics.ProviderMetrics
}

// frankfurterLatestResponse is the upstream shape for latest and single-pair
// lookups
type frankfurterLatestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// frankfurterHistoricalResponse is the upstream shape for range lookups
type frankfurterHistoricalResponse struct {
	Base        string                                `json:"base"`
	StartDate   string                                `json:"start_date"`
	EndDate     string                                `json:"end_date"`
	RatesByDate map[string]map[string]decimal.Decimal `json:"rates"`
}

// NewFrankfurterProvider wires the resilience policies from configuration
func NewFrankfurterProvider(configuration *config.Config, log *logrus.Logger, rateCache *cache.TTLCache, providerMetrics *metrics.ProviderMetrics) *FrankfurterProvider {
	httpTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
	}

	maxConcurrent := configuration.MaxConcurrentUpstream
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &FrankfurterProvider{
		baseURL:    strings.TrimRight(configuration.FrankfurterBaseURL, "/"),
		httpClient: &http.Client{Timeout: configuration.HTTPTimeout, Transport: httpTransport},

		rateCache: rateCache,
		cacheTTL:  configuration.RatesCacheTTL,

		retryCount:  configuration.RetryCount,
		backoffBase: configuration.RetryBackoffBase,

		outboundBucket: ratelimit.NewTokenBucket(
			configuration.OutboundRateLimit,
			configuration.OutboundRateLimit,
			configuration.OutboundRateWindow,
		),
		waitForSlot: configuration.OutboundWaitForSlot,

		circuitBreaker: breaker.New(configuration.BreakerFailureThreshold, configuration.BreakerOpenDuration),
		upstreamSlots:  semaphore.NewWeighted(int64(maxConcurrent)),

		logger:          log,
		providerMetrics: providerMetrics,
	}
}

// Name returns the provider name used by the factory
func (frankfurterProvider *FrankfurterProvider) Name() string {
	return FrankfurterName
}

// GetExchangeRate fetches a single from->to rate, cache-aside
func (frankfurterProvider *FrankfurterProvider) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency domain.CurrencyCode) (Quote, error) {
	cacheKey := fmt.Sprintf("frankfurter:rate:%s:%s", fromCurrency, toCurrency)
	if cachedValue, found := frankfurterProvider.rateCache.Get(cacheKey); found {
		frankfurterProvider.providerMetrics.IncCacheHit(FrankfurterName, "rate")
		return cachedValue.(Quote), nil
	}
	frankfurterProvider.providerMetrics.IncCacheMiss(FrankfurterName, "rate")

	requestPath := fmt.Sprintf("/latest?base=%s&symbols=%s", fromCurrency, toCurrency)

	var latestResponse frankfurterLatestResponse
	if err := frankfurterProvider.fetchJSON(ctx, "rate", requestPath, &latestResponse); err != nil {
		return Quote{}, err
	}

	rate, found := latestResponse.Rates[toCurrency.String()]
	if !found {
		return Quote{}, domain.NewError(domain.ErrorKindRateNotFound,
			"rate %s->%s missing from upstream response dated %s",
			fromCurrency, toCurrency, latestResponse.Date)
	}

	rateDate, err := time.Parse(upstreamDateLayout, latestResponse.Date)
	if err != nil {
		return Quote{}, domain.WrapError(domain.ErrorKindUpstreamEmptyResponse, err,
			"upstream response carries invalid date '%s'", latestResponse.Date)
	}

	quote := Quote{Rate: rate, Date: rateDate}
	frankfurterProvider.rateCache.Set(cacheKey, quote, frankfurterProvider.cacheTTL)

	frankfurterProvider.logger.Debugf("Fetched rate %s->%s = %s (%s)",
		fromCurrency, toCurrency, rate, latestResponse.Date)
	return quote, nil
}

// GetLatestRates fetches the full latest snapshot for a base currency,
// cache-aside
func (frankfurterProvider *FrankfurterProvider) GetLatestRates(ctx context.Context, baseCurrency domain.CurrencyCode) (*domain.RateSnapshot, error) {
	cacheKey := "frankfurter:latest:" + baseCurrency.String()
	if cachedValue, found := frankfurterProvider.rateCache.Get(cacheKey); found {
		frankfurterProvider.providerMetrics.IncCacheHit(FrankfurterName, "latest")
		return cachedValue.(*domain.RateSnapshot), nil
	}
	frankfurterProvider.providerMetrics.IncCacheMiss(FrankfurterName, "latest")

	requestPath := "/latest?base=" + baseCurrency.String()

	var latestResponse frankfurterLatestResponse
	if err := frankfurterProvider.fetchJSON(ctx, "latest", requestPath, &latestResponse); err != nil {
		return nil, err
	}

	snapshot, err := frankfurterProvider.buildSnapshot(latestResponse.Base, latestResponse.Date, latestResponse.Rates)
	if err != nil {
		return nil, err
	}

	frankfurterProvider.rateCache.Set(cacheKey, snapshot, frankfurterProvider.cacheTTL)
	return snapshot, nil
}

// GetHistoricalRates fetches one snapshot per day over the range, ascending
// by date. Historical data is immutable upstream but unbounded in key space,
// so it is not cached.
func (frankfurterProvider *FrankfurterProvider) GetHistoricalRates(ctx context.Context, baseCurrency domain.CurrencyCode, dateRange domain.DateRange) ([]*domain.RateSnapshot, error) {
	requestPath := fmt.Sprintf("/%s..%s?base=%s",
		dateRange.Start().Format(upstreamDateLayout),
		dateRange.End().Format(upstreamDateLayout),
		baseCurrency)

	var historicalResponse frankfurterHistoricalResponse
	if err := frankfurterProvider.fetchJSON(ctx, "historical", requestPath, &historicalResponse); err != nil {
		return nil, err
	}

	snapshots := make([]*domain.RateSnapshot, 0, len(historicalResponse.RatesByDate))
	for dateString, dailyRates := range historicalResponse.RatesByDate {
		snapshot, err := frankfurterProvider.buildSnapshot(historicalResponse.Base, dateString, dailyRates)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date().Before(snapshots[j].Date())
	})

	return snapshots, nil
}

// buildSnapshot converts one upstream day into a domain snapshot
func (frankfurterProvider *FrankfurterProvider) buildSnapshot(baseCode, dateString string, rawRates map[string]decimal.Decimal) (*domain.RateSnapshot, error) {
	snapshotDate, err := time.Parse(upstreamDateLayout, dateString)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorKindUpstreamEmptyResponse, err,
			"upstream response carries invalid date '%s'", dateString)
	}

	baseCurrency, err := domain.NewCurrencyCode(baseCode)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorKindUpstreamEmptyResponse, err,
			"upstream response carries invalid base currency '%s'", baseCode)
	}

	return domain.NewRateSnapshot(snapshotDate, baseCurrency, rawRates)
}

// fetchJSON performs one upstream GET under the full policy stack:
// concurrency cap, circuit breaker admission per attempt, outbound budget,
// then up to retryCount retries with exponential backoff for transient
// failures (5xx, 429, network errors). Non-transient statuses and decode
// failures are terminal. An open breaker aborts the whole loop so no retry
// attempts are spent probing it. Cancellation aborts immediately and is
// never recorded as a breaker failure.
func (frankfurterProvider *FrankfurterProvider) fetchJSON(ctx context.Context, operation, requestPath string, target interface{}) error {
	if err := frankfurterProvider.upstreamSlots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer frankfurterProvider.upstreamSlots.Release(1)

	requestURL := frankfurterProvider.baseURL + requestPath

	var lastError error
	for attempt := 0; attempt <= frankfurterProvider.retryCount; attempt++ {
		if attempt > 0 {
			backoffDelay := frankfurterProvider.backoffBase * time.Duration(1<<uint(attempt))
			timer := time.NewTimer(backoffDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := frankfurterProvider.circuitBreaker.Allow(); err != nil {
			return domain.WrapError(domain.ErrorKindCircuitOpen, err,
				"frankfurter circuit is open, request %s rejected", requestPath)
		}

		if frankfurterProvider.waitForSlot {
			if err := frankfurterProvider.outboundBucket.Wait(ctx); err != nil {
				return err
			}
		} else if !frankfurterProvider.outboundBucket.Allow() {
			return domain.WrapError(domain.ErrorKindProviderUnavailable, ratelimit.ErrLimitExceeded,
				"outbound budget exhausted for request %s", requestPath)
		}

		terminal, err := frankfurterProvider.attempt(ctx, operation, requestURL, target)
		if err == nil {
			return nil
		}
		if terminal {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastError = err
		frankfurterProvider.logger.Warnf("Frankfurter request %s failed (attempt %d/%d): %v",
			requestPath, attempt+1, frankfurterProvider.retryCount+1, err)
	}

	return domain.WrapError(domain.ErrorKindProviderUnavailable, lastError,
		"frankfurter unavailable after %d retries for %s", frankfurterProvider.retryCount, requestPath)
}

// attempt performs a single HTTP round-trip and classifies the outcome.
// The terminal flag is true when retrying cannot help.
func (frankfurterProvider *FrankfurterProvider) attempt(ctx context.Context, operation, requestURL string, target interface{}) (terminal bool, err error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return true, err
	}
	request.Header.Set("Accept", "application/json")

	startTime := time.Now()
	response, err := frankfurterProvider.httpClient.Do(request)
	frankfurterProvider.providerMetrics.ObserveUpstreamDuration(FrankfurterName, operation, time.Since(startTime).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			// Cancelled by the caller; not an upstream failure
			return true, ctx.Err()
		}
		frankfurterProvider.recordBreakerFailure()
		frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, "network_error")
		return false, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		frankfurterProvider.recordBreakerFailure()
		frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, "network_error")
		return false, err
	}

	if response.StatusCode == http.StatusOK {
		frankfurterProvider.circuitBreaker.RecordSuccess()

		if len(bytes.TrimSpace(body)) == 0 {
			frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, "empty_body")
			return true, domain.NewError(domain.ErrorKindUpstreamEmptyResponse,
				"empty response body for %s", requestURL)
		}
		if err := json.Unmarshal(body, target); err != nil {
			frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, "decode_error")
			return true, domain.WrapError(domain.ErrorKindUpstreamEmptyResponse, err,
				"undecodable response body for %s", requestURL)
		}

		frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, "success")
		return true, nil
	}

	if isTransientStatus(response.StatusCode) {
		frankfurterProvider.recordBreakerFailure()
		frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, fmt.Sprintf("http_%d", response.StatusCode))
		return false, fmt.Errorf("upstream returned status %d", response.StatusCode)
	}

	// Other 4xx: the upstream answered deliberately; not a breaker failure
	// and not worth retrying
	frankfurterProvider.providerMetrics.IncUpstream(FrankfurterName, operation, fmt.Sprintf("http_%d", response.StatusCode))
	return true, domain.NewError(domain.ErrorKindProviderUnavailable,
		"upstream returned status %d: %s", response.StatusCode, truncateBody(body))
}

// recordBreakerFailure counts a transient failure and logs open transitions
func (frankfurterProvider *FrankfurterProvider) recordBreakerFailure() {
	if frankfurterProvider.circuitBreaker.RecordFailure() {
		frankfurterProvider.providerMetrics.IncBreakerOpened(FrankfurterName)
		frankfurterProvider.logger.Warnf("Frankfurter circuit breaker opened")
	}
}

// isTransientStatus reports whether the HTTP status is worth retrying
func isTransientStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// truncateBody keeps error messages bounded
func truncateBody(body []byte) string {
	const maxLength = 256
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > maxLength {
		return trimmed[:maxLength] + "..."
	}
	return trimmed
}

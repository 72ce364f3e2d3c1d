package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/middleware"
	"currency-converter-api/internal/models"
	"currency-converter-api/internal/ratelimit"
	"currency-converter-api/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	conversionService *service.ConversionService
	ratesService      *service.RatesService
	rateLimiter       *ratelimit.Limiter
	logger            *logrus.Logger
	startTime         time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(conversionService *service.ConversionService, ratesService *service.RatesService, logger *logrus.Logger) *Handlers {
	return &Handlers{
		conversionService: conversionService,
		ratesService:      ratesService,
		logger:            logger,
		startTime:         time.Now(),
	}
}

// WithRateLimit attaches the inbound rate limiter after initialization
func (handlers *Handlers) WithRateLimit(rateLimiter *ratelimit.Limiter) *Handlers {
	handlers.rateLimiter = rateLimiter
	return handlers
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimitMiddleware())
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/convert", handlers.Convert)
		apiV1.GET("/rates/latest", handlers.GetLatestRates)
		apiV1.GET("/rates/historical", handlers.GetHistoricalRates)
	}

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	context.JSON(http.StatusOK, models.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(handlers.startTime).String(),
	})
}

// Convert converts an amount between two currencies
func (handlers *Handlers) Convert(context *gin.Context) {
	amountRaw := context.Query("amount")
	amount, parseError := decimal.NewFromString(amountRaw)
	if parseError != nil || amount.Sign() <= 0 {
		handlers.writeErrorResponse(context, http.StatusBadRequest,
			"invalid amount", "amount must be a positive decimal")
		return
	}

	request := models.ConversionRequest{
		From:     context.Query("from"),
		To:       context.Query("to"),
		Amount:   amount,
		Provider: context.Query("provider"),
	}

	result, err := handlers.conversionService.Convert(context.Request.Context(), request)
	if err != nil {
		handlers.writeDomainError(context, err)
		return
	}

	context.JSON(http.StatusOK, result)
}

// GetLatestRates returns the latest snapshot for a base currency
func (handlers *Handlers) GetLatestRates(context *gin.Context) {
	baseCurrency := context.DefaultQuery("base", "EUR")
	providerName := context.Query("provider")

	result, err := handlers.ratesService.GetLatestRates(context.Request.Context(), baseCurrency, providerName)
	if err != nil {
		handlers.writeDomainError(context, err)
		return
	}

	context.JSON(http.StatusOK, result)
}

// GetHistoricalRates returns a paginated range of daily snapshots
func (handlers *Handlers) GetHistoricalRates(context *gin.Context) {
	page, pageError := strconv.Atoi(context.DefaultQuery("page", "1"))
	pageSize, sizeError := strconv.Atoi(context.DefaultQuery("pageSize", "50"))
	if pageError != nil || sizeError != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest,
			"invalid pagination", "page and pageSize must be integers")
		return
	}

	request := models.HistoricalRatesRequest{
		BaseCurrency: context.DefaultQuery("base", "EUR"),
		StartDate:    context.Query("start"),
		EndDate:      context.Query("end"),
		Page:         page,
		PageSize:     pageSize,
		Provider:     context.Query("provider"),
	}

	result, err := handlers.ratesService.GetHistoricalRates(context.Request.Context(), request)
	if err != nil {
		handlers.writeDomainError(context, err)
		return
	}

	context.JSON(http.StatusOK, result)
}

// writeDomainError maps a domain error kind to an HTTP status
func (handlers *Handlers) writeDomainError(context *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errorCode := "INTERNAL"

	if kind, isDomain := domain.KindOf(err); isDomain {
		errorCode = kind.String()
		switch kind {
		case domain.ErrorKindInvalidCurrencyCode,
			domain.ErrorKindBlacklistedCurrency,
			domain.ErrorKindInvalidDateRange,
			domain.ErrorKindInvalidPagination,
			domain.ErrorKindProviderNotSupported:
			statusCode = http.StatusBadRequest
		case domain.ErrorKindRateNotFound:
			statusCode = http.StatusNotFound
		case domain.ErrorKindNoValidRates,
			domain.ErrorKindUpstreamEmptyResponse,
			domain.ErrorKindProviderUnavailable:
			statusCode = http.StatusBadGateway
		case domain.ErrorKindCircuitOpen:
			statusCode = http.StatusServiceUnavailable
		}
	}

	if statusCode >= http.StatusInternalServerError {
		handlers.logger.Errorf("Request failed: %v", err)
	}

	handlers.writeErrorResponse(context, statusCode, errorCode, err.Error())
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	context.JSON(statusCode, models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	})
}

// rateLimitMiddleware provides inbound rate limiting using Gin middleware
func (handlers *Handlers) rateLimitMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		clientIP := handlers.rateLimiter.GetClientIP(context.Request)

		if !handlers.rateLimiter.Allow(clientIP) {
			handlers.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			context.Header("X-RateLimit-Limit", strconv.Itoa(handlers.rateLimiter.Configuration.RateLimitRequests))
			context.Header("X-RateLimit-Remaining", "0")
			context.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(handlers.rateLimiter.Configuration.RateLimitWindow).Unix(), 10))
			context.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			context.Abort()
			return
		}

		context.Next()
	}
}

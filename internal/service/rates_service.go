package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/models"
	"currency-converter-api/internal/provider"
)

// RatesService serves latest and historical rate lookups
type RatesService struct {
	providerFactory *provider.Factory
	blacklist       domain.Blacklist
	logger          *logrus.Logger
}

// NewRatesService creates a rates service
func NewRatesService(providerFactory *provider.Factory, blacklist domain.Blacklist, logger *logrus.Logger) *RatesService {
	return &RatesService{
		providerFactory: providerFactory,
		blacklist:       blacklist,
		logger:          logger,
	}
}

// GetLatestRates fetches the latest snapshot for a base currency. The
// blacklist is enforced on the base before any provider call.
func (ratesService *RatesService) GetLatestRates(ctx context.Context, baseCurrency, providerName string) (models.ExchangeRates, error) {
	baseCode, err := domain.NewCurrencyCodeWithPolicy(baseCurrency, ratesService.blacklist)
	if err != nil {
		return models.ExchangeRates{}, err
	}

	resolvedProvider, err := ratesService.providerFactory.GetProvider(providerName)
	if err != nil {
		return models.ExchangeRates{}, err
	}

	snapshot, err := resolvedProvider.GetLatestRates(ctx, baseCode)
	if err != nil {
		return models.ExchangeRates{}, err
	}

	return snapshotToExchangeRates(snapshot), nil
}

// GetHistoricalRates fetches the full range from the provider, then paginates
// in memory by (page, pageSize). TotalCount reflects the whole range.
func (ratesService *RatesService) GetHistoricalRates(ctx context.Context, request models.HistoricalRatesRequest) (models.HistoricalRatesResult, error) {
	baseCode, err := domain.NewCurrencyCodeWithPolicy(request.BaseCurrency, ratesService.blacklist)
	if err != nil {
		return models.HistoricalRatesResult{}, err
	}

	dateRange, err := parseDateRange(request.StartDate, request.EndDate)
	if err != nil {
		return models.HistoricalRatesResult{}, err
	}

	pagination, err := domain.NewPagination(request.Page, request.PageSize)
	if err != nil {
		return models.HistoricalRatesResult{}, err
	}

	resolvedProvider, err := ratesService.providerFactory.GetProvider(request.Provider)
	if err != nil {
		return models.HistoricalRatesResult{}, err
	}

	snapshots, err := resolvedProvider.GetHistoricalRates(ctx, baseCode, dateRange)
	if err != nil {
		return models.HistoricalRatesResult{}, err
	}

	totalCount := len(snapshots)
	pageItems := paginateSnapshots(snapshots, pagination)

	items := make([]models.ExchangeRates, 0, len(pageItems))
	for _, snapshot := range pageItems {
		items = append(items, snapshotToExchangeRates(snapshot))
	}

	ratesService.logger.WithFields(logrus.Fields{
		"base":     baseCode.String(),
		"range":    dateRange.String(),
		"page":     pagination.Page(),
		"pageSize": pagination.PageSize(),
		"total":    totalCount,
	}).Debug("Historical rates served")

	return models.HistoricalRatesResult{
		BaseCurrency: baseCode.String(),
		Items:        items,
		Page:         pagination.Page(),
		PageSize:     pagination.PageSize(),
		TotalCount:   totalCount,
	}, nil
}

// parseDateRange parses ISO dates and validates the interval
func parseDateRange(startDate, endDate string) (domain.DateRange, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return domain.DateRange{}, domain.WrapError(domain.ErrorKindInvalidDateRange, err,
			"invalid start date '%s'", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return domain.DateRange{}, domain.WrapError(domain.ErrorKindInvalidDateRange, err,
			"invalid end date '%s'", endDate)
	}
	return domain.NewDateRange(start, end)
}

// paginateSnapshots slices one page out of the full ascending range
func paginateSnapshots(snapshots []*domain.RateSnapshot, pagination domain.Pagination) []*domain.RateSnapshot {
	skip := pagination.Skip()
	if skip >= len(snapshots) {
		return nil
	}
	end := skip + pagination.Take()
	if end > len(snapshots) {
		end = len(snapshots)
	}
	return snapshots[skip:end]
}

// snapshotToExchangeRates maps a domain snapshot to its external shape
func snapshotToExchangeRates(snapshot *domain.RateSnapshot) models.ExchangeRates {
	return models.ExchangeRates{
		BaseCurrency: snapshot.Base().String(),
		Date:         snapshot.Date().Format("2006-01-02"),
		Rates:        snapshot.Rates(),
	}
}

package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/models"
	"currency-converter-api/internal/provider"
)

// ConversionService orchestrates a currency conversion: policy fast-fail,
// provider resolution, rate fetch, arithmetic
type ConversionService struct {
	providerFactory    *provider.Factory
	excludedCurrencies domain.Blacklist
	logger             *logrus.Logger
}

// NewConversionService creates a conversion service with an explicit
// exclusion policy
func NewConversionService(providerFactory *provider.Factory, excludedCurrencies domain.Blacklist, logger *logrus.Logger) *ConversionService {
	return &ConversionService{
		providerFactory:    providerFactory,
		excludedCurrencies: excludedCurrencies,
		logger:             logger,
	}
}

// Convert validates the request, resolves a provider, fetches the single-pair
// rate and multiplies. The exclusion check runs before any provider call.
// The result carries the rate date of the snapshot the quote came from.
func (conversionService *ConversionService) Convert(ctx context.Context, request models.ConversionRequest) (models.ConversionResult, error) {
	fromCurrency, err := domain.NewCurrencyCodeWithPolicy(request.From, conversionService.excludedCurrencies)
	if err != nil {
		return models.ConversionResult{}, err
	}
	toCurrency, err := domain.NewCurrencyCodeWithPolicy(request.To, conversionService.excludedCurrencies)
	if err != nil {
		return models.ConversionResult{}, err
	}

	resolvedProvider, err := conversionService.providerFactory.GetProvider(request.Provider)
	if err != nil {
		return models.ConversionResult{}, err
	}

	quote, err := resolvedProvider.GetExchangeRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		conversionService.logger.WithFields(logrus.Fields{
			"from":     fromCurrency.String(),
			"to":       toCurrency.String(),
			"provider": resolvedProvider.Name(),
		}).Warnf("Rate lookup failed: %v", err)
		return models.ConversionResult{}, err
	}

	convertedAmount := request.Amount.Mul(quote.Rate)

	conversionService.logger.WithFields(logrus.Fields{
		"from":     fromCurrency.String(),
		"to":       toCurrency.String(),
		"rate":     quote.Rate.String(),
		"rateDate": quote.Date.Format("2006-01-02"),
	}).Info("Conversion computed")

	return models.ConversionResult{
		OriginalAmount:  request.Amount,
		From:            fromCurrency.String(),
		To:              toCurrency.String(),
		ConvertedAmount: convertedAmount,
		RateDate:        quote.Date.Format("2006-01-02"),
	}, nil
}

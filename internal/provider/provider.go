package provider

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"currency-converter-api/internal/domain"
)

// Quote is a single-pair exchange rate together with the snapshot date it
// was taken from
type Quote struct {
	Rate decimal.Decimal
	Date time.Time
}

// Provider is the capability set of an upstream rate source
type Provider interface {
	// Name identifies the provider in the factory registry
	Name() string

	// GetLatestRates fetches the latest snapshot for a base currency
	GetLatestRates(ctx context.Context, baseCurrency domain.CurrencyCode) (*domain.RateSnapshot, error)

	// GetExchangeRate fetches a single from->to rate
	GetExchangeRate(ctx context.Context, fromCurrency, toCurrency domain.CurrencyCode) (Quote, error)

	// GetHistoricalRates fetches one snapshot per day over the range,
	// ascending by date
	GetHistoricalRates(ctx context.Context, baseCurrency domain.CurrencyCode, dateRange domain.DateRange) ([]*domain.RateSnapshot, error)
}

// Factory is a pure routing table from provider name to provider, built once
// at startup. Lookup is case-insensitive; unknown names fall back to the
// designated default.
type Factory struct {
	providersByName map[string]Provider
	defaultName     string
}

// NewFactory registers the given providers under their lowercased names
func NewFactory(defaultName string, providers ...Provider) *Factory {
	providersByName := make(map[string]Provider, len(providers))
	for _, registeredProvider := range providers {
		providersByName[strings.ToLower(registeredProvider.Name())] = registeredProvider
	}
	return &Factory{
		providersByName: providersByName,
		defaultName:     defaultName,
	}
}

// GetProvider resolves a provider by name, falling back to the default when
// the name is blank or unregistered. When even the default is missing it
// fails with ProviderNotSupported.
func (factory *Factory) GetProvider(name string) (Provider, error) {
	if name != "" {
		if resolvedProvider, found := factory.providersByName[strings.ToLower(name)]; found {
			return resolvedProvider, nil
		}
	}

	if defaultProvider, found := factory.providersByName[strings.ToLower(factory.defaultName)]; found {
		return defaultProvider, nil
	}

	return nil, domain.NewError(domain.ErrorKindProviderNotSupported,
		"currency provider '%s' is not registered and no default is available", name)
}

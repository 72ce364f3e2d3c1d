package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-converter-api/internal/domain"
	"currency-converter-api/internal/models"
	"currency-converter-api/internal/testutils"
)

func TestRatesServiceGetLatestRates(t *testing.T) {
	mockServer := testutils.NewMockFrankfurterServer()
	defer mockServer.Close()

	ratesService := NewRatesService(newTestFactory(t, mockServer.URL()), defaultBlacklist(), testutils.MockLogger())

	rates, err := ratesService.GetLatestRates(context.Background(), "eur", "")
	require.NoError(t, err)

	assert.Equal(t, "EUR", rates.BaseCurrency)
	assert.Equal(t, "2025-08-22", rates.Date)
	require.Len(t, rates.Rates, 3)
	assert.True(t, rates.Rates["USD"].Equal(decimal.NewFromFloat(1.11)))
}

func TestRatesServiceGetLatestRatesPolicy(t *testing.T) {
	mockServer := testutils.NewMockFrankfurterServer()
	defer mockServer.Close()

	ratesService := NewRatesService(newTestFactory(t, mockServer.URL()), defaultBlacklist(), testutils.MockLogger())

	_, err := ratesService.GetLatestRates(context.Background(), "THB", "")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrorKindBlacklistedCurrency), "got %v", err)
	assert.Equal(t, 0, mockServer.RequestCount())
}

func TestRatesServiceGetHistoricalRates(t *testing.T) {
	mockServer := testutils.NewMockFrankfurterServer()
	defer mockServer.Close()

	ratesService := NewRatesService(newTestFactory(t, mockServer.URL()), defaultBlacklist(), testutils.MockLogger())

	t.Run("full range on one page", func(t *testing.T) {
		result, err := ratesService.GetHistoricalRates(context.Background(), models.HistoricalRatesRequest{
			BaseCurrency: "EUR",
			StartDate:    "2025-08-20",
			EndDate:      "2025-08-22",
			Page:         1,
			PageSize:     50,
		})
		require.NoError(t, err)

		assert.Equal(t, "EUR", result.BaseCurrency)
		assert.Equal(t, 3, result.TotalCount)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "2025-08-20", result.Items[0].Date)
		assert.Equal(t, "2025-08-22", result.Items[2].Date)
	})

	t.Run("second page of size one is the second day", func(t *testing.T) {
		result, err := ratesService.GetHistoricalRates(context.Background(), models.HistoricalRatesRequest{
			BaseCurrency: "EUR",
			StartDate:    "2025-08-20",
			EndDate:      "2025-08-22",
			Page:         2,
			PageSize:     1,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalCount)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "2025-08-21", result.Items[0].Date)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 1, result.PageSize)
	})

	t.Run("page beyond the range is empty with the full total", func(t *testing.T) {
		result, err := ratesService.GetHistoricalRates(context.Background(), models.HistoricalRatesRequest{
			BaseCurrency: "EUR",
			StartDate:    "2025-08-20",
			EndDate:      "2025-08-22",
			Page:         5,
			PageSize:     50,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, 3, result.TotalCount)
	})

	t.Run("partial last page", func(t *testing.T) {
		result, err := ratesService.GetHistoricalRates(context.Background(), models.HistoricalRatesRequest{
			BaseCurrency: "EUR",
			StartDate:    "2025-08-20",
			EndDate:      "2025-08-22",
			Page:         2,
			PageSize:     2,
		})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "2025-08-22", result.Items[0].Date)
	})
}

func TestRatesServiceGetHistoricalRatesValidation(t *testing.T) {
	mockServer := testutils.NewMockFrankfurterServer()
	defer mockServer.Close()

	ratesService := NewRatesService(newTestFactory(t, mockServer.URL()), defaultBlacklist(), testutils.MockLogger())

	tests := []struct {
		name         string
		request      models.HistoricalRatesRequest
		expectedKind domain.ErrorKind
	}{
		{
			name: "blacklisted base",
			request: models.HistoricalRatesRequest{
				BaseCurrency: "PLN", StartDate: "2025-08-20", EndDate: "2025-08-22", Page: 1, PageSize: 10,
			},
			expectedKind: domain.ErrorKindBlacklistedCurrency,
		},
		{
			name: "malformed start date",
			request: models.HistoricalRatesRequest{
				BaseCurrency: "EUR", StartDate: "20-08-2025", EndDate: "2025-08-22", Page: 1, PageSize: 10,
			},
			expectedKind: domain.ErrorKindInvalidDateRange,
		},
		{
			name: "end before start",
			request: models.HistoricalRatesRequest{
				BaseCurrency: "EUR", StartDate: "2025-08-22", EndDate: "2025-08-20", Page: 1, PageSize: 10,
			},
			expectedKind: domain.ErrorKindInvalidDateRange,
		},
		{
			name: "zero page",
			request: models.HistoricalRatesRequest{
				BaseCurrency: "EUR", StartDate: "2025-08-20", EndDate: "2025-08-22", Page: 0, PageSize: 10,
			},
			expectedKind: domain.ErrorKindInvalidPagination,
		},
		{
			name: "oversized page size",
			request: models.HistoricalRatesRequest{
				BaseCurrency: "EUR", StartDate: "2025-08-20", EndDate: "2025-08-22", Page: 1, PageSize: 500,
			},
			expectedKind: domain.ErrorKindInvalidPagination,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ratesService.GetHistoricalRates(context.Background(), testCase.request)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, testCase.expectedKind), "got %v", err)
		})
	}

	// Validation failures must never reach the provider
	assert.Equal(t, 0, mockServer.RequestCount())
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRequest is a validated conversion request from the routing layer
type ConversionRequest struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Amount   decimal.Decimal `json:"amount"`
	Provider string          `json:"provider,omitempty"`
}

// ConversionResult is the outcome of a conversion. RateDate is the date of
// the snapshot the rate was taken from.
type ConversionResult struct {
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	RateDate        string          `json:"rateDate"`
}

// ExchangeRates is the external representation of one rate snapshot
type ExchangeRates struct {
	BaseCurrency string                     `json:"baseCurrency"`
	Date         string                     `json:"date"`
	Rates        map[string]decimal.Decimal `json:"rates"`
}

// HistoricalRatesRequest asks for a paginated range of daily snapshots.
// Dates are ISO YYYY-MM-DD.
type HistoricalRatesRequest struct {
	BaseCurrency string `json:"baseCurrency"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
	Provider     string `json:"provider,omitempty"`
}

// HistoricalRatesResult is one page of daily snapshots plus the total count
// over the full range
type HistoricalRatesResult struct {
	BaseCurrency string          `json:"baseCurrency"`
	Items        []ExchangeRates `json:"items"`
	Page         int             `json:"page"`
	PageSize     int             `json:"pageSize"`
	TotalCount   int             `json:"totalCount"`
}

// ErrorResponse is the error envelope returned by the HTTP surface
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck reports service liveness
type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

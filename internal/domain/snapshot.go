package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotRateScale is the fractional precision rates are stored at inside a
// snapshot. Rounding is half-away-from-zero.
const SnapshotRateScale = 9

// RateSnapshot is an immutable, dated set of rates for one base currency.
// The rate map quotes each currency per 1 unit of the base. Treat as
// read-only once built.
type RateSnapshot struct {
	date  time.Time
	base  CurrencyCode
	rates map[string]decimal.Decimal
}

// NewRateSnapshot normalizes raw rates (uppercase keys, blank keys and
// non-positive values dropped, values rounded to SnapshotRateScale digits)
// and fails when nothing valid survives
func NewRateSnapshot(date time.Time, baseCurrency CurrencyCode, rawRates map[string]decimal.Decimal) (*RateSnapshot, error) {
	if baseCurrency.IsZero() {
		return nil, NewError(ErrorKindInvalidCurrencyCode, "snapshot requires a valid base currency")
	}

	normalized := make(map[string]decimal.Decimal, len(rawRates))
	for quoteCurrency, rate := range rawRates {
		key := strings.ToUpper(strings.TrimSpace(quoteCurrency))
		if key == "" {
			continue
		}
		if rate.Sign() <= 0 {
			continue
		}
		normalized[key] = rate.Round(SnapshotRateScale)
	}

	if len(normalized) == 0 {
		return nil, NewError(ErrorKindNoValidRates,
			"no valid rates for base %s on %s", baseCurrency, date.Format("2006-01-02"))
	}

	return &RateSnapshot{
		date:  truncateToDate(date),
		base:  baseCurrency,
		rates: normalized,
	}, nil
}

// Date returns the snapshot date (UTC, midnight)
func (snapshot *RateSnapshot) Date() time.Time {
	return snapshot.date
}

// Base returns the base currency the rates are quoted against
func (snapshot *RateSnapshot) Base() CurrencyCode {
	return snapshot.base
}

// DirectRate is the single point of truth for "can we price this pair".
// It returns 1 for the base currency itself, the stored base->target rate
// otherwise, or a RateNotFound error identifying base, target and date.
func (snapshot *RateSnapshot) DirectRate(target CurrencyCode) (decimal.Decimal, error) {
	if target.Equals(snapshot.base) {
		return decimal.NewFromInt(1), nil
	}
	rate, found := snapshot.rates[target.String()]
	if !found {
		return decimal.Decimal{}, NewError(ErrorKindRateNotFound,
			"rate %s->%s not found in snapshot %s",
			snapshot.base, target, snapshot.date.Format("2006-01-02"))
	}
	return rate, nil
}

// Rates returns a copy of the normalized rate map
func (snapshot *RateSnapshot) Rates() map[string]decimal.Decimal {
	ratesCopy := make(map[string]decimal.Decimal, len(snapshot.rates))
	for quoteCurrency, rate := range snapshot.rates {
		ratesCopy[quoteCurrency] = rate
	}
	return ratesCopy
}

// Equals requires the same date, same base and identical rate map contents
func (snapshot *RateSnapshot) Equals(other *RateSnapshot) bool {
	if other == nil {
		return false
	}
	if !snapshot.date.Equal(other.date) {
		return false
	}
	if !snapshot.base.Equals(other.base) {
		return false
	}
	if len(snapshot.rates) != len(other.rates) {
		return false
	}
	for quoteCurrency, rate := range snapshot.rates {
		otherRate, found := other.rates[quoteCurrency]
		if !found || !rate.Equal(otherRate) {
			return false
		}
	}
	return true
}

// truncateToDate drops the time-of-day component, keeping a UTC calendar date
func truncateToDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

package domain

import "github.com/shopspring/decimal"

// ConversionScale is the fractional precision of a final converted amount.
// Changing it, or the single-final-round policy below, changes observable
// output and is a compatibility-breaking change.
const ConversionScale = 4

// Convert computes the target-currency amount for source money using a rate
// snapshot. It handles four cases: same currency (identity, returned without
// re-rounding), base->quote (direct rate), quote->base (inverse of the stored
// base->quote rate), and cross via base (divide by the source rate, multiply
// by the target rate). Division and multiplication happen at full decimal
// precision with one final half-away-from-zero round to ConversionScale
// digits; no intermediate rounding is applied.
//
// The blacklist is enforced on source, target and snapshot base before any
// arithmetic.
func Convert(source Money, targetCurrency CurrencyCode, snapshot *RateSnapshot, blacklist Blacklist) (Money, error) {
	for _, code := range []CurrencyCode{source.Currency(), targetCurrency, snapshot.Base()} {
		if blacklist.Contains(code.String()) {
			return Money{}, NewError(ErrorKindBlacklistedCurrency,
				"currency '%s' is not allowed by policy", code)
		}
	}

	if source.Currency().Equals(targetCurrency) {
		return source, nil
	}

	var resultAmount decimal.Decimal

	switch {
	case source.Currency().Equals(snapshot.Base()):
		directRate, err := snapshot.DirectRate(targetCurrency)
		if err != nil {
			return Money{}, err
		}
		resultAmount = source.Amount().Mul(directRate)

	case targetCurrency.Equals(snapshot.Base()):
		sourceRate, err := snapshot.DirectRate(source.Currency())
		if err != nil {
			return Money{}, err
		}
		resultAmount = source.Amount().Div(sourceRate)

	default:
		sourceRate, err := snapshot.DirectRate(source.Currency())
		if err != nil {
			return Money{}, err
		}
		targetRate, err := snapshot.DirectRate(targetCurrency)
		if err != nil {
			return Money{}, err
		}
		amountInBase := source.Amount().Div(sourceRate)
		resultAmount = amountInBase.Mul(targetRate)
	}

	return NewMoney(resultAmount.Round(ConversionScale), targetCurrency)
}

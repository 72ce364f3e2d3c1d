package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyCodePattern matches ISO-4217 style 3-letter alphabetic codes
var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Blacklist is a set of currency codes excluded by policy. Keys are stored
// uppercase; membership checks are case-insensitive.
type Blacklist map[string]struct{}

// NewBlacklist builds a blacklist from raw codes, normalizing to uppercase
// and ignoring blanks
func NewBlacklist(codes []string) Blacklist {
	blacklist := make(Blacklist, len(codes))
	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		blacklist[normalized] = struct{}{}
	}
	return blacklist
}

// Contains reports whether the code is excluded by policy
func (blacklist Blacklist) Contains(code string) bool {
	_, blacklisted := blacklist[strings.ToUpper(code)]
	return blacklisted
}

// CurrencyCode is a validated 3-letter currency identifier, stored uppercase.
// The zero value is invalid; construct through NewCurrencyCode.
type CurrencyCode struct {
	value string
}

// NewCurrencyCode validates and normalizes a raw currency code
func NewCurrencyCode(raw string) (CurrencyCode, error) {
	trimmed := strings.TrimSpace(raw)
	if !currencyCodePattern.MatchString(trimmed) {
		return CurrencyCode{}, NewError(ErrorKindInvalidCurrencyCode,
			"'%s' is not a valid 3-letter currency code", raw)
	}
	return CurrencyCode{value: strings.ToUpper(trimmed)}, nil
}

// NewCurrencyCodeWithPolicy validates a raw code and additionally rejects
// codes excluded by the given blacklist
func NewCurrencyCodeWithPolicy(raw string, blacklist Blacklist) (CurrencyCode, error) {
	currencyCode, err := NewCurrencyCode(raw)
	if err != nil {
		return CurrencyCode{}, err
	}
	if blacklist.Contains(currencyCode.value) {
		return CurrencyCode{}, NewError(ErrorKindBlacklistedCurrency,
			"currency '%s' is not allowed by policy", currencyCode.value)
	}
	return currencyCode, nil
}

// String returns the normalized uppercase code
func (currencyCode CurrencyCode) String() string {
	return currencyCode.value
}

// Equals compares two codes by normalized value
func (currencyCode CurrencyCode) Equals(other CurrencyCode) bool {
	return currencyCode.value == other.value
}

// IsZero reports whether the code was never constructed through a validator
func (currencyCode CurrencyCode) IsZero() bool {
	return currencyCode.value == ""
}

// Money is an immutable monetary amount in a specific currency. Sign validity
// is a caller concern; the currency must be a constructed CurrencyCode.
type Money struct {
	amount   decimal.Decimal
	currency CurrencyCode
}

// NewMoney creates a monetary value. It never fails on amount sign but
// rejects a zero-value currency.
func NewMoney(amount decimal.Decimal, currency CurrencyCode) (Money, error) {
	if currency.IsZero() {
		return Money{}, NewError(ErrorKindInvalidCurrencyCode, "money requires a valid currency")
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount returns the decimal amount
func (money Money) Amount() decimal.Decimal {
	return money.amount
}

// Currency returns the currency code
func (money Money) Currency() CurrencyCode {
	return money.currency
}

// WithAmount re-prices the money, producing a new value in the same currency
func (money Money) WithAmount(newAmount decimal.Decimal) Money {
	return Money{amount: newAmount, currency: money.currency}
}

// Equals compares amount and currency
func (money Money) Equals(other Money) bool {
	return money.amount.Equal(other.amount) && money.currency.Equals(other.currency)
}

// String formats the money as "<amount> <code>"
func (money Money) String() string {
	return money.amount.String() + " " + money.currency.String()
}

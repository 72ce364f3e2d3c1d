package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCurrencyCode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{
			name:     "uppercase code",
			raw:      "USD",
			expected: "USD",
		},
		{
			name:     "lowercase is normalized",
			raw:      "eur",
			expected: "EUR",
		},
		{
			name:     "mixed case is normalized",
			raw:      "gBp",
			expected: "GBP",
		},
		{
			name:     "surrounding whitespace is trimmed",
			raw:      "  JPY ",
			expected: "JPY",
		},
		{
			name:      "empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "too short",
			raw:       "US",
			expectErr: true,
		},
		{
			name:      "too long",
			raw:       "USDX",
			expectErr: true,
		},
		{
			name:      "digits rejected",
			raw:       "U5D",
			expectErr: true,
		},
		{
			name:      "symbols rejected",
			raw:       "US$",
			expectErr: true,
		},
		{
			name:      "interior whitespace rejected",
			raw:       "U D",
			expectErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			currencyCode, err := NewCurrencyCode(testCase.raw)

			if testCase.expectErr {
				if err == nil {
					t.Fatalf("expected error for input %q, got none", testCase.raw)
				}
				if !IsKind(err, ErrorKindInvalidCurrencyCode) {
					t.Errorf("expected INVALID_CURRENCY_CODE, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if currencyCode.String() != testCase.expected {
				t.Errorf("expected %q, got %q", testCase.expected, currencyCode.String())
			}
			if currencyCode.IsZero() {
				t.Error("constructed code should not be zero")
			}
		})
	}
}

func TestNewCurrencyCodeWithPolicy(t *testing.T) {
	blacklist := NewBlacklist([]string{"TRY", "PLN", "THB", "MXN"})

	tests := []struct {
		name         string
		raw          string
		expectedKind ErrorKind
		expectErr    bool
	}{
		{
			name: "allowed currency passes",
			raw:  "USD",
		},
		{
			name:         "blacklisted currency rejected",
			raw:          "TRY",
			expectErr:    true,
			expectedKind: ErrorKindBlacklistedCurrency,
		},
		{
			name:         "blacklist check is case-insensitive",
			raw:          "pln",
			expectErr:    true,
			expectedKind: ErrorKindBlacklistedCurrency,
		},
		{
			name:         "format validation runs before policy",
			raw:          "TRYX",
			expectErr:    true,
			expectedKind: ErrorKindInvalidCurrencyCode,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewCurrencyCodeWithPolicy(testCase.raw, blacklist)

			if !testCase.expectErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error for input %q, got none", testCase.raw)
			}
			if !IsKind(err, testCase.expectedKind) {
				t.Errorf("expected kind %s, got %v", testCase.expectedKind, err)
			}
		})
	}
}

func TestBlacklist(t *testing.T) {
	blacklist := NewBlacklist([]string{" try ", "", "pln"})

	if len(blacklist) != 2 {
		t.Fatalf("expected 2 entries after normalization, got %d", len(blacklist))
	}
	if !blacklist.Contains("TRY") {
		t.Error("expected TRY to be blacklisted")
	}
	if !blacklist.Contains("pln") {
		t.Error("expected lowercase lookup to match")
	}
	if blacklist.Contains("USD") {
		t.Error("USD should not be blacklisted")
	}
}

func TestMoney(t *testing.T) {
	usd, err := NewCurrencyCode("USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	money, err := NewMoney(decimal.NewFromFloat(10.5), usd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if money.Currency().String() != "USD" {
		t.Errorf("expected USD, got %s", money.Currency())
	}
	if !money.Amount().Equal(decimal.NewFromFloat(10.5)) {
		t.Errorf("expected 10.5, got %s", money.Amount())
	}

	// Negative amounts are representable; sign policy belongs to callers
	negative, err := NewMoney(decimal.NewFromInt(-3), usd)
	if err != nil {
		t.Fatalf("unexpected error for negative amount: %v", err)
	}
	if negative.Amount().Sign() != -1 {
		t.Error("expected negative amount to be preserved")
	}

	if _, err := NewMoney(decimal.NewFromInt(1), CurrencyCode{}); err == nil {
		t.Error("expected error for zero-value currency")
	}

	repriced := money.WithAmount(decimal.NewFromInt(7))
	if !repriced.Amount().Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected 7, got %s", repriced.Amount())
	}
	if !repriced.Currency().Equals(usd) {
		t.Error("WithAmount must keep the currency")
	}
	if !money.Amount().Equal(decimal.NewFromFloat(10.5)) {
		t.Error("WithAmount must not mutate the original")
	}

	if money.String() != "10.5 USD" {
		t.Errorf("unexpected string form: %s", money.String())
	}
}

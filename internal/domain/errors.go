package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain and upstream failures so callers can branch
// without string matching
type ErrorKind int

const (
	ErrorKindInvalidCurrencyCode ErrorKind = iota
	ErrorKindBlacklistedCurrency
	ErrorKindRateNotFound
	ErrorKindNoValidRates
	ErrorKindInvalidDateRange
	ErrorKindInvalidPagination
	ErrorKindProviderNotSupported
	ErrorKindUpstreamEmptyResponse
	ErrorKindProviderUnavailable
	ErrorKindCircuitOpen
)

// String returns a stable machine-readable code for the kind
func (errorKind ErrorKind) String() string {
	switch errorKind {
	case ErrorKindInvalidCurrencyCode:
		return "INVALID_CURRENCY_CODE"
	case ErrorKindBlacklistedCurrency:
		return "CURRENCY_BLACKLISTED"
	case ErrorKindRateNotFound:
		return "RATE_NOT_FOUND"
	case ErrorKindNoValidRates:
		return "NO_VALID_RATES"
	case ErrorKindInvalidDateRange:
		return "INVALID_DATE_RANGE"
	case ErrorKindInvalidPagination:
		return "INVALID_PAGINATION"
	case ErrorKindProviderNotSupported:
		return "PROVIDER_NOT_SUPPORTED"
	case ErrorKindUpstreamEmptyResponse:
		return "UPSTREAM_EMPTY_RESPONSE"
	case ErrorKindProviderUnavailable:
		return "PROVIDER_UNAVAILABLE"
	case ErrorKindCircuitOpen:
		return "CIRCUIT_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Error is a kind-tagged error carrying enough context to be logged
// without re-deriving state
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (domainError *Error) Error() string {
	if domainError.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", domainError.Kind, domainError.Message, domainError.Cause)
	}
	return fmt.Sprintf("%s: %s", domainError.Kind, domainError.Message)
}

// Unwrap exposes the original cause for errors.Is / errors.As chains
func (domainError *Error) Unwrap() error {
	return domainError.Cause
}

// NewError creates a domain error with a formatted message
func NewError(kind ErrorKind, format string, arguments ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, arguments...),
	}
}

// WrapError creates a domain error that preserves the original cause
func WrapError(kind ErrorKind, cause error, format string, arguments ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, arguments...),
		Cause:   cause,
	}
}

// IsKind reports whether err (or anything it wraps) is a domain error of the
// given kind
func IsKind(err error, kind ErrorKind) bool {
	var domainError *Error
	if errors.As(err, &domainError) {
		return domainError.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first domain error in the chain, or false
// when err carries no domain classification
func KindOf(err error) (ErrorKind, bool) {
	var domainError *Error
	if errors.As(err, &domainError) {
		return domainError.Kind, true
	}
	return 0, false
}

// Package money renders integer minor-unit amounts for the currencies the engine accepts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// minor-unit exponents per ISO 4217 code
var exponents = map[string]int32{
	"VND": 0,
	"JPY": 0,
	"KRW": 0,
	"IDR": 2,
	"SGD": 2,
	"THB": 2,
	"MYR": 2,
	"PHP": 2,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"AUD": 2,
	"KWD": 3,
	"BHD": 3,
}

// IsSupported reports whether code is a currency the engine can book loans in
func IsSupported(code string) bool {
	_, ok := exponents[strings.ToUpper(code)]
	return ok
}

// Exponent returns the number of minor-unit digits for code, defaulting to 2
func Exponent(code string) int32 {
	if exp, ok := exponents[strings.ToUpper(code)]; ok {
		return exp
	}
	return 2
}

// ToDecimal converts minor units to a major-unit decimal
func ToDecimal(amount int64, code string) decimal.Decimal {
	return decimal.New(amount, -Exponent(code))
}

// Format renders minor units as a fixed-point major-unit string, e.g. 12345 USD -> "123.45"
func Format(amount int64, code string) string {
	return ToDecimal(amount, code).StringFixed(Exponent(code))
}


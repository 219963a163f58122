// Package currency converts prices between CRC and USD using a single
// global exchange rate (colones per dollar).
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/facturacr/facturacr/internal/models"
)

// FallbackRate is substituted whenever the configured exchange rate is
// missing, zero or negative, so a conversion never divides by zero.
const FallbackRate = 520

// Conversion is the result of a price conversion. Description is a
// human-readable summary for display and is empty when no conversion
// was performed.
type Conversion struct {
	Amount      float64
	Description string
}

// Rate sanitizes a configured exchange rate, returning FallbackRate for
// zero, negative or non-finite values.
func Rate(rate float64) float64 {
	if rate > 0 && !math.IsInf(rate, 1) && !math.IsNaN(rate) {
		return rate
	}
	return FallbackRate
}

// Convert converts amount from one currency code to another. Codes are
// compared case- and whitespace-insensitively. USD→CRC multiplies by the
// rate, CRC→USD divides; an equal or unrecognized pair returns the amount
// unchanged (a no-op, not an error).
func Convert(amount float64, from, to string, rate float64) Conversion {
	f := normalize(from)
	t := normalize(to)
	r := Rate(rate)

	if f == t {
		return Conversion{Amount: amount}
	}
	switch {
	case f == models.CurrencyUSD && t == models.CurrencyCRC:
		return Conversion{
			Amount:      amount * r,
			Description: fmt.Sprintf("Conversión: $%s x %s", trim(amount), trim(r)),
		}
	case f == models.CurrencyCRC && t == models.CurrencyUSD:
		return Conversion{
			Amount:      amount / r,
			Description: fmt.Sprintf("Conversión: ₡%s / %s", trim(amount), trim(r)),
		}
	}
	return Conversion{Amount: amount}
}

// normalize folds a currency code for comparison; empty defaults to CRC.
func normalize(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return models.CurrencyCRC
	}
	return c
}

func trim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

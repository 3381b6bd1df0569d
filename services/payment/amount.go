package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyExponent = map[string]int32{
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "XOF": 0, "XAF": 0,
	"IDR": 0,
	"BHD": 3, "KWD": 3, "OMR": 3, "JOD": 3, "TND": 3,
}

func exponent(currency string) int32 {
	if e, ok := currencyExponent[strings.ToUpper(currency)]; ok {
		return e
	}
	return 2
}

// MinorUnits converts an amount to the integer unit processors expect
// (cents for most currencies).
func MinorUnits(amount float64, currency string) int64 {
	return decimal.NewFromFloat(amount).
		Shift(exponent(currency)).
		Round(0).
		IntPart()
}

// FormatAmount renders amount with the currency's number of decimals.
func FormatAmount(amount float64, currency string) string {
	return decimal.NewFromFloat(amount).StringFixed(exponent(currency))
}

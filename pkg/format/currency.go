// Package format renders monetary amounts for display.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with the given symbol, thousands
// separators and two decimals (e.g., "-$1,234.56").
func Currency(amount float64, symbol string) string {
	return withSign(amount, symbol, printer.Sprintf("%.2f", math.Abs(amount)))
}

// WholeCurrency is Currency rounded to whole units (e.g., "₹817,616").
func WholeCurrency(amount float64, symbol string) string {
	return withSign(amount, symbol, printer.Sprintf("%.0f", math.Abs(amount)))
}

// TruncatedCurrency drops the fractional part instead of rounding it.
func TruncatedCurrency(amount float64, symbol string) string {
	return withSign(amount, symbol, printer.Sprintf("%d", int64(math.Abs(math.Trunc(amount)))))
}

func withSign(amount float64, symbol, formatted string) string {
	if amount < 0 && formatted != "0" && formatted != "0.00" {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

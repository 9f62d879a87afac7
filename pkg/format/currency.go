// Package format renders currency amounts for terminal and CSV output.
package format

import (
	"math"
	"strconv"

	"github.com/iwvelando/car-cost-forecast/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol is used when no currency symbol is configured.
const DefaultSymbol = "$"

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with the given symbol and thousands
// separators (e.g., "-$1,234.56"). An empty symbol falls back to DefaultSymbol.
func Currency(symbol string, amount float64) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	amount = mathutil.Round(amount)
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	amount = mathutil.Round(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + formatPositiveCurrency(math.Abs(amount))
}

// Plain returns a two-decimal amount without separators, suited to CSV cells.
func Plain(amount float64) string {
	return strconv.FormatFloat(mathutil.Round(amount), 'f', 2, 64)
}

func formatPositiveCurrency(value float64) string {
	return printer.Sprintf("%.2f", value)
}

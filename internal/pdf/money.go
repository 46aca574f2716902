package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatPKR renders an amount as "PKR 2,000". Amounts are rounded
// half-up to the nearest whole rupee before formatting.
func FormatPKR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	return moneyPrinter.Sprintf("PKR %d", rounded.IntPart())
}

package entities

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an amount rounded to whole yen with digit grouping,
// e.g. ¥12,345.
func FormatYen(amount decimal.Decimal) string {
	return yenPrinter.Sprintf("¥%d", amount.Round(0).IntPart())
}

package pricing

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencySymbol = "£"

var gbPrinter = message.NewPrinter(language.BritishEnglish)

type formatOptions struct {
	symbol bool
}

// FormatOption customises FormatPrice output.
type FormatOption func(*formatOptions)

// WithoutSymbol omits the leading currency symbol.
func WithoutSymbol() FormatOption {
	return func(o *formatOptions) {
		o.symbol = false
	}
}

// FormatPrice renders an amount as whole pounds with en-GB thousands grouping, e.g. "£1,108".
// Halves round away from zero. Non-finite amounts render as zero.
func FormatPrice(amount float64, opts ...FormatOption) string {
	options := formatOptions{symbol: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var whole int64
	if !math.IsNaN(amount) && !math.IsInf(amount, 0) {
		whole = decimal.NewFromFloat(amount).Round(0).IntPart()
	}

	formatted := gbPrinter.Sprintf("%d", whole)
	if options.symbol {
		return currencySymbol + formatted
	}
	return formatted
}

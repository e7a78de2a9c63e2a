package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// defaultPrecision is used for unknown currencies and for values without
// a currency.
const defaultPrecision = 2

// Precision returns the number of decimals shown for currency: the ledger's
// display_precision if set, the ISO 4217 minor unit otherwise.
func (r *Report) Precision(currency string) int32 {
	if p, ok := r.snapshot().options.DisplayPrecision[currency]; ok {
		return p
	}
	if c := money.GetCurrency(currency); c != nil {
		return int32(c.Fraction)
	}
	return defaultPrecision
}

// Quantize renders value with the display precision of currency, grouping
// thousands when the ledger sets render_commas.
func (r *Report) Quantize(value decimal.Decimal, currency string) string {
	precision := int32(defaultPrecision)
	if currency != "" {
		precision = r.Precision(currency)
	}
	if !r.snapshot().options.RenderCommas {
		return value.StringFixed(precision)
	}
	minor := value.Shift(precision).Round(0).IntPart()
	return money.NewFormatter(int(precision), ".", ",", "", "1").Format(minor)
}

package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/output"
	"github.com/robinvdvleuten/beanreport/report"
)

// formatBalance renders a balance as "12.00 EUR, 3 X" with each number
// quantized to its display precision. Zero amounts are left out.
func formatBalance(r *report.Report, b *inventory.Balance) string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, e := range b.Entries() {
		if e.Amount.IsZero() {
			continue
		}
		parts = append(parts, r.Quantize(e.Amount, e.Currency)+" "+e.Currency)
	}
	return strings.Join(parts, ", ")
}

// amountCell renders a balance, coloured red when every amount is negative.
func amountCell(r *report.Report, styles *output.Styles, b *inventory.Balance) cell {
	text := formatBalance(r, b)
	negative := text != ""
	if b != nil {
		for _, e := range b.Entries() {
			if !e.Amount.IsZero() && !e.Amount.IsNegative() {
				negative = false
			}
		}
	}
	return cell{text: text, style: func(s string) string { return styles.Amount(s, negative) }}
}

// numberCell renders a single number in currency.
func numberCell(r *report.Report, styles *output.Styles, n decimal.Decimal, currency string) cell {
	return cell{
		text:  r.Quantize(n, currency),
		style: func(s string) string { return styles.Amount(s, n.IsNegative()) },
	}
}

// accountCell indents the last component of account by its depth below
// base.
func accountCell(styles *output.Styles, account, base string) cell {
	depth := len(data.AccountParts(account)) - len(data.AccountParts(base))
	if base == "" {
		depth--
	}
	if depth < 0 {
		depth = 0
	}
	name := data.AccountLeaf(account)
	if depth == 0 {
		name = account
	}
	return cell{
		text:  strings.Repeat("  ", depth) + name,
		style: styles.Account,
	}
}

// truncate shortens text to width display columns.
func truncate(text string, width int) string {
	return runewidth.Truncate(text, width, "…")
}

package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
)

type HoldingsCmd struct {
	By string `help:"Aggregate holdings by account, currency or cost_currency."`
}

func (cmd *HoldingsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "holdings")
	if err != nil {
		return err
	}
	defer s.close()

	list, err := s.report.Holdings(s.ctx, cmd.By)
	if err != nil {
		return err
	}

	t := &table{header: []string{"Account", "Units", "Currency", "Cost", "Book value", "Price", "Market value", "Price date"}}
	for _, h := range list {
		priceDate := ""
		if !h.PriceDate.IsZero() {
			priceDate = h.PriceDate.Format(data.DateLayout)
		}
		t.add(
			cell{text: h.Account, style: s.styles.Account},
			numberCell(s.report, s.styles, h.Number, h.Currency),
			plain(h.Currency),
			numberCell(s.report, s.styles, h.CostNumber, h.CostCurrency),
			numberCell(s.report, s.styles, h.BookValue, h.CostCurrency),
			numberCell(s.report, s.styles, h.PriceNumber, h.CostCurrency),
			numberCell(s.report, s.styles, h.MarketValue, h.CostCurrency),
			cell{text: priceDate, style: s.styles.Dim},
		)
	}
	t.render(s.stdout, s.styles)

	if total := list.MarketValue(); len(list) > 0 {
		printInfof(s.stdout, s.styles, "Total market value: %s", total.String())
	}
	return nil
}

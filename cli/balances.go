package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/realization"
)

type BalancesCmd struct {
	Account    string `help:"Account to show, with its descendants." arg:"" optional:""`
	Accumulate bool   `help:"Show running totals instead of per-interval changes." short:"a"`
	Budget     bool   `help:"Show the remaining budget next to each balance." short:"b"`
	Depth      int    `help:"Hide accounts nested deeper than this below the shown account (0 shows all)." default:"0"`
}

func (cmd *BalancesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "balances")
	if err != nil {
		return err
	}
	defer s.close()

	interval, err := globals.interval(s.report)
	if err != nil {
		return err
	}
	tree, buckets, err := s.report.IntervalBalances(s.ctx, interval, cmd.Account, cmd.Accumulate)
	if err != nil {
		return err
	}
	if tree == nil {
		printInfof(s.stdout, s.styles, "No entries in the report range")
		return nil
	}

	t := &table{header: []string{"Account"}}
	for _, b := range buckets {
		label := dateutil.Label(b.Begin, interval)
		t.header = append(t.header, label)
		if cmd.Budget {
			t.header = append(t.header, "budget")
		}
	}

	base := cmd.Account
	tree.Walk(func(node *realization.ZippedNode) {
		if node.Account == "" {
			return
		}
		if cmd.Depth > 0 && depthBelow(node.Account, base) > cmd.Depth {
			return
		}
		row := []cell{accountCell(s.styles, node.Account, base)}
		for _, b := range node.Balances {
			row = append(row, amountCell(s.report, s.styles, b.BalanceChildren))
			if cmd.Budget {
				row = append(row, budgetCell(s, b.BudgetChildren))
			}
		}
		t.add(row...)
	})
	t.render(s.stdout, s.styles)
	return nil
}

func budgetCell(s *session, b *inventory.Balance) cell {
	c := amountCell(s.report, s.styles, b)
	c.style = s.styles.Dim
	return c
}

// depthBelow returns how many components account has beyond base.
func depthBelow(account, base string) int {
	n := len(data.AccountParts(account)) - len(data.AccountParts(base))
	if n < 0 {
		return 0
	}
	return n
}

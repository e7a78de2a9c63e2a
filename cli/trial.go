package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/realization"
)

type TrialCmd struct {
	Closing bool `help:"Transfer income and expenses to the current earnings account first."`
}

func (cmd *TrialCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "trial")
	if err != nil {
		return err
	}
	defer s.close()

	roots := s.report.TrialBalance()
	if cmd.Closing {
		tree, err := s.report.ClosingBalances("")
		if err != nil {
			return err
		}
		roots = tree.Children
	}

	t := &table{header: []string{"Account", "Balance", "Total"}}
	for _, root := range roots {
		root.Walk(func(node *realization.TreeNode) {
			t.add(
				accountCell(s.styles, node.Account, ""),
				amountCell(s.report, s.styles, node.Balance),
				amountCell(s.report, s.styles, node.BalanceChildren),
			)
		})
	}
	t.render(s.stdout, s.styles)
	return nil
}

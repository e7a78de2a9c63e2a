package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
)

type NetworthCmd struct{}

func (cmd *NetworthCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "networth")
	if err != nil {
		return err
	}
	defer s.close()

	interval, err := globals.interval(s.report)
	if err != nil {
		return err
	}
	currencies := s.report.Options().OperatingCurrencies
	if len(currencies) == 0 {
		printInfof(s.stdout, s.styles, "No operating currencies set")
		return nil
	}
	points := s.report.NetWorthAtIntervals(s.ctx, interval)
	if len(points) == 0 {
		printInfof(s.stdout, s.styles, "No entries in the report range")
		return nil
	}

	t := &table{header: append([]string{"Date"}, currencies...)}
	for _, p := range points {
		row := []cell{plain(p.Date.Format(data.DateLayout))}
		for _, c := range currencies {
			row = append(row, numberCell(s.report, s.styles, p.Balance.Get(c), c))
		}
		t.add(row...)
	}
	t.render(s.stdout, s.styles)
	return nil
}

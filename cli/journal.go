package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/realization"
	"github.com/robinvdvleuten/beanreport/report"
)

const narrationWidth = 40

type JournalCmd struct {
	Account  string `help:"Account whose journal to show." arg:""`
	Children bool   `help:"Include the postings of all descendant accounts." short:"c"`
	From     string `help:"Start the journal at this date (YYYY-MM-DD), carrying the earlier balance in."`
}

func (cmd *JournalCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "journal")
	if err != nil {
		return err
	}
	defer s.close()

	rows, err := cmd.rows(s.report)
	if err != nil {
		return err
	}

	t := &table{header: []string{"Date", "Type", "Description", "Change", "Balance"}, left: 3}
	for _, row := range rows {
		t.add(
			plain(row.Entry.EntryDate().Format(data.DateLayout)),
			cell{text: describeKind(row.Entry), style: s.styles.Keyword},
			plain(truncate(describe(row.Entry), narrationWidth)),
			amountCell(s.report, s.styles, row.Change.Units()),
			amountCell(s.report, s.styles, row.Balance.Units()),
		)
	}
	t.render(s.stdout, s.styles)
	return nil
}

func (cmd *JournalCmd) rows(r *report.Report) ([]realization.JournalRow, error) {
	if cmd.From == "" {
		return r.AccountJournal(cmd.Account, cmd.Children), nil
	}
	begin, err := data.ParseDate(cmd.From)
	if err != nil {
		return nil, err
	}
	return r.AccountJournalFrom(cmd.Account, cmd.Children, begin)
}

func describeKind(entry data.Entry) string {
	if txn, ok := entry.(*data.Transaction); ok {
		return txn.Flag
	}
	return string(entry.Kind())
}

func describe(entry data.Entry) string {
	switch e := entry.(type) {
	case *data.Transaction:
		if e.Payee != "" {
			return e.Payee + " | " + e.Narration
		}
		return e.Narration
	case *data.Balance:
		return e.Amount.String()
	case *data.Note:
		return e.Comment
	case *data.Document:
		return e.Filename
	case *data.Pad:
		return e.SourceAccount
	}
	return ""
}

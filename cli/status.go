package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/report"
)

type StatusCmd struct {
	Accounts []string `help:"Accounts to check. Defaults to every balance sheet account, or a picked one on a terminal." arg:"" optional:""`
	Strict   bool     `help:"Exit with status 1 when an account failed its last balance assertion."`
}

func (cmd *StatusCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx, "status")
	if err != nil {
		return err
	}
	defer s.close()

	accounts := cmd.Accounts
	if len(accounts) == 0 {
		opts := s.report.Options()
		for _, account := range s.report.Accounts(true) {
			if opts.IsBalanceSheetAccount(account) {
				accounts = append(accounts, account)
			}
		}
		picked, err := pickAccount("Which account?", accounts)
		if err != nil {
			return err
		}
		if picked != "" {
			accounts = []string{picked}
		}
	}

	failed := 0
	t := &table{header: []string{"Status", "Account", "Last entry"}, left: 3}
	for _, account := range accounts {
		status := s.report.AccountUptodateStatus(account)
		if status == report.StatusRed {
			failed++
		}
		last := ""
		if entry, ok := s.report.LastEntry(account); ok {
			last = entry.EntryDate().Format(data.DateLayout) + " " + string(entry.Kind())
		}
		t.add(
			statusCell(s, status),
			cell{text: account, style: s.styles.Account},
			cell{text: last, style: s.styles.Dim},
		)
	}
	t.render(s.stdout, s.styles)

	if cmd.Strict && failed > 0 {
		printError(s.stderr, s.styles, "balance assertions failed")
		return NewCommandError(1)
	}
	return nil
}

// statusCell renders "● green". It must be the first, left-aligned column:
// the dot replaces the leading space of the padded text.
func statusCell(s *session, status report.Status) cell {
	text := string(status)
	if text == "" {
		text = "none"
	}
	return cell{text: "  " + text, style: func(padded string) string {
		return s.styles.Status(string(status)) + padded[1:]
	}}
}

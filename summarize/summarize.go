// Package summarize restricts entries to a time window while keeping the
// balance sheet correct, and transfers income statement balances to equity.
package summarize

import (
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
)

// Clamp returns the entries of [begin, end) preceded by synthetic opening
// entries that carry every balance accumulated before begin.
//
// Income and expenses accumulated before begin are moved to the previous
// earnings account, so the window's income statement starts from zero. Open
// entries before begin are kept. A zero begin or end leaves that side open.
func Clamp(entries []data.Entry, begin, end time.Time, opts data.Options) []data.Entry {
	var out []data.Entry
	balances := map[string]*inventory.Inventory{}

	for _, entry := range entries {
		date := entry.EntryDate()
		if !end.IsZero() && !date.Before(end) {
			continue
		}
		if begin.IsZero() || !date.Before(begin) {
			out = append(out, entry)
			continue
		}
		switch e := entry.(type) {
		case *data.Open:
			out = append(out, e)
		case *data.Transaction:
			for _, p := range e.Postings {
				account := p.Account
				if opts.IsIncomeStatementAccount(account) {
					account = opts.EquityAccount(opts.AccountPreviousEarnings)
				}
				inv, ok := balances[account]
				if !ok {
					inv = inventory.New()
					balances[account] = inv
				}
				inv.AddPosting(p)
			}
		}
	}

	if len(balances) > 0 {
		out = append(out, openingEntries(balances, begin.AddDate(0, 0, -1), opts)...)
	}
	data.Sort(out)
	return out
}

func openingEntries(balances map[string]*inventory.Inventory, date time.Time, opts data.Options) []data.Entry {
	counterpart := opts.EquityAccount(opts.AccountPreviousBalances)
	accounts := maps.Keys(balances)
	slices.Sort(accounts)

	var out []data.Entry
	for _, account := range accounts {
		inv := balances[account]
		if inv.IsEmpty() {
			continue
		}
		txn := &data.Transaction{
			Header:    data.Header{Date: date, Meta: data.Meta{Filename: "<summarize>"}},
			Flag:      data.FlagSummarize,
			Narration: fmt.Sprintf("Opening balance for '%s' (Summarization)", account),
		}
		for _, pos := range inv.Positions() {
			posting := data.Posting{Account: account, Units: pos.Units, Cost: pos.Cost}
			weight := posting.Weight()
			txn.Postings = append(txn.Postings,
				posting,
				data.Posting{Account: counterpart, Units: data.Amount{Number: weight.Number.Neg(), Currency: weight.Currency}},
			)
		}
		out = append(out, txn)
	}
	return out
}

// Cap transfers the balances of all income and expense accounts to the
// current earnings account, dated the day after the last entry. The result
// describes closing balances: only balance sheet accounts carry value.
func Cap(entries []data.Entry, opts data.Options) []data.Entry {
	if len(entries) == 0 {
		return entries
	}
	balances := map[string]*inventory.Inventory{}
	last := entries[0].EntryDate()
	for _, entry := range entries {
		if d := entry.EntryDate(); d.After(last) {
			last = d
		}
		txn, ok := entry.(*data.Transaction)
		if !ok {
			continue
		}
		for _, p := range txn.Postings {
			if !opts.IsIncomeStatementAccount(p.Account) {
				continue
			}
			inv, ok := balances[p.Account]
			if !ok {
				inv = inventory.New()
				balances[p.Account] = inv
			}
			inv.AddPosting(p)
		}
	}

	earnings := opts.EquityAccount(opts.AccountCurrentEarnings)
	date := last.AddDate(0, 0, 1)
	accounts := maps.Keys(balances)
	slices.Sort(accounts)

	out := slices.Clone(entries)
	for _, account := range accounts {
		inv := balances[account]
		if inv.IsEmpty() {
			continue
		}
		txn := &data.Transaction{
			Header:    data.Header{Date: date, Meta: data.Meta{Filename: "<summarize>"}},
			Flag:      data.FlagTransfer,
			Narration: fmt.Sprintf("Transfer balance for '%s' (Transfer balance)", account),
		}
		for _, pos := range inv.Positions() {
			neg := data.Amount{Number: pos.Units.Number.Neg(), Currency: pos.Units.Currency}
			txn.Postings = append(txn.Postings,
				data.Posting{Account: account, Units: neg, Cost: pos.Cost},
				data.Posting{Account: earnings, Units: pos.Units, Cost: pos.Cost},
			)
		}
		out = append(out, txn)
	}
	return out
}

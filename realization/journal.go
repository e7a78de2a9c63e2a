package realization

import (
	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
)

// JournalRow is one entry of an account journal with its effect on the
// running balance. Postings holds the legs of the entry that touched the
// journal's accounts.
type JournalRow struct {
	Entry    data.Entry
	Postings []data.Posting
	Change   *inventory.Inventory
	Balance  *inventory.Inventory
}

// IterateWithBalance groups items by entry and computes the running balance
// after each entry, starting from opening.
func IterateWithBalance(items []Item, opening *inventory.Inventory) []JournalRow {
	running := inventory.New().AddInventory(opening)
	var rows []JournalRow
	for _, item := range items {
		if n := len(rows); n > 0 && rows[n-1].Entry == item.Entry && item.Posting != nil {
			row := &rows[n-1]
			row.Postings = append(row.Postings, *item.Posting)
			row.Change.AddPosting(*item.Posting)
			running.AddPosting(*item.Posting)
			row.Balance = running.Copy()
			continue
		}
		row := JournalRow{Entry: item.Entry, Change: inventory.New()}
		if item.Posting != nil {
			row.Postings = []data.Posting{*item.Posting}
			row.Change.AddPosting(*item.Posting)
			running.AddPosting(*item.Posting)
		}
		row.Balance = running.Copy()
		rows = append(rows, row)
	}
	return rows
}

// FindLastActivePosting returns the last posting or balance-relevant entry of
// items, ignoring transactions flagged as unrealized gains.
func FindLastActivePosting(items []Item) (Item, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		switch e := item.Entry.(type) {
		case *data.Transaction:
			if e.Flag == data.FlagUnrealized {
				continue
			}
			return item, true
		case *data.Open, *data.Close, *data.Pad, *data.Balance, *data.Note:
			return item, true
		}
	}
	return Item{}, false
}

// LastBalanceOrTransaction returns the last item that is either a balance
// assertion or a realized transaction posting.
func LastBalanceOrTransaction(items []Item) (Item, bool) {
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		switch e := item.Entry.(type) {
		case *data.Transaction:
			if e.Flag == data.FlagUnrealized {
				continue
			}
			return item, true
		case *data.Balance:
			return item, true
		}
	}
	return Item{}, false
}

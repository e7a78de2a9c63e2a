package report

import (
	"time"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/realization"
)

// Status describes how recently an account was reconciled.
type Status string

const (
	// StatusGreen means the last balance assertion passed.
	StatusGreen Status = "green"
	// StatusRed means the last balance assertion failed.
	StatusRed Status = "red"
	// StatusYellow means transactions were booked after the last assertion.
	StatusYellow Status = "yellow"
	// StatusNone means the account has neither assertions nor transactions.
	StatusNone Status = ""
)

// AccountUptodateStatus reports the status of the last balance assertion or
// transaction of account. It ignores filters, so a filter never hides a
// stale or failed assertion. Unrealized gain transactions are skipped.
func (r *Report) AccountUptodateStatus(account string) Status {
	node := r.snapshot().allRoot.Get(account)
	if node == nil {
		return StatusNone
	}
	item, ok := realization.LastBalanceOrTransaction(node.Items)
	if !ok {
		return StatusNone
	}
	if b, ok := item.Entry.(*data.Balance); ok {
		if b.Failed() {
			return StatusRed
		}
		return StatusGreen
	}
	return StatusYellow
}

// LastEntry returns the last entry of account unless it is a Close. It
// ignores filters.
func (r *Report) LastEntry(account string) (data.Entry, bool) {
	node := r.snapshot().allRoot.Get(account)
	if node == nil {
		return nil, false
	}
	item, ok := realization.FindLastActivePosting(node.Items)
	if !ok || item.Entry.Kind() == data.KindClose {
		return nil, false
	}
	return item.Entry, true
}

// AccountJournal returns the filtered journal of account with running
// balances. withChildren includes the journals of all descendants.
func (r *Report) AccountJournal(account string, withChildren bool) []realization.JournalRow {
	node := r.snapshot().root.Get(account)
	if node == nil {
		return nil
	}
	items := node.Items
	if withChildren {
		items = node.Postings()
	}
	return realization.IterateWithBalance(items, inventory.New())
}

// AccountJournalFrom returns the filtered journal of account from begin on.
// The running balance starts from what the account held before begin, and
// with withChildren from what its whole subtree held.
func (r *Report) AccountJournalFrom(account string, withChildren bool, begin time.Time) ([]realization.JournalRow, error) {
	node, err := r.realizeAccount(r.snapshot().entries, account, nil, realization.WithOpeningBalances(begin))
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	if !withChildren {
		return realization.IterateWithBalance(node.Items, node.Opening), nil
	}
	opening := inventory.New()
	for _, acc := range node.All() {
		opening.AddInventory(acc.Opening)
	}
	return realization.IterateWithBalance(node.Postings(), opening), nil
}

// LinechartPoint is the balance of an account after an entry changed it.
type LinechartPoint struct {
	Date    time.Time
	Balance *inventory.Balance
}

// LinechartData returns the running balance in units of account and its
// descendants after every entry that changed it. Currencies that changed
// but are no longer held show as zero.
func (r *Report) LinechartData(account string) []LinechartPoint {
	var points []LinechartPoint
	for _, row := range r.AccountJournal(account, true) {
		if row.Change.IsEmpty() {
			continue
		}
		points = append(points, LinechartPoint{
			Date:    row.Entry.EntryDate(),
			Balance: row.Balance.Units().WithCurrencies(row.Change.Currencies()...),
		})
	}
	return points
}

// AccountMetadata returns the metadata of the Open entry of account.
func (r *Report) AccountMetadata(account string) map[string]string {
	if node := r.snapshot().root.Get(account); node != nil {
		for _, item := range node.Items {
			if open, ok := item.Entry.(*data.Open); ok && open.Meta.Values != nil {
				return open.Meta.Values
			}
		}
	}
	return map[string]string{}
}

// AccountSign returns +1 for accounts with a normal debit balance and -1
// otherwise.
func (r *Report) AccountSign(account string) int {
	return r.snapshot().options.AccountSign(account)
}

// Inventory returns the filtered balance of account and its descendants.
func (r *Report) Inventory(account string) *inventory.Inventory {
	inv := inventory.New()
	for _, txn := range data.FilterKind[*data.Transaction](r.snapshot().entries) {
		for _, p := range txn.Postings {
			if data.IsAccountOrDescendant(p.Account, account) {
				inv.AddPosting(p)
			}
		}
	}
	return inv
}

// PostingsByAccount counts the filtered postings per account.
func (r *Report) PostingsByAccount() map[string]int {
	counts := map[string]int{}
	for _, txn := range data.FilterKind[*data.Transaction](r.snapshot().entries) {
		for _, p := range txn.Postings {
			counts[p.Account]++
		}
	}
	return counts
}

// Accounts lists every account of the ledger in tree order. activeOnly keeps
// accounts with entries of their own. Closed accounts are left out unless
// the show-closed-accounts option is set.
func (r *Report) Accounts(activeOnly bool) []string {
	s := r.snapshot()
	var names []string
	for _, node := range s.allRoot.All() {
		if node.Name == "" {
			continue
		}
		if activeOnly && len(node.Items) == 0 {
			continue
		}
		if s.closed[node.Name] && !s.favaOptions.ShowClosedAccounts {
			continue
		}
		names = append(names, node.Name)
	}
	return names
}

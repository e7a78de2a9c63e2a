// Package realization builds the account tree from a list of entries.
//
// Every account referenced by an entry, and every intermediate account above
// it, becomes a node. Each node carries its own inventory (Balance) and the
// journal items booked directly to it. Balances including descendants are
// computed on demand with ComputeBalance.
package realization

import (
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
)

// UnknownAccountError is returned for empty or malformed account names.
type UnknownAccountError struct {
	Account string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %q", e.Account)
}

// Item is an entry in an account's journal. For transactions Posting is the
// leg booked to the account; for other entries it is nil.
type Item struct {
	Entry   data.Entry
	Posting *data.Posting
}

// Date returns the date of the underlying entry.
func (i Item) Date() time.Time { return i.Entry.EntryDate() }

// Transaction returns the transaction of a posting item.
func (i Item) Transaction() (*data.Transaction, bool) {
	txn, ok := i.Entry.(*data.Transaction)
	return txn, ok && i.Posting != nil
}

// Account is a node of the realized account tree.
type Account struct {
	// Name is the full account name; "" for the root.
	Name     string
	Children map[string]*Account
	Items    []Item
	// Balance is the account's own inventory, excluding descendants.
	Balance *inventory.Inventory
	// Opening is the part of Balance carried in from before the realization
	// window. It is empty unless WithOpeningBalances was used.
	Opening *inventory.Inventory
}

func newAccount(name string) *Account {
	return &Account{
		Name:     name,
		Children: make(map[string]*Account),
		Balance:  inventory.New(),
		Opening:  inventory.New(),
	}
}

type config struct {
	begin time.Time
}

// Option configures Realize.
type Option func(*config)

// WithOpeningBalances folds postings dated before begin into each account's
// Opening and Balance without adding them to the journal, so the tree shows
// the window [begin, ...) on top of the balances it started with.
func WithOpeningBalances(begin time.Time) Option {
	return func(c *config) { c.begin = begin }
}

// Realize builds the account tree from entries. Accounts in minAccounts are
// created even when no entry references them.
func Realize(entries []data.Entry, minAccounts []string, opts ...Option) (*Account, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	root := newAccount("")
	for _, name := range minAccounts {
		if _, err := root.GetOrCreate(name); err != nil {
			return nil, err
		}
	}

	for _, entry := range entries {
		opening := !cfg.begin.IsZero() && entry.EntryDate().Before(cfg.begin)

		switch e := entry.(type) {
		case *data.Transaction:
			for i := range e.Postings {
				p := &e.Postings[i]
				acc, err := root.GetOrCreate(p.Account)
				if err != nil {
					return nil, err
				}
				acc.Balance.AddPosting(*p)
				if opening {
					acc.Opening.AddPosting(*p)
					continue
				}
				acc.Items = append(acc.Items, Item{Entry: e, Posting: p})
			}
		case *data.Open, *data.Close, *data.Balance, *data.Note, *data.Document, *data.Pad:
			for _, name := range data.Accounts(entry) {
				acc, err := root.GetOrCreate(name)
				if err != nil {
					return nil, err
				}
				if opening && entry.Kind() != data.KindOpen {
					continue
				}
				acc.Items = append(acc.Items, Item{Entry: entry})
			}
		}
	}
	return root, nil
}

// Get returns the node for name, or nil when it does not exist.
// An empty name returns the receiver.
func (a *Account) Get(name string) *Account {
	if a == nil {
		return nil
	}
	node := a
	for _, part := range data.AccountParts(relative(a.Name, name)) {
		node = node.Children[part]
		if node == nil {
			return nil
		}
	}
	return node
}

// GetOrCreate returns the node for name, creating it and its ancestors.
func (a *Account) GetOrCreate(name string) (*Account, error) {
	if !data.ValidAccount(name) {
		return nil, &UnknownAccountError{Account: name}
	}
	node := a
	for _, part := range data.AccountParts(relative(a.Name, name)) {
		child, ok := node.Children[part]
		if !ok {
			child = newAccount(data.AccountJoin(nonEmpty(node.Name, part)...))
			node.Children[part] = child
		}
		node = child
	}
	return node, nil
}

func relative(base, name string) string {
	name = data.CanonicalAccount(name)
	if base == "" {
		return name
	}
	if name == base {
		return ""
	}
	if len(name) > len(base) && name[:len(base)+1] == base+data.Sep {
		return name[len(base)+1:]
	}
	return name
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChildNames returns the sorted leaf names of the direct children.
func (a *Account) ChildNames() []string {
	names := maps.Keys(a.Children)
	slices.Sort(names)
	return names
}

// SortedChildren returns the direct children sorted by name.
func (a *Account) SortedChildren() []*Account {
	names := a.ChildNames()
	children := make([]*Account, len(names))
	for i, name := range names {
		children[i] = a.Children[name]
	}
	return children
}

// All returns the node and all its descendants in sorted pre-order.
func (a *Account) All() []*Account {
	if a == nil {
		return nil
	}
	out := []*Account{a}
	for _, child := range a.SortedChildren() {
		out = append(out, child.All()...)
	}
	return out
}

// Names returns the names of all descendants in sorted pre-order. The
// receiver is included unless it is the root.
func (a *Account) Names() []string {
	var names []string
	for _, acc := range a.All() {
		if acc.Name != "" {
			names = append(names, acc.Name)
		}
	}
	return names
}

// ComputeBalance returns the inventory of the node including all descendants.
func (a *Account) ComputeBalance() *inventory.Inventory {
	total := inventory.New()
	for _, acc := range a.All() {
		total.AddInventory(acc.Balance)
	}
	return total
}

// Postings returns the journal items of the node and its descendants in ledger order.
func (a *Account) Postings() []Item {
	var items []Item
	for _, acc := range a.All() {
		items = append(items, acc.Items...)
	}
	slices.SortStableFunc(items, func(x, y Item) int { return data.Compare(x.Entry, y.Entry) })
	return items
}

// PostingsByAccount counts the journal items of every named descendant.
func (a *Account) PostingsByAccount() map[string]int {
	counts := map[string]int{}
	for _, acc := range a.All() {
		if acc.Name != "" {
			counts[acc.Name] = len(acc.Items)
		}
	}
	return counts
}

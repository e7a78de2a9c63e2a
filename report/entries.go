package report

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/prices"
	"github.com/robinvdvleuten/beanreport/query"
)

// Context describes one entry together with the balances around it.
type Context struct {
	Hash     string
	Entry    data.Entry
	Filename string
	Lineno   int
	// Rendered shows the balances of the entry's accounts before the entry,
	// the entry itself and the balances after it.
	Rendered       string
	BalancesBefore map[string]*inventory.Inventory
	BalancesAfter  map[string]*inventory.Inventory
	// Journal holds every entry with the hash.
	Journal []data.Entry
}

// Context looks up an entry by hash among all entries, ignoring filters.
func (r *Report) Context(hash string) (*Context, bool) {
	s := r.snapshot()
	var matching []data.Entry
	for _, entry := range s.allEntries {
		if data.Hash(entry) == hash {
			matching = append(matching, entry)
		}
	}
	if len(matching) == 0 {
		return nil, false
	}
	entry := matching[0]
	meta := entry.EntryMeta()

	before := map[string]*inventory.Inventory{}
	accounts := data.Accounts(entry)
	for _, account := range accounts {
		before[account] = inventory.New()
	}
	for _, e := range s.allEntries {
		if e == entry {
			break
		}
		if txn, ok := e.(*data.Transaction); ok {
			for _, p := range txn.Postings {
				if inv, ok := before[p.Account]; ok {
					inv.AddPosting(p)
				}
			}
		}
	}
	after := make(map[string]*inventory.Inventory, len(before))
	for account, inv := range before {
		after[account] = inv.Copy()
	}
	if txn, ok := entry.(*data.Transaction); ok {
		for _, p := range txn.Postings {
			after[p.Account].AddPosting(p)
		}
	}

	return &Context{
		Hash:           hash,
		Entry:          entry,
		Filename:       meta.Filename,
		Lineno:         meta.Lineno,
		Rendered:       renderContext(entry, accounts, before, after),
		BalancesBefore: before,
		BalancesAfter:  after,
		Journal:        matching,
	}, true
}

func renderContext(entry data.Entry, accounts []string, before, after map[string]*inventory.Inventory) string {
	var b strings.Builder
	width := 0
	for _, account := range accounts {
		width = max(width, len(account))
	}
	balances := func(title string, m map[string]*inventory.Inventory) {
		if len(accounts) == 0 {
			return
		}
		fmt.Fprintf(&b, "------------ %s\n\n", title)
		for _, account := range accounts {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, account, m[account])
		}
		b.WriteString("\n")
	}

	kind := string(entry.Kind())
	balances("Balances before "+kind, before)
	fmt.Fprintf(&b, "------------ %s\n\n%s\n\n", strings.ToUpper(kind[:1])+kind[1:], data.Format(entry))
	balances("Balances after "+kind, after)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// GetQuery returns the stored query called name.
func (r *Report) GetQuery(name string) (*data.Query, bool) {
	for _, q := range r.snapshot().queries {
		if q.Name == name {
			return q, true
		}
	}
	return nil, false
}

// Events returns the filtered events, optionally only those of eventType.
func (r *Report) Events(eventType string) []*data.Event {
	events := data.FilterKind[*data.Event](r.snapshot().entries)
	if eventType == "" {
		return events
	}
	out := events[:0:0]
	for _, e := range events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// CommodityPairs returns the pairs with recorded prices, plus the inverse of
// those between two operating currencies.
func (r *Report) CommodityPairs() []prices.Pair {
	s := r.snapshot()
	set := map[prices.Pair]bool{}
	for _, pair := range s.priceMap.ForwardPairs() {
		set[pair] = true
		if s.options.IsOperatingCurrency(pair.Base) && s.options.IsOperatingCurrency(pair.Quote) {
			set[prices.Pair{Base: pair.Quote, Quote: pair.Base}] = true
		}
	}
	pairs := maps.Keys(set)
	slices.SortFunc(pairs, func(a, b prices.Pair) int {
		return strings.Compare(a.Base+"/"+a.Quote, b.Base+"/"+b.Quote)
	})
	return pairs
}

// Prices returns the price points of base in quote. With a time filter only
// the points in its range are returned.
func (r *Report) Prices(base, quote string) []prices.Point {
	s := r.snapshot()
	points := s.priceMap.All(base, quote)
	begin, end, ok := s.filters.TimeRange()
	if !ok {
		return points
	}
	out := points[:0:0]
	for _, p := range points {
		if !p.Date.Before(begin) && p.Date.Before(end) {
			out = append(out, p)
		}
	}
	return out
}

// IsValidDocument reports whether path is the file of a Document entry or
// the "statement" metadata of a transaction.
func (r *Report) IsValidDocument(path string) bool {
	for _, entry := range r.snapshot().entries {
		switch e := entry.(type) {
		case *data.Document:
			if e.Filename == path {
				return true
			}
		case *data.Transaction:
			if statement, ok := e.Meta.Get("statement"); ok && statement == path {
				return true
			}
		}
	}
	return false
}

// Query runs a query over all entries, ignoring filters.
func (r *Report) Query(q string, numberify bool) (*query.Result, error) {
	if r.engine == nil {
		return nil, ErrNoQueryEngine
	}
	s := r.snapshot()
	return r.engine.Run(s.allEntries, s.options, q, numberify)
}

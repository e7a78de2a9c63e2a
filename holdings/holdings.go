// Package holdings values the positions of balance sheet accounts and
// reduces them to net worth.
package holdings

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/prices"
)

// Mixed marks an aggregated field whose values differ.
const Mixed = "*"

// Holding is a valued position of one account at a point in time. Positions
// held without a cost are their own cost currency.
type Holding struct {
	Account      string
	Number       decimal.Decimal
	Currency     string
	CostNumber   decimal.Decimal
	CostCurrency string
	BookValue    decimal.Decimal
	MarketValue  decimal.Decimal
	PriceNumber  decimal.Decimal
	PriceDate    time.Time
}

// List is a snapshot of holdings. Lists are never mutated; every operation
// returns a new one.
type List []Holding

// MarketValue sums the market values of the list.
func (l List) MarketValue() decimal.Decimal {
	total := decimal.Zero
	for _, h := range l {
		total = total.Add(h.MarketValue)
	}
	return total
}

// accumulator folds entries into per-account inventories one at a time.
type accumulator struct {
	prefixes []string
	accounts map[string]*inventory.Inventory
}

func newAccumulator(prefixes []string) *accumulator {
	return &accumulator{prefixes: prefixes, accounts: map[string]*inventory.Inventory{}}
}

func (a *accumulator) add(entry data.Entry) {
	txn, ok := entry.(*data.Transaction)
	if !ok || txn.Flag == data.FlagUnrealized {
		return
	}
	for _, p := range txn.Postings {
		if !a.tracks(p.Account) {
			continue
		}
		inv, ok := a.accounts[p.Account]
		if !ok {
			inv = inventory.New()
			a.accounts[p.Account] = inv
		}
		inv.AddPosting(p)
	}
}

func (a *accumulator) tracks(account string) bool {
	if len(a.prefixes) == 0 {
		return true
	}
	for _, prefix := range a.prefixes {
		if data.IsAccountOrDescendant(account, prefix) {
			return true
		}
	}
	return false
}

func (a *accumulator) holdings(pm *prices.Map, date time.Time) List {
	names := maps.Keys(a.accounts)
	slices.Sort(names)
	var list List
	for _, name := range names {
		for _, pos := range a.accounts[name].Positions() {
			list = append(list, newHolding(name, pos, pm, date))
		}
	}
	return list
}

func newHolding(account string, pos inventory.Position, pm *prices.Map, date time.Time) Holding {
	h := Holding{
		Account:      account,
		Number:       pos.Units.Number,
		Currency:     pos.Units.Currency,
		CostCurrency: pos.Units.Currency,
		CostNumber:   decimal.NewFromInt(1),
		BookValue:    pos.Units.Number,
	}
	if pos.Cost != nil {
		h.CostNumber = pos.Cost.Number
		h.CostCurrency = pos.Cost.Currency
		h.BookValue = pos.Units.Number.Mul(pos.Cost.Number)
	}

	h.MarketValue = h.BookValue
	if h.Currency == h.CostCurrency {
		h.PriceNumber = decimal.NewFromInt(1)
		return h
	}
	if point, ok := pm.Lookup(h.Currency, h.CostCurrency, date); ok {
		h.PriceNumber = point.Rate
		h.PriceDate = point.Date
		h.MarketValue = h.Number.Mul(point.Rate)
	} else if rate, ok := pm.Rate(h.Currency, h.CostCurrency, date); ok {
		h.PriceNumber = rate
		h.MarketValue = h.Number.Mul(rate)
	}
	return h
}

// Final returns the holdings of all accounts under prefixes after the last
// entry, valued at date. A nil prefixes list includes every account.
// Unrealized gain transactions are skipped since market values already carry
// them.
func Final(entries []data.Entry, prefixes []string, pm *prices.Map, date time.Time) List {
	acc := newAccumulator(prefixes)
	for _, entry := range entries {
		acc.add(entry)
	}
	return acc.holdings(pm, date)
}

// AtDates returns one snapshot per date of the balance sheet holdings built
// from the entries strictly before it. entries must be sorted and dates
// ascending.
func AtDates(entries []data.Entry, dates []time.Time, pm *prices.Map, opts data.Options) []List {
	acc := newAccumulator([]string{opts.AccountTypes.Assets, opts.AccountTypes.Liabilities})
	snapshots := make([]List, 0, len(dates))
	next := 0
	for _, date := range dates {
		for next < len(entries) && entries[next].EntryDate().Before(date) {
			acc.add(entries[next])
			next++
		}
		snapshots = append(snapshots, acc.holdings(pm, date))
	}
	return snapshots
}

// AggregateBy merges holdings sharing a key. The merged account is the
// longest common parent account; currencies that differ become Mixed.
func AggregateBy(list List, key func(Holding) string) List {
	groups := map[string]List{}
	var keys []string
	for _, h := range list {
		k := key(h)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], h)
	}
	slices.Sort(keys)

	out := make(List, 0, len(keys))
	for _, k := range keys {
		out = append(out, aggregate(groups[k]))
	}
	return out
}

func aggregate(group List) Holding {
	if len(group) == 1 {
		return group[0]
	}
	accounts := make([]string, len(group))
	agg := Holding{
		Currency:     group[0].Currency,
		CostCurrency: group[0].CostCurrency,
	}
	for i, h := range group {
		accounts[i] = h.Account
		agg.Number = agg.Number.Add(h.Number)
		agg.BookValue = agg.BookValue.Add(h.BookValue)
		agg.MarketValue = agg.MarketValue.Add(h.MarketValue)
		if h.Currency != agg.Currency {
			agg.Currency = Mixed
		}
		if h.CostCurrency != agg.CostCurrency {
			agg.CostCurrency = Mixed
		}
		if h.PriceDate.After(agg.PriceDate) {
			agg.PriceDate = h.PriceDate
		}
	}
	agg.Account = data.CommonPrefix(accounts)
	if agg.Account == "" {
		agg.Account = Mixed
	}
	if agg.Currency != Mixed && !agg.Number.IsZero() {
		agg.CostNumber = agg.BookValue.Div(agg.Number)
		agg.PriceNumber = agg.MarketValue.Div(agg.Number)
	}
	if agg.Currency == Mixed {
		agg.Number = decimal.Zero
	}
	return agg
}

// ByCostCurrency is an AggregateBy key.
func ByCostCurrency(h Holding) string { return h.CostCurrency }

// ByCurrency is an AggregateBy key.
func ByCurrency(h Holding) string { return h.Currency }

// ByAccount is an AggregateBy key.
func ByAccount(h Holding) string { return h.Account }

// ConvertToCurrency revalues holdings in target at the rate of date. A
// holding without a conversion path is dropped.
func ConvertToCurrency(pm *prices.Map, target string, list List, date time.Time) List {
	out := make(List, 0, len(list))
	for _, h := range list {
		if h.CostCurrency == target {
			out = append(out, h)
			continue
		}
		rate, ok := pm.Rate(h.CostCurrency, target, date)
		if !ok {
			continue
		}
		h.CostCurrency = target
		h.CostNumber = h.CostNumber.Mul(rate)
		h.BookValue = h.BookValue.Mul(rate)
		h.MarketValue = h.MarketValue.Mul(rate)
		h.PriceNumber = h.PriceNumber.Mul(rate)
		out = append(out, h)
	}
	return out
}

// NetWorth converts the holdings into each currency and returns the total
// market value per currency. Currencies without any convertible holding
// are zero.
func NetWorth(list List, currencies []string, pm *prices.Map, date time.Time) *inventory.Balance {
	total := inventory.NewBalance()
	for _, currency := range currencies {
		value := decimal.Zero
		for _, agg := range AggregateBy(ConvertToCurrency(pm, currency, list, date), ByCostCurrency) {
			if agg.CostCurrency == currency {
				value = agg.MarketValue
			}
		}
		total.Set(currency, value)
	}
	return total
}

// String renders a holding as "Account  N CUR {C COST}".
func (h Holding) String() string {
	var b strings.Builder
	b.WriteString(h.Account)
	b.WriteString("  ")
	b.WriteString(h.Number.String() + " " + h.Currency)
	if h.CostCurrency != h.Currency {
		b.WriteString(" {" + h.CostNumber.String() + " " + h.CostCurrency + "}")
	}
	return b.String()
}

package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Balance is a currency to number mapping kept sorted by currency, used for
// reduced inventories, budgets and budget deltas. Zero amounts are kept so a
// budget of 0 USD still shows up as a USD column.
type Balance struct {
	entries []CurrencyAmount
}

// CurrencyAmount is one currency column of a Balance.
type CurrencyAmount struct {
	Currency string
	Amount   decimal.Decimal
}

// NewBalance creates an empty balance.
func NewBalance() *Balance {
	return &Balance{}
}

// NewBalanceFromMap converts a currency map into a sorted Balance.
func NewBalanceFromMap(m map[string]decimal.Decimal) *Balance {
	b := &Balance{entries: make([]CurrencyAmount, 0, len(m))}
	for currency, amount := range m {
		b.entries = append(b.entries, CurrencyAmount{Currency: currency, Amount: amount})
	}
	slices.SortFunc(b.entries, func(x, y CurrencyAmount) int { return strings.Compare(x.Currency, y.Currency) })
	return b
}

func (b *Balance) find(currency string) (int, bool) {
	return slices.BinarySearchFunc(b.entries, currency, func(e CurrencyAmount, c string) int {
		return strings.Compare(e.Currency, c)
	})
}

// Get returns the amount for currency, or zero.
func (b *Balance) Get(currency string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	if i, ok := b.find(currency); ok {
		return b.entries[i].Amount
	}
	return decimal.Zero
}

// Has reports whether currency has a column, zero or not.
func (b *Balance) Has(currency string) bool {
	if b == nil {
		return false
	}
	_, ok := b.find(currency)
	return ok
}

// Set sets the amount for currency.
func (b *Balance) Set(currency string, amount decimal.Decimal) {
	i, ok := b.find(currency)
	if ok {
		b.entries[i].Amount = amount
		return
	}
	b.entries = slices.Insert(b.entries, i, CurrencyAmount{Currency: currency, Amount: amount})
}

// Add adds amount to the currency column.
func (b *Balance) Add(currency string, amount decimal.Decimal) {
	b.Set(currency, b.Get(currency).Add(amount))
}

// Merge adds every column of other into b.
func (b *Balance) Merge(other *Balance) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		b.Add(e.Currency, e.Amount)
	}
}

// Sub returns b - other over the currencies of b only.
func (b *Balance) Sub(other *Balance) *Balance {
	out := b.Copy()
	for i := range out.entries {
		out.entries[i].Amount = out.entries[i].Amount.Sub(other.Get(out.entries[i].Currency))
	}
	return out
}

// WithCurrencies returns a copy that has a (possibly zero) column for every currency.
func (b *Balance) WithCurrencies(currencies ...string) *Balance {
	out := b.Copy()
	for _, c := range currencies {
		if !out.Has(c) {
			out.Set(c, decimal.Zero)
		}
	}
	return out
}

// IsZero reports whether every column is zero.
func (b *Balance) IsZero() bool {
	if b == nil {
		return true
	}
	for _, e := range b.entries {
		if !e.Amount.IsZero() {
			return false
		}
	}
	return true
}

// Len returns the number of currency columns.
func (b *Balance) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Currencies returns the sorted currencies of the balance.
func (b *Balance) Currencies() []string {
	if b == nil {
		return nil
	}
	currencies := make([]string, len(b.entries))
	for i, e := range b.entries {
		currencies[i] = e.Currency
	}
	return currencies
}

// Entries returns the sorted currency columns.
func (b *Balance) Entries() []CurrencyAmount {
	if b == nil {
		return nil
	}
	return b.entries
}

// ToMap converts the balance into a currency map.
func (b *Balance) ToMap() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, b.Len())
	for _, e := range b.Entries() {
		m[e.Currency] = e.Amount
	}
	return m
}

// Equal reports whether both balances have the same nonzero columns.
func (b *Balance) Equal(other *Balance) bool {
	for _, e := range b.Entries() {
		if !e.Amount.Equal(other.Get(e.Currency)) {
			return false
		}
	}
	for _, e := range other.Entries() {
		if !e.Amount.Equal(b.Get(e.Currency)) {
			return false
		}
	}
	return true
}

// Copy creates a deep copy. A nil balance copies to an empty one.
func (b *Balance) Copy() *Balance {
	if b == nil {
		return NewBalance()
	}
	return &Balance{entries: slices.Clone(b.entries)}
}

func (b *Balance) String() string {
	if b.Len() == 0 {
		return "(empty)"
	}
	parts := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		parts = append(parts, e.Amount.String()+" "+e.Currency)
	}
	return strings.Join(parts, ", ")
}

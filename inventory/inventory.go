// Package inventory implements the multi-currency position sets held by accounts.
package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
)

// Position is a quantity of a commodity, optionally held at cost.
type Position struct {
	Units data.Amount
	Cost  *data.Cost
}

// String renders a position like a posting amount.
func (p Position) String() string {
	if p.Cost == nil {
		return p.Units.String()
	}
	return p.Units.String() + " {" + p.Cost.String() + "}"
}

// positionKey identifies a lot: the commodity plus its exact cost basis.
type positionKey struct {
	currency     string
	costNumber   string
	costCurrency string
	costDate     string
	costLabel    string
}

func keyOf(currency string, cost *data.Cost) positionKey {
	k := positionKey{currency: currency}
	if cost != nil {
		k.costNumber = cost.Number.String()
		k.costCurrency = cost.Currency
		if !cost.Date.IsZero() {
			k.costDate = cost.Date.Format(data.DateLayout)
		}
		k.costLabel = cost.Label
	}
	return k
}

// Inventory is a set of positions keyed by commodity and cost.
// Positions whose units reach zero are removed immediately.
type Inventory struct {
	positions map[positionKey]*Position
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{positions: make(map[positionKey]*Position)}
}

// FromPositions creates an inventory holding the given positions.
func FromPositions(positions ...Position) *Inventory {
	inv := New()
	for _, p := range positions {
		inv.AddPosition(p)
	}
	return inv
}

// AddAmount adds units at the given cost (nil for no cost).
func (inv *Inventory) AddAmount(units data.Amount, cost *data.Cost) {
	if units.Number.IsZero() {
		return
	}
	k := keyOf(units.Currency, cost)
	if p, ok := inv.positions[k]; ok {
		p.Units.Number = p.Units.Number.Add(units.Number)
		if p.Units.Number.IsZero() {
			delete(inv.positions, k)
		}
		return
	}
	var c *data.Cost
	if cost != nil {
		cc := *cost
		c = &cc
	}
	inv.positions[k] = &Position{Units: units, Cost: c}
}

// AddPosition adds a position.
func (inv *Inventory) AddPosition(p Position) {
	inv.AddAmount(p.Units, p.Cost)
}

// AddPosting adds the units of a posting at its cost.
func (inv *Inventory) AddPosting(p data.Posting) {
	inv.AddAmount(p.Units, p.Cost)
}

// AddInventory adds every position of other and returns inv.
func (inv *Inventory) AddInventory(other *Inventory) *Inventory {
	if other == nil {
		return inv
	}
	for _, p := range other.positions {
		inv.AddAmount(p.Units, p.Cost)
	}
	return inv
}

// IsEmpty reports whether the inventory has no positions.
func (inv *Inventory) IsEmpty() bool {
	return inv == nil || len(inv.positions) == 0
}

// Len returns the number of positions.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.positions)
}

// Positions returns the positions sorted by currency, then by cost.
func (inv *Inventory) Positions() []Position {
	if inv == nil {
		return nil
	}
	out := make([]Position, 0, len(inv.positions))
	for _, p := range inv.positions {
		out = append(out, *p)
	}
	slices.SortFunc(out, comparePositions)
	return out
}

func comparePositions(a, b Position) int {
	if c := strings.Compare(a.Units.Currency, b.Units.Currency); c != 0 {
		return c
	}
	switch {
	case a.Cost == nil && b.Cost == nil:
		return 0
	case a.Cost == nil:
		return -1
	case b.Cost == nil:
		return 1
	}
	if c := strings.Compare(a.Cost.Currency, b.Cost.Currency); c != 0 {
		return c
	}
	if c := a.Cost.Number.Cmp(b.Cost.Number); c != 0 {
		return c
	}
	if c := a.Cost.Date.Compare(b.Cost.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Cost.Label, b.Cost.Label)
}

// Currencies returns the sorted set of unit currencies.
func (inv *Inventory) Currencies() []string {
	seen := map[string]bool{}
	if inv != nil {
		for _, p := range inv.positions {
			seen[p.Units.Currency] = true
		}
	}
	currencies := maps.Keys(seen)
	slices.Sort(currencies)
	return currencies
}

// Get returns the total units held in currency, across all lots.
func (inv *Inventory) Get(currency string) decimal.Decimal {
	total := decimal.Zero
	if inv == nil {
		return total
	}
	for _, p := range inv.positions {
		if p.Units.Currency == currency {
			total = total.Add(p.Units.Number)
		}
	}
	return total
}

// Units reduces the inventory to its unit totals per currency.
func (inv *Inventory) Units() *Balance {
	b := NewBalance()
	if inv == nil {
		return b
	}
	for _, p := range inv.positions {
		b.Add(p.Units.Currency, p.Units.Number)
	}
	return b
}

// AtCost reduces the inventory to cost totals: positions held at cost count
// as units times cost in the cost currency, the rest as plain units.
func (inv *Inventory) AtCost() *Balance {
	b := NewBalance()
	if inv == nil {
		return b
	}
	for _, p := range inv.positions {
		if p.Cost != nil {
			b.Add(p.Cost.Currency, p.Units.Number.Mul(p.Cost.Number))
		} else {
			b.Add(p.Units.Currency, p.Units.Number)
		}
	}
	return b
}

// Copy returns a deep copy.
func (inv *Inventory) Copy() *Inventory {
	return New().AddInventory(inv)
}

// Neg returns a copy with every position negated.
func (inv *Inventory) Neg() *Inventory {
	out := New()
	if inv == nil {
		return out
	}
	for _, p := range inv.positions {
		out.AddAmount(data.Amount{Number: p.Units.Number.Neg(), Currency: p.Units.Currency}, p.Cost)
	}
	return out
}

// Equal reports whether both inventories hold the same positions.
func (inv *Inventory) Equal(other *Inventory) bool {
	if inv.Len() != other.Len() {
		return false
	}
	if inv.Len() == 0 {
		return true
	}
	for k, p := range inv.positions {
		q, ok := other.positions[k]
		if !ok || !p.Units.Number.Equal(q.Units.Number) {
			return false
		}
	}
	return true
}

func (inv *Inventory) String() string {
	positions := inv.Positions()
	if len(positions) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

package inventory

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
)

func cost(s string) *data.Cost {
	a := data.MustAmount(s)
	return &data.Cost{Number: a.Number, Currency: a.Currency}
}

func TestInventoryRemovesZeroPositions(t *testing.T) {
	inv := New()
	inv.AddAmount(data.MustAmount("10 USD"), nil)
	inv.AddAmount(data.MustAmount("-10.00 USD"), nil)
	assert.True(t, inv.IsEmpty())

	inv.AddAmount(data.MustAmount("0 EUR"), nil)
	assert.True(t, inv.IsEmpty())
}

func TestInventoryKeepsLotsApart(t *testing.T) {
	inv := New()
	inv.AddAmount(data.MustAmount("10 X"), cost("10 USD"))
	inv.AddAmount(data.MustAmount("5 X"), cost("12 USD"))
	inv.AddAmount(data.MustAmount("-100 USD"), nil)

	assert.Equal(t, 3, inv.Len())
	assert.True(t, inv.Get("X").Equal(decimal.NewFromInt(15)))
	assert.Equal(t, []string{"USD", "X"}, inv.Currencies())

	positions := inv.Positions()
	assert.Equal(t, "USD", positions[0].Units.Currency)
	assert.Equal(t, "10 X {10 USD}", positions[1].String())
	assert.Equal(t, "5 X {12 USD}", positions[2].String())

	// Reducing one lot at the same cost with a different scale matches it.
	inv.AddAmount(data.MustAmount("-5 X"), cost("12.00 USD"))
	assert.Equal(t, 2, inv.Len())
}

func TestInventoryReductions(t *testing.T) {
	inv := FromPositions(
		Position{Units: data.MustAmount("10 X"), Cost: cost("10 USD")},
		Position{Units: data.MustAmount("-100 USD")},
		Position{Units: data.MustAmount("-5 X"), Cost: cost("10 USD")},
		Position{Units: data.MustAmount("60 USD")},
	)

	units := inv.Units()
	assert.True(t, units.Get("X").Equal(decimal.NewFromInt(5)))
	assert.True(t, units.Get("USD").Equal(decimal.NewFromInt(-40)))

	atCost := inv.AtCost()
	assert.Equal(t, []string{"USD"}, atCost.Currencies())
	assert.True(t, atCost.Get("USD").Equal(decimal.NewFromInt(10)))
}

func TestInventoryNegAndEqual(t *testing.T) {
	inv := FromPositions(
		Position{Units: data.MustAmount("3 X"), Cost: cost("2 USD")},
		Position{Units: data.MustAmount("7 EUR")},
	)
	neg := inv.Neg()
	assert.True(t, neg.Get("EUR").Equal(decimal.NewFromInt(-7)))
	assert.True(t, inv.Copy().AddInventory(neg).IsEmpty())
	assert.True(t, inv.Equal(inv.Copy()))
	assert.False(t, inv.Equal(neg))
	assert.True(t, New().Equal(nil))
}

func TestBalance(t *testing.T) {
	b := NewBalance()
	b.Add("USD", decimal.NewFromInt(5))
	b.Add("EUR", decimal.NewFromInt(2))
	b.Add("USD", decimal.NewFromInt(-1))

	assert.Equal(t, []string{"EUR", "USD"}, b.Currencies())
	assert.Equal(t, "2 EUR, 4 USD", b.String())

	budget := NewBalanceFromMap(map[string]decimal.Decimal{"USD": decimal.NewFromInt(10), "CHF": decimal.Zero})
	delta := budget.Sub(b)
	assert.Equal(t, []string{"CHF", "USD"}, delta.Currencies())
	assert.True(t, delta.Get("USD").Equal(decimal.NewFromInt(6)))

	filled := b.WithCurrencies("CHF", "USD")
	assert.Equal(t, []string{"CHF", "EUR", "USD"}, filled.Currencies())
	assert.True(t, filled.Equal(b))
	assert.False(t, b.Has("CHF"))

	var nilBalance *Balance
	assert.True(t, nilBalance.IsZero())
	assert.Equal(t, 0, nilBalance.Copy().Len())
}

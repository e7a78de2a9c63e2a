package realization

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
)

func realize(t *testing.T, entries ...data.Entry) *Account {
	t.Helper()
	root, err := Realize(entries, nil)
	assert.NoError(t, err)
	return root
}

func txn(date, account, amount string) *data.Transaction {
	return data.NewTransaction(data.MustDate(date), "txn",
		data.WithPostings(data.NewPosting(account, data.MustAmount(amount))))
}

func childNames(z *ZippedNode) []string {
	var names []string
	for _, c := range z.Children {
		names = append(names, c.Account)
	}
	return names
}

func TestZipUnionOfChildren(t *testing.T) {
	first := realize(t, txn("2023-01-01", "Expenses:Rent", "10 USD"))
	second := realize(t, txn("2023-02-01", "Expenses:Food", "5 USD"), txn("2023-02-02", "Expenses:Books", "3 EUR"))

	z := Zip("Expenses", []*Account{first.Get("Expenses"), second.Get("Expenses")}, Units)
	assert.Equal(t, "Expenses", z.Account)
	assert.Equal(t, []string{"Expenses:Books", "Expenses:Food", "Expenses:Rent"}, childNames(z))

	rent := z.Find("Expenses:Rent")
	assert.Equal(t, 2, len(rent.Balances))
	assert.True(t, rent.Balances[0].Balance.Get("USD").Equal(decimal.NewFromInt(10)))
	assert.True(t, rent.Balances[1].Balance.IsZero())
	assert.True(t, z.Balances[1].BalanceChildren.Get("EUR").Equal(decimal.NewFromInt(3)))

	t.Run("OrderIndependent", func(t *testing.T) {
		swapped := Zip("Expenses", []*Account{second.Get("Expenses"), first.Get("Expenses")}, Units)
		assert.Equal(t, childNames(z), childNames(swapped))
	})

	t.Run("NilBuckets", func(t *testing.T) {
		z := Zip("Expenses", []*Account{nil, first.Get("Expenses")}, Units)
		assert.Equal(t, []string{"Expenses:Rent"}, childNames(z))
		assert.True(t, z.Balances[0].BalanceChildren.IsZero())
	})
}

func TestZipReducers(t *testing.T) {
	buy := data.NewTransaction(data.MustDate("2023-01-05"), "Buy",
		data.WithPostings(
			data.NewPosting("Assets:Brokerage", data.MustAmount("10 X"), data.AtCost(data.MustAmount("10 USD"))),
			data.NewPosting("Assets:Brokerage", data.MustAmount("-100 USD")),
		))
	root := realize(t, buy)

	units := Zip("Assets", []*Account{root.Get("Assets")}, Units)
	assert.Equal(t, []string{"USD", "X"}, units.Balances[0].BalanceChildren.Currencies())

	atCost := Zip("Assets", []*Account{root.Get("Assets")}, AtCost)
	assert.True(t, atCost.Balances[0].BalanceChildren.IsZero())
}

func TestAccumulate(t *testing.T) {
	buckets := []*Account{
		realize(t, txn("2023-01-01", "Assets:Cash", "10 USD")).Get("Assets"),
		realize(t, txn("2023-02-01", "Assets:Cash", "-4 USD")).Get("Assets"),
		nil,
		realize(t, txn("2023-04-01", "Assets:Bank", "7 USD")).Get("Assets"),
	}
	z := Zip("Assets", buckets, Units)
	z.Accumulate()

	want := []int64{10, 6, 6, 13}
	for i, w := range want {
		assert.True(t, z.Balances[i].BalanceChildren.Get("USD").Equal(decimal.NewFromInt(w)), "bucket %d", i)
	}
	cash := z.Find("Assets:Cash")
	assert.True(t, cash.Balances[3].Balance.Get("USD").Equal(decimal.NewFromInt(6)))
}

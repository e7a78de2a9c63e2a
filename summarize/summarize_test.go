package summarize

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/realization"
)

func fixture() []data.Entry {
	return []data.Entry{
		data.NewOpen(data.MustDate("2022-01-01"), "Assets:Cash"),
		data.NewTransaction(data.MustDate("2022-06-01"), "Salary",
			data.WithPostings(
				data.NewPosting("Assets:Cash", data.MustAmount("100 USD")),
				data.NewPosting("Income:Salary", data.MustAmount("-100 USD")),
			)),
		data.NewPrice(data.MustDate("2022-07-01"), "X", data.MustAmount("1 USD")),
		data.NewTransaction(data.MustDate("2023-01-10"), "Food",
			data.WithPostings(
				data.NewPosting("Expenses:Food", data.MustAmount("30 USD")),
				data.NewPosting("Assets:Cash", data.MustAmount("-30 USD")),
			)),
		data.NewTransaction(data.MustDate("2024-01-10"), "Later",
			data.WithPostings(
				data.NewPosting("Expenses:Food", data.MustAmount("5 USD")),
				data.NewPosting("Assets:Cash", data.MustAmount("-5 USD")),
			)),
	}
}

func TestClamp(t *testing.T) {
	opts := data.DefaultOptions()
	clamped := Clamp(fixture(), data.MustDate("2023-01-01"), data.MustDate("2024-01-01"), opts)

	root, err := realization.Realize(clamped, nil)
	assert.NoError(t, err)

	// Balance sheet carried over, income statement reset.
	assert.True(t, root.Get("Assets:Cash").Balance.Get("USD").Equal(decimal.NewFromInt(70)))
	assert.Zero(t, root.Get("Income:Salary"))
	assert.True(t, root.Get("Equity:Earnings:Previous").Balance.Get("USD").Equal(decimal.NewFromInt(-100)))
	assert.True(t, root.Get("Expenses:Food").Balance.Get("USD").Equal(decimal.NewFromInt(30)))
	assert.True(t, root.ComputeBalance().IsEmpty())

	// Opening entries are dated the day before the window; nothing after it survives.
	for _, entry := range clamped {
		assert.True(t, entry.EntryDate().Before(data.MustDate("2024-01-01")))
		if txn, ok := entry.(*data.Transaction); ok && txn.Flag == data.FlagSummarize {
			assert.Equal(t, data.MustDate("2022-12-31"), txn.Date)
		}
	}
	assert.Equal(t, 0, len(data.FilterKind[*data.Price](clamped)))
	assert.Equal(t, 1, len(data.FilterKind[*data.Open](clamped)))
}

func TestClampOpenEnded(t *testing.T) {
	entries := fixture()
	all := Clamp(entries, data.MustDate("2020-01-01").AddDate(-100, 0, 0), data.MustDate("2030-01-01"), data.DefaultOptions())
	assert.Equal(t, len(entries), len(all))
}

func TestCap(t *testing.T) {
	opts := data.DefaultOptions()
	capped := Cap(fixture(), opts)

	root, err := realization.Realize(capped, nil)
	assert.NoError(t, err)
	assert.True(t, root.Get("Income").ComputeBalance().IsEmpty())
	assert.True(t, root.Get("Expenses").ComputeBalance().IsEmpty())
	assert.True(t, root.Get("Equity:Earnings:Current").Balance.Get("USD").Equal(decimal.NewFromInt(-65)))
	assert.True(t, root.Get("Assets:Cash").Balance.Get("USD").Equal(decimal.NewFromInt(65)))

	assert.Equal(t, 0, len(Cap(nil, opts)))
}

package query

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beanreport/data"
)

func fixture() []data.Entry {
	return []data.Entry{
		data.NewOpen(data.MustDate("2024-01-01"), "Assets:Cash", "USD"),
		data.NewTransaction(data.MustDate("2024-01-02"), "Groceries",
			data.WithPayee("Shop"),
			data.WithPostings(
				data.NewPosting("Expenses:Food", data.MustAmount("12.50 USD")),
				data.NewPosting("Assets:Cash", data.MustAmount("-12.50 USD")),
			)),
		data.NewPrice(data.MustDate("2024-01-03"), "EUR", data.MustAmount("1.10 USD")),
		data.NewTransaction(data.MustDate("2024-01-04"), "Books",
			data.WithPayee("Store"),
			data.WithPostings(
				data.NewPosting("Expenses:Books", data.MustAmount("30 USD")),
				data.NewPosting("Assets:Cash", data.MustAmount("-30 USD")),
			)),
	}
}

func TestRunScalars(t *testing.T) {
	res, err := New().Run(fixture(), data.DefaultOptions(), `$[?(@.type == "transaction")].narration`, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"value"}, res.Columns)
	assert.Equal(t, [][]interface{}{{"Groceries"}, {"Books"}}, res.Rows)
}

func TestRunSingleValue(t *testing.T) {
	res, err := New().Run(fixture(), data.DefaultOptions(), `$[0].account`, false)
	assert.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"Assets:Cash"}}, res.Rows)
}

func TestRunNumberify(t *testing.T) {
	query := `$[?(@.type == "price")].amount.number`

	res, err := New().Run(fixture(), data.DefaultOptions(), query, false)
	assert.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"1.1"}}, res.Rows)

	res, err = New().Run(fixture(), data.DefaultOptions(), query, true)
	assert.NoError(t, err)
	assert.Equal(t, [][]interface{}{{1.1}}, res.Rows)
}

func TestRunObjects(t *testing.T) {
	res, err := New().Run(fixture(), data.DefaultOptions(), `$[?(@.type == "price")].amount`, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"currency", "number"}, res.Columns)
	assert.Equal(t, [][]interface{}{{"USD", "1.1"}}, res.Rows)
}

func TestRunErrors(t *testing.T) {
	_, err := New().Run(fixture(), data.DefaultOptions(), "  ", false)
	assert.True(t, errors.Is(err, ErrEmptyQuery))

	_, err = New().Run(fixture(), data.DefaultOptions(), `$[?(`, false)
	assert.Error(t, err)
}

func TestSerialize(t *testing.T) {
	doc := Serialize(fixture(), false)
	assert.Equal(t, 4, len(doc))

	txn := doc[1].(map[string]interface{})
	assert.Equal(t, "transaction", txn["type"])
	assert.Equal(t, "2024-01-02", txn["date"])
	assert.Equal(t, "Shop", txn["payee"])
	postings := txn["postings"].([]interface{})
	assert.Equal(t, 2, len(postings))
	units := postings[0].(map[string]interface{})["units"].(map[string]interface{})
	assert.Equal(t, "12.5", units["number"])
	assert.Equal[interface{}](t, data.Hash(fixture()[1]), txn["hash"])
}

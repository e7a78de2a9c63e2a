// Package query runs JSONPath queries over a ledger.
//
// The entries are exposed as a JSON-like array of objects, one per entry,
// with a "type" field and the fields of the entry variant:
//
//	$[?(@.type == "transaction" && @.payee == "Shop")].narration
//	$[?(@.type == "price")]
//
// Numbers are strings unless the query is run with numberify, in which case
// they become floats.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty query")

// Result is a table of query results.
type Result struct {
	Columns []string
	Rows    [][]interface{}
}

// Engine evaluates queries.
type Engine struct{}

// New creates a query engine.
func New() *Engine { return &Engine{} }

// Run evaluates query against entries. Objects in the result become rows
// with one column per key; scalars become a single "value" column.
func (e *Engine) Run(entries []data.Entry, _ data.Options, query string, numberify bool) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	value, err := jsonpath.Get(query, Serialize(entries, numberify))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	return tabulate(value), nil
}

func tabulate(value interface{}) *Result {
	values, ok := value.([]interface{})
	if !ok {
		values = []interface{}{value}
	}

	keys := map[string]bool{}
	objects := true
	for _, v := range values {
		obj, ok := v.(map[string]interface{})
		if !ok {
			objects = false
			break
		}
		for k := range obj {
			keys[k] = true
		}
	}

	if !objects || len(values) == 0 {
		res := &Result{Columns: []string{"value"}}
		for _, v := range values {
			res.Rows = append(res.Rows, []interface{}{v})
		}
		return res
	}

	res := &Result{}
	for k := range keys {
		res.Columns = append(res.Columns, k)
	}
	sort.Strings(res.Columns)
	for _, v := range values {
		obj := v.(map[string]interface{})
		row := make([]interface{}, len(res.Columns))
		for i, col := range res.Columns {
			row[i] = obj[col]
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// Serialize converts entries into the document queries run against.
func Serialize(entries []data.Entry, numberify bool) []interface{} {
	s := serializer{numberify: numberify}
	out := make([]interface{}, len(entries))
	for i, entry := range entries {
		out[i] = s.entry(entry)
	}
	return out
}

type serializer struct {
	numberify bool
}

func (s serializer) number(d decimal.Decimal) interface{} {
	if s.numberify {
		f, _ := d.Float64()
		return f
	}
	return d.String()
}

func (s serializer) amount(a data.Amount) map[string]interface{} {
	return map[string]interface{}{
		"number":   s.number(a.Number),
		"currency": a.Currency,
	}
}

func toList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (s serializer) entry(entry data.Entry) map[string]interface{} {
	meta := entry.EntryMeta()
	values := map[string]interface{}{}
	for k, v := range meta.Values {
		values[k] = v
	}
	obj := map[string]interface{}{
		"type":     string(entry.Kind()),
		"date":     entry.EntryDate().Format(data.DateLayout),
		"hash":     data.Hash(entry),
		"filename": meta.Filename,
		"lineno":   float64(meta.Lineno),
		"meta":     values,
	}

	switch e := entry.(type) {
	case *data.Open:
		obj["account"] = e.Account
		obj["currencies"] = toList(e.Currencies)
		obj["booking"] = e.Booking
	case *data.Close:
		obj["account"] = e.Account
	case *data.Transaction:
		obj["flag"] = e.Flag
		obj["payee"] = e.Payee
		obj["narration"] = e.Narration
		obj["tags"] = toList(e.Tags)
		obj["links"] = toList(e.Links)
		postings := make([]interface{}, len(e.Postings))
		for i, p := range e.Postings {
			posting := map[string]interface{}{
				"account": p.Account,
				"units":   s.amount(p.Units),
				"flag":    p.Flag,
			}
			if p.Cost != nil {
				cost := s.amount(data.Amount{Number: p.Cost.Number, Currency: p.Cost.Currency})
				if !p.Cost.Date.IsZero() {
					cost["date"] = p.Cost.Date.Format(data.DateLayout)
				}
				cost["label"] = p.Cost.Label
				posting["cost"] = cost
			}
			if p.Price != nil {
				posting["price"] = s.amount(*p.Price)
			}
			postings[i] = posting
		}
		obj["postings"] = postings
	case *data.Balance:
		obj["account"] = e.Account
		obj["amount"] = s.amount(e.Amount)
		if e.DiffAmount != nil {
			obj["diff_amount"] = s.amount(*e.DiffAmount)
		}
	case *data.Document:
		obj["account"] = e.Account
		obj["document"] = e.Filename
		obj["tags"] = toList(e.Tags)
		obj["links"] = toList(e.Links)
	case *data.Price:
		obj["currency"] = e.Currency
		obj["amount"] = s.amount(e.Amount)
	case *data.Event:
		obj["event_type"] = e.Type
		obj["description"] = e.Description
	case *data.Query:
		obj["name"] = e.Name
		obj["query_string"] = e.QueryString
	case *data.Custom:
		obj["custom_type"] = e.Type
		values := make([]interface{}, len(e.Values))
		for i, v := range e.Values {
			if v.Type == data.CustomNumber {
				values[i] = s.number(v.Number)
				continue
			}
			if v.Type == data.CustomAmount {
				values[i] = s.amount(v.Amount)
				continue
			}
			values[i] = v.String()
		}
		obj["values"] = values
	case *data.Pad:
		obj["account"] = e.Account
		obj["source_account"] = e.SourceAccount
	case *data.Note:
		obj["account"] = e.Account
		obj["comment"] = e.Comment
	}
	return obj
}

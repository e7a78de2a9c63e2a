package filters

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"

	"github.com/robinvdvleuten/beanreport/data"
)

// fromLanguage evaluates from expressions: comparisons, logic, =~ regex
// matching and "in" for arrays.
var fromLanguage = gval.Full()

// fromFilter keeps entries for which a boolean expression holds. The
// expression sees these attributes of each entry:
//
//	type       "transaction", "open", ...
//	date       "2024-01-15"
//	year, month, day
//	flag, payee, narration
//	tags, links, accounts   arrays usable with "in"
//	account    all accounts joined by spaces, for =~ matching
//	meta       metadata map
//
// Example:
//
//	year == 2024 && "trip" in tags && account =~ "^Expenses:Food"
type fromFilter struct {
	expr gval.Evaluable
}

var positionRE = regexp.MustCompile(`:(\d+):(\d+)`)

func newFromFilter(value string) (filter, error) {
	expr, err := fromLanguage.NewEvaluable(value)
	if err != nil {
		return nil, &FilterParseError{Filter: From, Value: value, Token: offendingToken(value, err), Err: err}
	}
	return &fromFilter{expr: expr}, nil
}

// offendingToken extracts the remainder of value starting at the column
// reported by the parser, falling back to the whole value.
func offendingToken(value string, err error) string {
	m := positionRE.FindStringSubmatch(err.Error())
	if m == nil {
		return value
	}
	col, _ := strconv.Atoi(m[2])
	if col < 1 || col > len(value) {
		return value
	}
	if token := strings.Fields(value[col-1:]); len(token) > 0 {
		return token[0]
	}
	return value
}

func (f *fromFilter) apply(entries []data.Entry, _ data.Options) []data.Entry {
	ctx := context.Background()
	return keep(entries, func(entry data.Entry) bool {
		ok, err := f.expr.EvalBool(ctx, Attributes(entry))
		return err == nil && ok
	})
}

// Attributes exposes an entry to expressions.
func Attributes(entry data.Entry) map[string]interface{} {
	date := entry.EntryDate()
	accounts := data.Accounts(entry)
	meta := map[string]interface{}{}
	for k, v := range entry.EntryMeta().Values {
		meta[k] = v
	}
	attrs := map[string]interface{}{
		"type":      string(entry.Kind()),
		"date":      date.Format(data.DateLayout),
		"year":      float64(date.Year()),
		"month":     float64(date.Month()),
		"day":       float64(date.Day()),
		"flag":      "",
		"payee":     "",
		"narration": "",
		"tags":      toInterfaces(data.Tags(entry)),
		"links":     toInterfaces(data.Links(entry)),
		"accounts":  toInterfaces(accounts),
		"account":   strings.Join(accounts, " "),
		"meta":      meta,
	}
	if txn, ok := entry.(*data.Transaction); ok {
		attrs["flag"] = txn.Flag
		attrs["payee"] = txn.Payee
		attrs["narration"] = txn.Narration
	}
	return attrs
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

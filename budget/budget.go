// Package budget parses budget directives and merges budgets into zipped
// interval trees.
//
// A budget is declared with a custom entry:
//
//	2024-01-01 custom "budget" Expenses:Food "monthly" 400.00 EUR
//
// From its date on, the amount is spread evenly over the days of each period
// until a later budget for the same account and currency replaces it.
package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/realization"
)

// Directive is the custom entry type that declares a budget.
const Directive = "budget"

// Budget is a single budget rule.
type Budget struct {
	Account  string
	Start    time.Time
	Period   dateutil.Interval
	Number   decimal.Decimal
	Currency string
}

// BudgetError reports a budget directive that could not be parsed.
type BudgetError struct {
	Meta    data.Meta
	Message string
	Entry   data.Entry
}

func (e *BudgetError) Error() string {
	if e.Meta.Filename != "" {
		return fmt.Sprintf("%s:%d: %s", e.Meta.Filename, e.Meta.Lineno, e.Message)
	}
	return e.Message
}

// Budgets maps account names to their rules, sorted by start date.
type Budgets map[string][]Budget

// Parse collects the budget directives among customs. Malformed directives
// are reported and skipped.
func Parse(customs []*data.Custom) (Budgets, []error) {
	budgets := Budgets{}
	var errs []error
	for _, custom := range customs {
		if custom.Type != Directive {
			continue
		}
		b, err := parseOne(custom)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		budgets[b.Account] = append(budgets[b.Account], b)
	}
	for account := range budgets {
		slices.SortStableFunc(budgets[account], func(a, b Budget) int {
			return a.Start.Compare(b.Start)
		})
	}
	return budgets, errs
}

func parseOne(custom *data.Custom) (Budget, error) {
	fail := func(format string, args ...interface{}) (Budget, error) {
		return Budget{}, &BudgetError{Meta: custom.Meta, Message: fmt.Sprintf(format, args...), Entry: custom}
	}
	if len(custom.Values) != 3 {
		return fail("budget needs an account, a period and an amount, got %d values", len(custom.Values))
	}

	account := custom.Values[0].Account
	if custom.Values[0].Type == data.CustomString {
		account = custom.Values[0].Text
	}
	if !data.ValidAccount(account) {
		return fail("invalid budget account %q", account)
	}

	if custom.Values[1].Type != data.CustomString {
		return fail("budget period must be a string")
	}
	period, err := dateutil.ParseInterval(custom.Values[1].Text)
	if err != nil {
		return fail("invalid budget period %q", custom.Values[1].Text)
	}

	if custom.Values[2].Type != data.CustomAmount {
		return fail("budget value must be an amount")
	}
	amount := custom.Values[2].Amount

	return Budget{
		Account:  account,
		Start:    dateutil.Date(custom.Date),
		Period:   period,
		Number:   amount.Number,
		Currency: amount.Currency,
	}, nil
}

type periodKey struct {
	rule  int
	start time.Time
}

// Calculate returns the budget of account over [begin, end). Each day
// contributes the amount of the latest rule per currency that started on or
// before it, divided by the length of the rule's period. Full periods
// resolve to exactly the budgeted amount.
func (b Budgets) Calculate(account string, begin, end time.Time) *inventory.Balance {
	total := inventory.NewBalance()
	rules := b[account]
	if len(rules) == 0 {
		return total
	}

	days := map[periodKey]int64{}
	for _, day := range dateutil.Days(begin, end) {
		active := map[string]int{}
		for i, rule := range rules {
			if rule.Start.After(day) {
				break
			}
			active[rule.Currency] = i
		}
		for _, i := range active {
			days[periodKey{rule: i, start: dateutil.StartOf(day, rules[i].Period)}]++
		}
	}

	for key, count := range days {
		rule := rules[key.rule]
		length := decimal.NewFromInt(int64(dateutil.DaysInPeriod(key.start, rule.Period)))
		total.Add(rule.Currency, rule.Number.Mul(decimal.NewFromInt(count)).Div(length))
	}
	return total
}

// AddBudgets sets the budget deltas of every node of tree, for bucket i
// covering buckets[i] or, when accumulating, [buckets[0].Begin, buckets[i].End).
// The account's budget is resolved once: Budget is it minus the account's
// own balance, BudgetChildren it minus the balance with children.
// Currencies missing on either side count as zero. A nil tree is returned
// as is.
func AddBudgets(tree *realization.ZippedNode, buckets []dateutil.Bucket, accumulate bool, budgets Budgets) *realization.ZippedNode {
	if tree == nil || len(buckets) == 0 {
		return tree
	}
	tree.Walk(func(node *realization.ZippedNode) {
		for i := range node.Balances {
			if i >= len(buckets) {
				break
			}
			begin, end := buckets[i].Begin, buckets[i].End
			if accumulate {
				begin = buckets[0].Begin
			}
			budget := budgets.Calculate(node.Account, begin, end)
			balance := &node.Balances[i]
			balance.Budget = difference(budget, balance.Balance)
			balance.BudgetChildren = difference(budget, balance.BalanceChildren)
		}
	})
	return tree
}

func difference(budget, actual *inventory.Balance) *inventory.Balance {
	out := budget.Copy()
	for _, e := range actual.Entries() {
		out.Add(e.Currency, e.Amount.Neg())
	}
	return out
}

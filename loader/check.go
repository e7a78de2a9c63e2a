package loader

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/inventory"
)

type pendingPad struct {
	pad  *data.Pad
	used map[string]bool
}

// checker walks sorted entries, inserting padding transactions and recording
// the outcome of balance assertions.
type checker struct {
	opts     data.Options
	accounts map[string]*inventory.Inventory
	pads     map[string]*pendingPad
	allPads  []*pendingPad
	padding  []data.Entry
	errs     []error
}

// check inserts padding transactions for pads and sets DiffAmount on failed
// balance assertions. Problems are appended to errs.
func check(entries []data.Entry, opts data.Options, errs *[]error) []data.Entry {
	c := &checker{
		opts:     opts,
		accounts: map[string]*inventory.Inventory{},
		pads:     map[string]*pendingPad{},
	}
	for _, entry := range entries {
		switch e := entry.(type) {
		case *data.Transaction:
			c.post(e.Postings)
		case *data.Pad:
			p := &pendingPad{pad: e, used: map[string]bool{}}
			c.pads[e.Account] = p
			c.allPads = append(c.allPads, p)
		case *data.Balance:
			c.balance(e)
		}
	}
	for _, p := range c.allPads {
		if len(p.used) == 0 {
			c.errs = append(c.errs, entryError(p.pad, "unused pad entry for %s", p.pad.Account))
		}
	}
	*errs = append(*errs, c.errs...)

	if len(c.padding) == 0 {
		return entries
	}
	out := append(slices.Clone(entries), c.padding...)
	data.Sort(out)
	return out
}

func (c *checker) post(postings []data.Posting) {
	for _, p := range postings {
		inv, ok := c.accounts[p.Account]
		if !ok {
			inv = inventory.New()
			c.accounts[p.Account] = inv
		}
		inv.AddPosting(p)
	}
}

// accumulated sums the units of currency held by account and its descendants.
func (c *checker) accumulated(account, currency string) decimal.Decimal {
	total := decimal.Zero
	for name, inv := range c.accounts {
		if data.IsAccountOrDescendant(name, account) {
			total = total.Add(inv.Get(currency))
		}
	}
	return total
}

func (c *checker) balance(b *data.Balance) {
	currency := b.Amount.Currency
	tolerance := c.opts.InferredToleranceDefault
	if b.Tolerance != nil {
		tolerance = *b.Tolerance
	}

	actual := c.accumulated(b.Account, currency)
	difference := b.Amount.Number.Sub(actual)

	if p := c.pads[b.Account]; p != nil && !p.used[currency] {
		p.used[currency] = true
		if difference.Abs().GreaterThan(tolerance) {
			txn := paddingTransaction(p.pad, b, difference)
			c.post(txn.Postings)
			c.padding = append(c.padding, txn)
			actual = actual.Add(difference)
			difference = decimal.Zero
		}
	}

	if difference.Abs().GreaterThan(tolerance) {
		b.DiffAmount = &data.Amount{Number: difference.Neg(), Currency: currency}
		c.errs = append(c.errs, entryError(b, "balance failed for '%s': expected %s != accumulated %s %s (%s too %s)",
			b.Account, b.Amount, actual, currency, difference.Abs(), tooMuchOrLittle(difference)))
	}
}

func tooMuchOrLittle(difference decimal.Decimal) string {
	if difference.IsNegative() {
		return "much"
	}
	return "little"
}

func paddingTransaction(pad *data.Pad, b *data.Balance, difference decimal.Decimal) *data.Transaction {
	amount := data.Amount{Number: difference, Currency: b.Amount.Currency}
	narration := fmt.Sprintf("(Padding inserted for Balance of %s for difference %s)", b.Amount, amount)
	return &data.Transaction{
		Header:    data.Header{Date: pad.Date, Meta: pad.Meta},
		Flag:      data.FlagPadding,
		Narration: narration,
		Postings: []data.Posting{
			{Account: pad.Account, Units: amount},
			{Account: pad.SourceAccount, Units: data.Amount{Number: difference.Neg(), Currency: amount.Currency}},
		},
	}
}

package data

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// MustDate parses a date and panics on error. Use only in tests and fixtures.
func MustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseAmount parses an amount of the form "NUMBER CURRENCY".
//
// Example:
//
//	amount, err := data.ParseAmount("-100.00 USD")
func ParseAmount(s string) (Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("invalid amount %q: expected number and currency", s)
	}
	n, err := decimal.NewFromString(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount value %q: %w", fields[0], err)
	}
	return Amount{Number: n, Currency: fields[1]}, nil
}

// MustAmount parses an amount and panics on error. Use only in tests and fixtures.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewOpen creates an Open entry.
func NewOpen(date time.Time, account string, currencies ...string) *Open {
	return &Open{Header: Header{Date: date}, Account: account, Currencies: currencies}
}

// NewClose creates a Close entry.
func NewClose(date time.Time, account string) *Close {
	return &Close{Header: Header{Date: date}, Account: account}
}

// NewBalance creates a Balance assertion.
func NewBalance(date time.Time, account string, amount Amount) *Balance {
	return &Balance{Header: Header{Date: date}, Account: account, Amount: amount}
}

// NewPrice creates a Price entry for one unit of currency.
func NewPrice(date time.Time, currency string, amount Amount) *Price {
	return &Price{Header: Header{Date: date}, Currency: currency, Amount: amount}
}

// NewEvent creates an Event entry.
func NewEvent(date time.Time, typ, description string) *Event {
	return &Event{Header: Header{Date: date}, Type: typ, Description: description}
}

// NewQuery creates a named Query entry.
func NewQuery(date time.Time, name, query string) *Query {
	return &Query{Header: Header{Date: date}, Name: name, QueryString: query}
}

// NewNote creates a Note entry.
func NewNote(date time.Time, account, comment string) *Note {
	return &Note{Header: Header{Date: date}, Account: account, Comment: comment}
}

// NewPad creates a Pad entry.
func NewPad(date time.Time, account, source string) *Pad {
	return &Pad{Header: Header{Date: date}, Account: account, SourceAccount: source}
}

// NewDocument creates a Document entry.
func NewDocument(date time.Time, account, filename string) *Document {
	return &Document{Header: Header{Date: date}, Account: account, Filename: filename}
}

// NewCustom creates a Custom entry.
func NewCustom(date time.Time, typ string, values ...CustomValue) *Custom {
	return &Custom{Header: Header{Date: date}, Type: typ, Values: values}
}

// StringValue, AccountValue and AmountValue build custom entry arguments.
func StringValue(s string) CustomValue  { return CustomValue{Type: CustomString, Text: s} }
func AccountValue(s string) CustomValue { return CustomValue{Type: CustomAccount, Account: s} }
func AmountValue(a Amount) CustomValue  { return CustomValue{Type: CustomAmount, Amount: a} }

// TransactionOption configures a Transaction built by NewTransaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a Transaction with flag "*" unless overridden.
//
// Example:
//
//	txn := data.NewTransaction(data.MustDate("2024-01-15"), "Groceries",
//	    data.WithPayee("Whole Foods"),
//	    data.WithPostings(
//	        data.NewPosting("Expenses:Food", data.MustAmount("45.60 USD")),
//	        data.NewPosting("Assets:Checking", data.MustAmount("-45.60 USD")),
//	    ),
//	)
func NewTransaction(date time.Time, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Header:    Header{Date: date},
		Flag:      FlagOkay,
		Narration: narration,
	}
	for _, opt := range opts {
		opt(txn)
	}
	return txn
}

// WithFlag sets the transaction flag.
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) { t.Flag = flag }
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) { t.Payee = payee }
}

// WithTags adds tags to the transaction.
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) { t.Tags = append(t.Tags, tags...) }
}

// WithLinks adds links to the transaction.
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) { t.Links = append(t.Links, links...) }
}

// WithPostings appends postings to the transaction.
func WithPostings(postings ...Posting) TransactionOption {
	return func(t *Transaction) { t.Postings = append(t.Postings, postings...) }
}

// WithMeta sets the transaction's metadata.
func WithMeta(meta Meta) TransactionOption {
	return func(t *Transaction) { t.Meta = meta }
}

// PostingOption configures a Posting built by NewPosting.
type PostingOption func(*Posting)

// NewPosting creates a posting of units to account.
func NewPosting(account string, units Amount, opts ...PostingOption) Posting {
	p := Posting{Account: account, Units: units}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// AtCost attaches a per-unit cost to the posting.
func AtCost(cost Amount) PostingOption {
	return func(p *Posting) {
		p.Cost = &Cost{Number: cost.Number, Currency: cost.Currency}
	}
}

// AtPrice attaches a per-unit price to the posting.
func AtPrice(price Amount) PostingOption {
	return func(p *Posting) { p.Price = &price }
}

// Weight returns the amount a posting contributes to its transaction's balance.
func (p Posting) Weight() Amount {
	switch {
	case p.Cost != nil:
		return Amount{Number: p.Units.Number.Mul(p.Cost.Number), Currency: p.Cost.Currency}
	case p.Price != nil:
		return Amount{Number: p.Units.Number.Mul(p.Price.Number), Currency: p.Price.Currency}
	}
	return p.Units
}

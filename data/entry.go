// Package data defines the immutable ledger entries the report layer works on.
//
// Entries are produced once by an entry store (see package loader) and never
// mutated afterwards. Every downstream component (filters, realization,
// holdings, budgets) reads them and builds its own derived structures.
package data

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of an Entry.
type Kind string

const (
	KindOpen        Kind = "open"
	KindClose       Kind = "close"
	KindTransaction Kind = "transaction"
	KindBalance     Kind = "balance"
	KindDocument    Kind = "document"
	KindPrice       Kind = "price"
	KindEvent       Kind = "event"
	KindQuery       Kind = "query"
	KindCustom      Kind = "custom"
	KindPad         Kind = "pad"
	KindNote        Kind = "note"
)

// Transaction flags.
const (
	FlagOkay       = "*"
	FlagWarning    = "!"
	FlagPadding    = "P"
	FlagSummarize  = "S"
	FlagTransfer   = "T"
	FlagConversion = "C"
	FlagUnrealized = "U"
)

// Entry is a dated ledger directive.
type Entry interface {
	EntryDate() time.Time
	EntryMeta() Meta
	Kind() Kind
}

// Meta holds the source location of an entry and its free-form metadata.
type Meta struct {
	Filename string
	Lineno   int
	Values   map[string]string
}

// Get returns the metadata value stored under key.
func (m Meta) Get(key string) (string, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// Header carries the fields shared by every entry variant.
type Header struct {
	Date time.Time
	Meta Meta
}

func (h Header) EntryDate() time.Time { return h.Date }
func (h Header) EntryMeta() Meta      { return h.Meta }

// Amount is a decimal number in a commodity.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// Cost is the per-unit acquisition cost of a lot.
type Cost struct {
	Number   decimal.Decimal
	Currency string
	Date     time.Time
	Label    string
}

// Open declares that an account exists from Date on.
type Open struct {
	Header
	Account    string
	Currencies []string
	Booking    string
}

func (*Open) Kind() Kind { return KindOpen }

// Close marks the end of an account's lifetime.
type Close struct {
	Header
	Account string
}

func (*Close) Kind() Kind { return KindClose }

// Posting is a single leg of a transaction.
type Posting struct {
	Account string
	Units   Amount
	Cost    *Cost
	Price   *Amount
	Flag    string
	Meta    Meta
}

// Transaction moves commodities between accounts.
type Transaction struct {
	Header
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Postings  []Posting
}

func (*Transaction) Kind() Kind { return KindTransaction }

// Balance asserts the balance of an account at the beginning of Date.
// DiffAmount is set by the entry store when the assertion did not hold.
type Balance struct {
	Header
	Account    string
	Amount     Amount
	Tolerance  *decimal.Decimal
	DiffAmount *Amount
}

func (*Balance) Kind() Kind { return KindBalance }

// Failed reports whether the assertion recorded a nonzero difference.
func (b *Balance) Failed() bool {
	return b.DiffAmount != nil && !b.DiffAmount.Number.IsZero()
}

// Document links an external file to an account.
type Document struct {
	Header
	Account  string
	Filename string
	Tags     []string
	Links    []string
}

func (*Document) Kind() Kind { return KindDocument }

// Price records the value of one unit of Currency in Amount.Currency.
type Price struct {
	Header
	Currency string
	Amount   Amount
}

func (*Price) Kind() Kind { return KindPrice }

// Event records the value of a named variable from Date on.
type Event struct {
	Header
	Type        string
	Description string
}

func (*Event) Kind() Kind { return KindEvent }

// Query stores a named query.
type Query struct {
	Header
	Name        string
	QueryString string
}

func (*Query) Kind() Kind { return KindQuery }

// CustomValue is a single typed argument of a Custom entry.
// Exactly one of the value fields is meaningful, as indicated by Type.
type CustomValue struct {
	Type    CustomType
	Text    string
	Number  decimal.Decimal
	Amount  Amount
	Bool    bool
	Date    time.Time
	Account string
}

// CustomType tags the variant held by a CustomValue.
type CustomType string

const (
	CustomString  CustomType = "string"
	CustomNumber  CustomType = "number"
	CustomAmount  CustomType = "amount"
	CustomBool    CustomType = "bool"
	CustomDate    CustomType = "date"
	CustomAccount CustomType = "account"
)

// Custom is a user-defined directive, e.g. budgets or sidebar links.
type Custom struct {
	Header
	Type   string
	Values []CustomValue
}

func (*Custom) Kind() Kind { return KindCustom }

// Pad fills Account from SourceAccount up to the next balance assertion.
type Pad struct {
	Header
	Account       string
	SourceAccount string
}

func (*Pad) Kind() Kind { return KindPad }

// Note attaches a comment to an account.
type Note struct {
	Header
	Account string
	Comment string
}

func (*Note) Kind() Kind { return KindNote }

var (
	_ Entry = (*Open)(nil)
	_ Entry = (*Close)(nil)
	_ Entry = (*Transaction)(nil)
	_ Entry = (*Balance)(nil)
	_ Entry = (*Document)(nil)
	_ Entry = (*Price)(nil)
	_ Entry = (*Event)(nil)
	_ Entry = (*Query)(nil)
	_ Entry = (*Custom)(nil)
	_ Entry = (*Pad)(nil)
	_ Entry = (*Note)(nil)
)

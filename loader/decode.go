package loader

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/beanreport/data"
)

type rawOptions struct {
	Title                      string           `yaml:"title"`
	OperatingCurrency          []string         `yaml:"operating_currency"`
	RenderCommas               bool             `yaml:"render_commas"`
	DisplayPrecision           map[string]int32 `yaml:"display_precision"`
	InferredToleranceDefault   string           `yaml:"inferred_tolerance_default"`
	Documents                  []string         `yaml:"documents"`
	NameAssets                 string           `yaml:"name_assets"`
	NameLiabilities            string           `yaml:"name_liabilities"`
	NameEquity                 string           `yaml:"name_equity"`
	NameIncome                 string           `yaml:"name_income"`
	NameExpenses               string           `yaml:"name_expenses"`
	AccountPreviousBalances    string           `yaml:"account_previous_balances"`
	AccountPreviousEarnings    string           `yaml:"account_previous_earnings"`
	AccountPreviousConversions string           `yaml:"account_previous_conversions"`
	AccountCurrentEarnings     string           `yaml:"account_current_earnings"`
	AccountCurrentConversions  string           `yaml:"account_current_conversions"`
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (r rawOptions) apply(opts data.Options, filename string) (data.Options, []error) {
	var errs []error
	opts.Title = r.Title
	opts.OperatingCurrencies = r.OperatingCurrency
	opts.RenderCommas = r.RenderCommas
	opts.Documents = r.Documents
	for currency, precision := range r.DisplayPrecision {
		opts.DisplayPrecision[currency] = precision
	}
	if r.InferredToleranceDefault != "" {
		tol, err := decimal.NewFromString(r.InferredToleranceDefault)
		if err != nil {
			errs = append(errs, &LoadError{
				Pos:     Position{Filename: filename},
				Message: fmt.Sprintf("invalid inferred_tolerance_default %q", r.InferredToleranceDefault),
			})
		} else {
			opts.InferredToleranceDefault = tol
		}
	}
	setIf(&opts.AccountTypes.Assets, r.NameAssets)
	setIf(&opts.AccountTypes.Liabilities, r.NameLiabilities)
	setIf(&opts.AccountTypes.Equity, r.NameEquity)
	setIf(&opts.AccountTypes.Income, r.NameIncome)
	setIf(&opts.AccountTypes.Expenses, r.NameExpenses)
	setIf(&opts.AccountPreviousBalances, r.AccountPreviousBalances)
	setIf(&opts.AccountPreviousEarnings, r.AccountPreviousEarnings)
	setIf(&opts.AccountPreviousConversions, r.AccountPreviousConversions)
	setIf(&opts.AccountCurrentEarnings, r.AccountCurrentEarnings)
	setIf(&opts.AccountCurrentConversions, r.AccountCurrentConversions)
	return opts, errs
}

// residualTolerance is the largest weight imbalance accepted in a transaction.
var residualTolerance = decimal.RequireFromString("0.005")

type rawPosting struct {
	Account   string            `yaml:"account"`
	Units     string            `yaml:"units"`
	Cost      string            `yaml:"cost"`
	CostDate  string            `yaml:"cost_date"`
	CostLabel string            `yaml:"cost_label"`
	Price     string            `yaml:"price"`
	Flag      string            `yaml:"flag"`
	Meta      map[string]string `yaml:"meta"`
}

type rawEntry struct {
	Date string            `yaml:"date"`
	Type string            `yaml:"type"`
	Meta map[string]string `yaml:"meta"`

	Account       string   `yaml:"account"`
	Currencies    []string `yaml:"currencies"`
	Booking       string   `yaml:"booking"`
	SourceAccount string   `yaml:"source_account"`

	Flag      string       `yaml:"flag"`
	Payee     string       `yaml:"payee"`
	Narration string       `yaml:"narration"`
	Tags      []string     `yaml:"tags"`
	Links     []string     `yaml:"links"`
	Postings  []rawPosting `yaml:"postings"`

	Amount    string `yaml:"amount"`
	Tolerance string `yaml:"tolerance"`
	Currency  string `yaml:"currency"`

	EventType   string `yaml:"event_type"`
	Description string `yaml:"description"`

	Name  string `yaml:"name"`
	Query string `yaml:"query"`

	CustomType string              `yaml:"custom_type"`
	Values     []map[string]string `yaml:"values"`

	Comment  string `yaml:"comment"`
	Filename string `yaml:"filename"`
}

// decodeError is a decoding failure that has no entry to attach to yet.
func decodeError(filename string, line int, format string, args ...interface{}) error {
	return &LoadError{
		Pos:     Position{Filename: filename, Line: line},
		Message: fmt.Sprintf(format, args...),
	}
}

func decodeEntry(filename string, node *yaml.Node) (data.Entry, error) {
	var raw rawEntry
	if err := node.Decode(&raw); err != nil {
		return nil, decodeError(filename, node.Line, "invalid entry: %v", err)
	}
	date, err := data.ParseDate(raw.Date)
	if err != nil {
		return nil, decodeError(filename, node.Line, "%v", err)
	}
	header := data.Header{
		Date: date,
		Meta: data.Meta{Filename: filename, Lineno: node.Line, Values: raw.Meta},
	}
	fail := func(format string, args ...interface{}) (data.Entry, error) {
		return nil, decodeError(filename, node.Line, format, args...)
	}
	needsAccount := func() bool { return data.ValidAccount(raw.Account) }

	switch data.Kind(raw.Type) {
	case data.KindOpen:
		if !needsAccount() {
			return fail("invalid account %q", raw.Account)
		}
		return &data.Open{Header: header, Account: raw.Account, Currencies: raw.Currencies, Booking: raw.Booking}, nil

	case data.KindClose:
		if !needsAccount() {
			return fail("invalid account %q", raw.Account)
		}
		return &data.Close{Header: header, Account: raw.Account}, nil

	case data.KindTransaction:
		return decodeTransaction(header, raw)

	case data.KindBalance:
		if !needsAccount() {
			return fail("invalid account %q", raw.Account)
		}
		amount, err := data.ParseAmount(raw.Amount)
		if err != nil {
			return fail("%v", err)
		}
		b := &data.Balance{Header: header, Account: raw.Account, Amount: amount}
		if raw.Tolerance != "" {
			tol, err := decimal.NewFromString(raw.Tolerance)
			if err != nil {
				return fail("invalid tolerance %q", raw.Tolerance)
			}
			b.Tolerance = &tol
		}
		return b, nil

	case data.KindPrice:
		amount, err := data.ParseAmount(raw.Amount)
		if err != nil {
			return fail("%v", err)
		}
		if raw.Currency == "" {
			return fail("price without currency")
		}
		return &data.Price{Header: header, Currency: raw.Currency, Amount: amount}, nil

	case data.KindEvent:
		return &data.Event{Header: header, Type: raw.EventType, Description: raw.Description}, nil

	case data.KindQuery:
		return &data.Query{Header: header, Name: raw.Name, QueryString: raw.Query}, nil

	case data.KindCustom:
		values, err := decodeCustomValues(raw.Values)
		if err != nil {
			return fail("%v", err)
		}
		return &data.Custom{Header: header, Type: raw.CustomType, Values: values}, nil

	case data.KindPad:
		if !needsAccount() || !data.ValidAccount(raw.SourceAccount) {
			return fail("invalid pad accounts %q and %q", raw.Account, raw.SourceAccount)
		}
		return &data.Pad{Header: header, Account: raw.Account, SourceAccount: raw.SourceAccount}, nil

	case data.KindNote:
		if !needsAccount() {
			return fail("invalid account %q", raw.Account)
		}
		return &data.Note{Header: header, Account: raw.Account, Comment: raw.Comment}, nil

	case data.KindDocument:
		if !needsAccount() {
			return fail("invalid account %q", raw.Account)
		}
		return &data.Document{Header: header, Account: raw.Account, Filename: raw.Filename, Tags: raw.Tags, Links: raw.Links}, nil
	}
	return fail("unknown entry type %q", raw.Type)
}

func decodeTransaction(header data.Header, raw rawEntry) (data.Entry, error) {
	txn := &data.Transaction{
		Header:    header,
		Flag:      raw.Flag,
		Payee:     raw.Payee,
		Narration: raw.Narration,
		Tags:      raw.Tags,
		Links:     raw.Links,
	}
	if txn.Flag == "" {
		txn.Flag = data.FlagOkay
	}

	missing := -1
	for i, rp := range raw.Postings {
		if !data.ValidAccount(rp.Account) {
			return nil, entryError(txn, "invalid posting account %q", rp.Account)
		}
		p := data.Posting{
			Account: rp.Account,
			Flag:    rp.Flag,
			Meta:    data.Meta{Filename: header.Meta.Filename, Lineno: header.Meta.Lineno, Values: rp.Meta},
		}
		if rp.Units == "" {
			if missing >= 0 {
				return nil, entryError(txn, "more than one posting without units")
			}
			missing = i
			txn.Postings = append(txn.Postings, p)
			continue
		}
		units, err := data.ParseAmount(rp.Units)
		if err != nil {
			return nil, entryError(txn, "posting %s: %v", rp.Account, err)
		}
		p.Units = units
		if rp.Cost != "" {
			cost, err := data.ParseAmount(rp.Cost)
			if err != nil {
				return nil, entryError(txn, "posting %s cost: %v", rp.Account, err)
			}
			p.Cost = &data.Cost{Number: cost.Number, Currency: cost.Currency, Label: rp.CostLabel}
			if rp.CostDate != "" {
				d, err := data.ParseDate(rp.CostDate)
				if err != nil {
					return nil, entryError(txn, "posting %s cost: %v", rp.Account, err)
				}
				p.Cost.Date = d
			}
		}
		if rp.Price != "" {
			price, err := data.ParseAmount(rp.Price)
			if err != nil {
				return nil, entryError(txn, "posting %s price: %v", rp.Account, err)
			}
			p.Price = &price
		}
		txn.Postings = append(txn.Postings, p)
	}

	residual := map[string]decimal.Decimal{}
	for i, p := range txn.Postings {
		if i == missing {
			continue
		}
		w := p.Weight()
		residual[w.Currency] = residual[w.Currency].Add(w.Number)
	}

	if missing >= 0 {
		var currencies []string
		for c, n := range residual {
			if !n.IsZero() {
				currencies = append(currencies, c)
			}
		}
		if len(currencies) != 1 {
			return nil, entryError(txn, "cannot infer units of %s from %d currencies", txn.Postings[missing].Account, len(currencies))
		}
		txn.Postings[missing].Units = data.Amount{Number: residual[currencies[0]].Neg(), Currency: currencies[0]}
		return txn, nil
	}

	for currency, n := range residual {
		if n.Abs().GreaterThan(residualTolerance) {
			return txn, entryError(txn, "transaction does not balance: %s %s", n, currency)
		}
	}
	return txn, nil
}

func decodeCustomValues(raw []map[string]string) ([]data.CustomValue, error) {
	values := make([]data.CustomValue, 0, len(raw))
	for _, m := range raw {
		if len(m) != 1 {
			return nil, fmt.Errorf("custom value needs exactly one type key, got %d", len(m))
		}
		for typ, text := range m {
			v := data.CustomValue{Type: data.CustomType(typ)}
			switch v.Type {
			case data.CustomString:
				v.Text = text
			case data.CustomAccount:
				v.Account = text
			case data.CustomNumber:
				n, err := decimal.NewFromString(text)
				if err != nil {
					return nil, fmt.Errorf("invalid custom number %q", text)
				}
				v.Number = n
			case data.CustomAmount:
				a, err := data.ParseAmount(text)
				if err != nil {
					return nil, err
				}
				v.Amount = a
			case data.CustomBool:
				switch strings.ToLower(text) {
				case "true":
					v.Bool = true
				case "false":
				default:
					return nil, fmt.Errorf("invalid custom bool %q", text)
				}
			case data.CustomDate:
				d, err := data.ParseDate(text)
				if err != nil {
					return nil, err
				}
				v.Date = d
			default:
				return nil, fmt.Errorf("unknown custom value type %q", typ)
			}
			values = append(values, v)
		}
	}
	return values, nil
}

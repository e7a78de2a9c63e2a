package data

import (
	"fmt"
	"strings"
)

// DateLayout is the layout of dates in rendered entries.
const DateLayout = "2006-01-02"

// String renders an amount as "NUMBER CURRENCY".
func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// String renders a cost in brace notation without the braces.
func (c Cost) String() string {
	parts := []string{c.Number.String() + " " + c.Currency}
	if !c.Date.IsZero() {
		parts = append(parts, c.Date.Format(DateLayout))
	}
	if c.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", c.Label))
	}
	return strings.Join(parts, ", ")
}

// Format renders an entry in Beancount syntax, without metadata.
func Format(entry Entry) string {
	var b strings.Builder
	date := entry.EntryDate().Format(DateLayout)

	switch e := entry.(type) {
	case *Open:
		fmt.Fprintf(&b, "%s open %s", date, e.Account)
		if len(e.Currencies) > 0 {
			fmt.Fprintf(&b, " %s", strings.Join(e.Currencies, ","))
		}
		if e.Booking != "" {
			fmt.Fprintf(&b, " %q", e.Booking)
		}
	case *Close:
		fmt.Fprintf(&b, "%s close %s", date, e.Account)
	case *Transaction:
		fmt.Fprintf(&b, "%s %s", date, e.Flag)
		if e.Payee != "" {
			fmt.Fprintf(&b, " %q", e.Payee)
		}
		fmt.Fprintf(&b, " %q", e.Narration)
		for _, tag := range e.Tags {
			fmt.Fprintf(&b, " #%s", tag)
		}
		for _, link := range e.Links {
			fmt.Fprintf(&b, " ^%s", link)
		}
		for _, p := range e.Postings {
			b.WriteString("\n  ")
			if p.Flag != "" {
				b.WriteString(p.Flag + " ")
			}
			b.WriteString(p.Account)
			b.WriteString("  " + p.Units.String())
			if p.Cost != nil {
				fmt.Fprintf(&b, " {%s}", p.Cost)
			}
			if p.Price != nil {
				fmt.Fprintf(&b, " @ %s", p.Price)
			}
		}
	case *Balance:
		fmt.Fprintf(&b, "%s balance %s  %s", date, e.Account, e.Amount)
		if e.Tolerance != nil {
			fmt.Fprintf(&b, " ~ %s", e.Tolerance)
		}
	case *Document:
		fmt.Fprintf(&b, "%s document %s %q", date, e.Account, e.Filename)
	case *Price:
		fmt.Fprintf(&b, "%s price %s  %s", date, e.Currency, e.Amount)
	case *Event:
		fmt.Fprintf(&b, "%s event %q %q", date, e.Type, e.Description)
	case *Query:
		fmt.Fprintf(&b, "%s query %q %q", date, e.Name, e.QueryString)
	case *Custom:
		fmt.Fprintf(&b, "%s custom %q", date, e.Type)
		for _, v := range e.Values {
			b.WriteString(" " + v.String())
		}
	case *Pad:
		fmt.Fprintf(&b, "%s pad %s %s", date, e.Account, e.SourceAccount)
	case *Note:
		fmt.Fprintf(&b, "%s note %s %q", date, e.Account, e.Comment)
	default:
		fmt.Fprintf(&b, "%s %s", date, entry.Kind())
	}
	return b.String()
}

// String renders a custom value as it would appear in a custom directive.
func (v CustomValue) String() string {
	switch v.Type {
	case CustomString:
		return fmt.Sprintf("%q", v.Text)
	case CustomNumber:
		return v.Number.String()
	case CustomAmount:
		return v.Amount.String()
	case CustomBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case CustomDate:
		return v.Date.Format(DateLayout)
	case CustomAccount:
		return v.Account
	}
	return ""
}

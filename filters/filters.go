// Package filters narrows the entry list before it is realized.
//
// A State holds the five filters as immutable compiled values. Setting a
// filter returns a new State and reports whether anything changed, so callers
// only recompute derived data when needed. Filters are applied in a fixed
// order: account, from, payee, tag, time. The time filter runs last, so the
// from expression always sees the full date range of the ledger.
package filters

import (
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/beanreport/data"
)

// Name identifies one of the filters.
type Name string

const (
	Account Name = "account"
	From    Name = "from"
	Payee   Name = "payee"
	Tag     Name = "tag"
	Time    Name = "time"
)

// Order is the order in which filters are applied.
var Order = []Name{Account, From, Payee, Tag, Time}

// FilterParseError reports a filter value that could not be parsed.
type FilterParseError struct {
	Filter Name
	Value  string
	Token  string
	Err    error
}

func (e *FilterParseError) Error() string {
	msg := fmt.Sprintf("invalid %s filter %q", e.Filter, e.Value)
	if e.Token != "" && e.Token != e.Value {
		msg += fmt.Sprintf(" at %q", e.Token)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FilterParseError) Unwrap() error { return e.Err }

// Values holds the raw filter strings, as typed by a user.
type Values struct {
	Account string
	From    string
	Payee   string
	Tag     string
	Time    string
}

// Get returns the raw value of a filter.
func (v Values) Get(name Name) string {
	switch name {
	case Account:
		return v.Account
	case From:
		return v.From
	case Payee:
		return v.Payee
	case Tag:
		return v.Tag
	case Time:
		return v.Time
	}
	return ""
}

func (v *Values) set(name Name, raw string) {
	switch name {
	case Account:
		v.Account = raw
	case From:
		v.From = raw
	case Payee:
		v.Payee = raw
	case Tag:
		v.Tag = raw
	case Time:
		v.Time = raw
	}
}

// filter is a compiled, immutable filter.
type filter interface {
	apply(entries []data.Entry, opts data.Options) []data.Entry
}

// State is an immutable set of compiled filters. The zero value has no
// active filter.
type State struct {
	values   Values
	compiled map[Name]filter
	begin    time.Time
	end      time.Time
}

// Values returns the raw filter values.
func (s State) Values() Values { return s.values }

// Active reports whether any filter is set.
func (s State) Active() bool { return len(s.compiled) > 0 }

// TimeRange returns the half-open range of the time filter, if set.
func (s State) TimeRange() (begin, end time.Time, ok bool) {
	if _, ok := s.compiled[Time]; !ok {
		return time.Time{}, time.Time{}, false
	}
	return s.begin, s.end, true
}

// Set returns a state with one filter replaced. changed is false when raw
// equals the current value. On error the receiver is returned unchanged.
// now anchors relative time filters such as "month".
func (s State) Set(name Name, raw string, now time.Time) (State, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == s.values.Get(name) {
		return s, false, nil
	}

	next := State{
		values:   s.values,
		compiled: make(map[Name]filter, len(s.compiled)+1),
		begin:    s.begin,
		end:      s.end,
	}
	for k, f := range s.compiled {
		next.compiled[k] = f
	}
	next.values.set(name, raw)
	delete(next.compiled, name)
	if raw == "" {
		return next, true, nil
	}

	var (
		f   filter
		err error
	)
	switch name {
	case Account:
		f, err = newAccountFilter(raw)
	case From:
		f, err = newFromFilter(raw)
	case Payee:
		f = newPayeeFilter(raw)
	case Tag:
		f, err = newTagFilter(raw)
	case Time:
		var tf *timeFilter
		tf, err = newTimeFilter(raw, now)
		if err == nil {
			next.begin, next.end = tf.begin, tf.end
			f = tf
		}
	default:
		return s, false, fmt.Errorf("unknown filter %q", name)
	}
	if err != nil {
		return s, false, err
	}
	if f != nil {
		next.compiled[name] = f
	}
	return next, true, nil
}

// SetAll sets every filter from values. The first failing filter aborts the
// whole update and the receiver is returned unchanged.
func (s State) SetAll(values Values, now time.Time) (State, bool, error) {
	next, changed := s, false
	for _, name := range Order {
		var (
			c   bool
			err error
		)
		next, c, err = next.Set(name, values.Get(name), now)
		if err != nil {
			return s, false, err
		}
		changed = changed || c
	}
	return next, changed, nil
}

// Apply runs the active filters over entries in Order. With no active
// filter the input is returned as is.
func (s State) Apply(entries []data.Entry, opts data.Options) []data.Entry {
	for _, name := range Order {
		if f, ok := s.compiled[name]; ok {
			entries = f.apply(entries, opts)
		}
	}
	return entries
}

func keep(entries []data.Entry, match func(data.Entry) bool) []data.Entry {
	out := make([]data.Entry, 0, len(entries))
	for _, entry := range entries {
		if match(entry) {
			out = append(out, entry)
		}
	}
	return out
}

package filters

import (
	"errors"
	"regexp"
	"regexp/syntax"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/summarize"
)

// accountFilter keeps entries that reference a matching account: the account
// itself, one of its descendants, or any account with a component matching
// the value as a regular expression.
type accountFilter struct {
	value     string
	component *regexp.Regexp
}

func newAccountFilter(value string) (filter, error) {
	if _, err := regexp.Compile(value); err != nil {
		token := value
		var serr *syntax.Error
		if errors.As(err, &serr) && serr.Expr != "" {
			token = serr.Expr
		}
		return nil, &FilterParseError{Filter: Account, Value: value, Token: token, Err: err}
	}
	re := regexp.MustCompile(`(?i)(^|:)(?:` + value + `)(:|$)`)
	return &accountFilter{value: value, component: re}, nil
}

func (f *accountFilter) matches(account string) bool {
	return data.IsAccountOrDescendant(account, f.value) || f.component.MatchString(account)
}

func (f *accountFilter) apply(entries []data.Entry, _ data.Options) []data.Entry {
	return keep(entries, func(entry data.Entry) bool {
		return slices.ContainsFunc(data.Accounts(entry), f.matches)
	})
}

// payeeFilter keeps transactions whose payee is one of a comma separated list.
type payeeFilter struct {
	payees []string
}

func newPayeeFilter(value string) filter {
	var payees []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			payees = append(payees, p)
		}
	}
	if len(payees) == 0 {
		return nil
	}
	return &payeeFilter{payees: payees}
}

func (f *payeeFilter) apply(entries []data.Entry, _ data.Options) []data.Entry {
	return keep(entries, func(entry data.Entry) bool {
		txn, ok := entry.(*data.Transaction)
		return ok && slices.Contains(f.payees, txn.Payee)
	})
}

var tagRE = regexp.MustCompile(`^[A-Za-z0-9\-_/.]+$`)

// tagFilter keeps entries carrying one of the included tags and none of the
// excluded ones. Excluded tags are written with a leading "-".
type tagFilter struct {
	include []string
	exclude []string
}

func newTagFilter(value string) (filter, error) {
	f := &tagFilter{}
	for _, token := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
		exclude := strings.HasPrefix(token, "-")
		tag := strings.TrimPrefix(strings.TrimPrefix(token, "-"), "#")
		if !tagRE.MatchString(tag) {
			return nil, &FilterParseError{Filter: Tag, Value: value, Token: token, Err: errors.New("invalid tag")}
		}
		if exclude {
			f.exclude = append(f.exclude, tag)
		} else {
			f.include = append(f.include, tag)
		}
	}
	if len(f.include) == 0 && len(f.exclude) == 0 {
		return nil, nil
	}
	return f, nil
}

func (f *tagFilter) apply(entries []data.Entry, _ data.Options) []data.Entry {
	return keep(entries, func(entry data.Entry) bool {
		tags := data.Tags(entry)
		for _, tag := range tags {
			if slices.Contains(f.exclude, tag) {
				return false
			}
		}
		if len(f.include) == 0 {
			return true
		}
		for _, tag := range tags {
			if slices.Contains(f.include, tag) {
				return true
			}
		}
		return false
	})
}

// timeFilter restricts entries to a date range and summarizes everything
// before it into opening balances.
type timeFilter struct {
	begin time.Time
	end   time.Time
}

func newTimeFilter(value string, now time.Time) (*timeFilter, error) {
	begin, end, err := dateutil.ParseRange(value, now)
	if err != nil {
		return nil, &FilterParseError{Filter: Time, Value: value, Token: value, Err: err}
	}
	return &timeFilter{begin: begin, end: end}, nil
}

func (f *timeFilter) apply(entries []data.Entry, opts data.Options) []data.Entry {
	return summarize.Clamp(entries, f.begin, f.end, opts)
}

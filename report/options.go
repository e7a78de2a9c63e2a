package report

import (
	"strconv"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
)

const (
	favaOptionDirective  = "fava-option"
	sidebarLinkDirective = "fava-sidebar-link"
)

// FavaOptions are report settings stored in the ledger itself as
//
//	2024-01-01 custom "fava-option" "interval" "quarter"
type FavaOptions struct {
	// Interval is the default granularity of interval reports.
	Interval dateutil.Interval
	// ShowClosedAccounts keeps closed accounts in account lists.
	ShowClosedAccounts bool
}

func defaultFavaOptions() FavaOptions {
	return FavaOptions{Interval: dateutil.Month}
}

// SidebarLink is a user-defined shortcut, stored as
//
//	2024-01-01 custom "fava-sidebar-link" "2024" "/income_statement/?time=2024"
type SidebarLink struct {
	Label string
	URL   string
}

func parseFavaOptions(customs []*data.Custom) (FavaOptions, []error) {
	opts := defaultFavaOptions()
	var errs []error
	fail := func(c *data.Custom, msg string) {
		errs = append(errs, &OptionError{Meta: c.Meta, Message: msg, Entry: c})
	}

	for _, c := range customs {
		if c.Type != favaOptionDirective {
			continue
		}
		if len(c.Values) != 2 || c.Values[0].Type != data.CustomString {
			fail(c, "fava-option needs a key and a value")
			continue
		}
		key, value := c.Values[0].Text, c.Values[1]
		switch key {
		case "interval":
			interval, err := dateutil.ParseInterval(value.Text)
			if value.Type != data.CustomString || err != nil {
				fail(c, "invalid interval "+strconv.Quote(value.Text))
				continue
			}
			opts.Interval = interval
		case "show-closed-accounts":
			show, ok := customBool(value)
			if !ok {
				fail(c, "show-closed-accounts must be true or false")
				continue
			}
			opts.ShowClosedAccounts = show
		default:
			fail(c, "unknown fava-option "+strconv.Quote(key))
		}
	}
	return opts, errs
}

func customBool(v data.CustomValue) (bool, bool) {
	switch v.Type {
	case data.CustomBool:
		return v.Bool, true
	case data.CustomString:
		b, err := strconv.ParseBool(v.Text)
		return b, err == nil
	}
	return false, false
}

func parseSidebarLinks(customs []*data.Custom) ([]SidebarLink, []error) {
	var links []SidebarLink
	var errs []error
	for _, c := range customs {
		if c.Type != sidebarLinkDirective {
			continue
		}
		if len(c.Values) != 2 || c.Values[0].Type != data.CustomString || c.Values[1].Type != data.CustomString {
			errs = append(errs, &OptionError{Meta: c.Meta, Message: "fava-sidebar-link needs a label and a URL", Entry: c})
			continue
		}
		links = append(links, SidebarLink{Label: c.Values[0].Text, URL: c.Values[1].Text})
	}
	return links, errs
}

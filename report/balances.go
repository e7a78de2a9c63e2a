package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robinvdvleuten/beanreport/budget"
	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/holdings"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/realization"
	"github.com/robinvdvleuten/beanreport/summarize"
	"github.com/robinvdvleuten/beanreport/telemetry"
)

// IntervalTotal is the at-cost total of some accounts in one bucket.
type IntervalTotal struct {
	Begin  time.Time
	End    time.Time
	Totals *inventory.Balance
}

// NetWorthPoint is the net worth in every operating currency at a date.
type NetWorthPoint struct {
	Date    time.Time
	Balance *inventory.Balance
}

// between returns the entries dated in [begin, end). A zero bound is open.
func between(entries []data.Entry, begin, end time.Time) []data.Entry {
	out := make([]data.Entry, 0, len(entries))
	for _, entry := range entries {
		date := entry.EntryDate()
		if !begin.IsZero() && date.Before(begin) {
			continue
		}
		if !end.IsZero() && !date.Before(end) {
			break
		}
		out = append(out, entry)
	}
	return out
}

func (s *snapshot) intervalTuples(interval dateutil.Interval) []dateutil.Bucket {
	return dateutil.Tuples(s.dateFirst, s.dateLast, interval)
}

// IntervalTuples returns the buckets covering the filtered report.
func (r *Report) IntervalTuples(interval dateutil.Interval) []dateutil.Bucket {
	return r.snapshot().intervalTuples(interval)
}

// realizeAccount realizes entries and returns the node of account. The node
// always exists, with the accounts in minAccounts below it.
func (r *Report) realizeAccount(entries []data.Entry, account string, minAccounts []string, opts ...realization.Option) (*realization.Account, error) {
	if account != "" {
		minAccounts = append([]string{account}, minAccounts...)
	}
	root, err := realization.Realize(entries, minAccounts, opts...)
	if err != nil {
		return nil, err
	}
	r.metrics.realizations.Inc()
	return root.Get(account), nil
}

// IntervalTotals returns, per bucket, the at-cost total of the accounts in
// names including their descendants.
func (r *Report) IntervalTotals(ctx context.Context, interval dateutil.Interval, names ...string) ([]IntervalTotal, error) {
	timer := telemetry.StartTimer(ctx, "report.interval_totals")
	defer timer.End()

	s := r.snapshot()
	buckets := s.intervalTuples(interval)
	totals := make([]IntervalTotal, 0, len(buckets))
	for _, b := range buckets {
		root, err := realization.Realize(between(s.entries, b.Begin, b.End), nil)
		if err != nil {
			return nil, err
		}
		r.metrics.realizations.Inc()
		sum := inventory.New()
		for _, name := range names {
			if node := root.Get(name); node != nil {
				sum.AddInventory(node.ComputeBalance())
			}
		}
		totals = append(totals, IntervalTotal{Begin: b.Begin, End: b.End, Totals: sum.AtCost()})
	}
	return totals, nil
}

// Balances returns the tree of account over the filtered entries in
// [begin, end). Zero bounds are open. Balances from before begin are not
// carried in.
func (r *Report) Balances(account string, begin, end time.Time) (*realization.TreeNode, error) {
	node, err := r.realizeAccount(between(r.snapshot().entries, begin, end), account, nil)
	if err != nil {
		return nil, err
	}
	return realization.Serialize(node), nil
}

// ClosingBalances returns the tree of account after transferring income and
// expenses to the current earnings account.
func (r *Report) ClosingBalances(account string) (*realization.TreeNode, error) {
	s := r.snapshot()
	node, err := r.realizeAccount(summarize.Cap(s.entries, s.options), account, nil)
	if err != nil {
		return nil, err
	}
	return realization.Serialize(node), nil
}

// TrialBalance returns the root accounts of the filtered tree.
func (r *Report) TrialBalance() []*realization.TreeNode {
	return realization.Serialize(r.snapshot().root).Children
}

// IntervalBalances realizes account once per bucket and zips the trees into
// one with a balance per bucket, budgets included. With accumulate, bucket i
// holds the balance of [buckets[0].Begin, buckets[i].End) instead of
// buckets[i] alone. Balances are in units. Every account below account
// that exists anywhere in the ledger appears in the tree, even without
// postings in the report range. An empty report yields a nil tree.
func (r *Report) IntervalBalances(ctx context.Context, interval dateutil.Interval, account string, accumulate bool) (*realization.ZippedNode, []dateutil.Bucket, error) {
	start := time.Now()
	defer func() { r.metrics.intervalDuration.Observe(time.Since(start).Seconds()) }()

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("report.interval_balances %s (%s)", account, interval))
	defer timer.End()

	s := r.snapshot()
	buckets := s.intervalTuples(interval)
	if len(buckets) == 0 {
		return nil, nil, nil
	}

	var universe []string
	for _, name := range s.allAccounts {
		if account == "" || data.IsAccountOrDescendant(name, account) {
			universe = append(universe, name)
		}
	}

	nodes := make([]*realization.Account, len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range buckets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bucketTimer := timer.Child(dateutil.Label(b.Begin, interval))
			defer bucketTimer.End()

			node, err := r.realizeAccount(between(s.entries, b.Begin, b.End), account, universe)
			if err != nil {
				return err
			}
			nodes[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	tree := realization.Zip(account, nodes, realization.Units)
	if accumulate {
		tree.Accumulate()
	}
	return budget.AddBudgets(tree, buckets, accumulate, s.budgets), buckets, nil
}

// AddBudgets merges the ledger's budgets into a zipped tree returned by
// IntervalBalances.
func (r *Report) AddBudgets(tree *realization.ZippedNode, buckets []dateutil.Bucket, accumulate bool) *realization.ZippedNode {
	return budget.AddBudgets(tree, buckets, accumulate, r.snapshot().budgets)
}

// Budgets returns the parsed budgets of the ledger.
func (r *Report) Budgets() budget.Budgets { return r.snapshot().budgets }

// NetWorthAtIntervals returns the net worth at the start of the first bucket
// and at the end of every bucket, so len(buckets)+1 points, or none for an
// empty report. Holdings without a price path to a currency count as zero.
func (r *Report) NetWorthAtIntervals(ctx context.Context, interval dateutil.Interval) []NetWorthPoint {
	timer := telemetry.StartTimer(ctx, "report.net_worth_at_intervals")
	defer timer.End()

	s := r.snapshot()
	buckets := s.intervalTuples(interval)
	if len(buckets) == 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(buckets)+1)
	dates = append(dates, buckets[0].Begin)
	for _, b := range buckets {
		dates = append(dates, b.End)
	}

	snapshots := holdings.AtDates(s.entries, dates, s.priceMap, s.options)
	points := make([]NetWorthPoint, len(dates))
	for i, date := range dates {
		points[i] = NetWorthPoint{
			Date:    date,
			Balance: holdings.NetWorth(snapshots[i], s.options.OperatingCurrencies, s.priceMap, date),
		}
	}
	return points
}

// Holdings returns the final asset and liability holdings of the filtered
// entries, optionally aggregated by "account", "currency" or "cost_currency".
func (r *Report) Holdings(ctx context.Context, aggregationKey string) (holdings.List, error) {
	timer := telemetry.StartTimer(ctx, "report.holdings")
	defer timer.End()

	s := r.snapshot()
	types := s.options.AccountTypes
	list := holdings.Final(s.entries, []string{types.Assets, types.Liabilities}, s.priceMap, time.Time{})

	switch aggregationKey {
	case "":
		return list, nil
	case "account":
		return holdings.AggregateBy(list, holdings.ByAccount), nil
	case "currency":
		return holdings.AggregateBy(list, holdings.ByCurrency), nil
	case "cost_currency":
		return holdings.AggregateBy(list, holdings.ByCostCurrency), nil
	}
	return nil, fmt.Errorf("unknown holdings aggregation %q", aggregationKey)
}

package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/filters"
	"github.com/robinvdvleuten/beanreport/inventory"
	"github.com/robinvdvleuten/beanreport/loader"
	"github.com/robinvdvleuten/beanreport/prices"
	"github.com/robinvdvleuten/beanreport/realization"
)

const ledgerPath = "/ledger/main.yaml"

type fakeStore struct {
	mu     sync.Mutex
	result *loader.Result
	err    error
	loads  int
}

func (s *fakeStore) Load(_ context.Context, filename string) (*loader.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeWatcher struct {
	changed bool
	files   []string
	dirs    []string
}

func (w *fakeWatcher) Update(files, dirs []string) { w.files, w.dirs = files, dirs }

func (w *fakeWatcher) Check() bool {
	changed := w.changed
	w.changed = false
	return changed
}

type memFS struct {
	files  map[string]string
	reads  []string
	writes []string
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	m.reads = append(m.reads, name)
	content, ok := m.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (m *memFS) WriteFile(name string, content []byte, _ os.FileMode) error {
	m.writes = append(m.writes, name)
	m.files[name] = string(content)
	return nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) data.Header { return data.Header{Date: data.MustDate(s)} }

// brokerage buys 10 X for 100 USD in January and sells 5 of them for 60 USD
// in February, next to a few bank, savings and expense entries.
func brokerage() []data.Entry {
	bankOpen := data.NewOpen(data.MustDate("2023-01-01"), "Assets:Bank")
	bankOpen.Meta.Values = map[string]string{"institution": "Example Bank"}

	entries := []data.Entry{
		bankOpen,
		data.NewOpen(data.MustDate("2023-01-01"), "Assets:Brokerage"),
		data.NewOpen(data.MustDate("2023-01-01"), "Assets:Savings"),
		data.NewOpen(data.MustDate("2023-01-01"), "Assets:Empty"),
		data.NewCustom(data.MustDate("2023-01-01"), "budget",
			data.AccountValue("Expenses:Food"), data.StringValue("monthly"), data.AmountValue(data.MustAmount("100 USD"))),
		data.NewQuery(data.MustDate("2023-01-01"), "cash", "SELECT account, sum(position)"),
		data.NewEvent(data.MustDate("2023-01-02"), "location", "Berlin"),
		data.NewTransaction(data.MustDate("2023-01-05"), "Buy X",
			data.WithPostings(
				data.NewPosting("Assets:Brokerage", data.MustAmount("10 X"), data.AtCost(data.MustAmount("10 USD"))),
				data.NewPosting("Assets:Brokerage", data.MustAmount("-100 USD")),
			)),
		data.NewTransaction(data.MustDate("2023-01-10"), "Groceries",
			data.WithPayee("Market"),
			data.WithPostings(
				data.NewPosting("Expenses:Food", data.MustAmount("30 USD")),
				data.NewPosting("Assets:Bank", data.MustAmount("-30 USD")),
			)),
		data.NewDocument(data.MustDate("2023-01-20"), "Assets:Bank", "/docs/statement.pdf"),
		data.NewTransaction(data.MustDate("2023-02-10"), "Sell X",
			data.WithPostings(
				data.NewPosting("Assets:Brokerage", data.MustAmount("-5 X"),
					data.AtCost(data.MustAmount("10 USD")), data.AtPrice(data.MustAmount("12 USD"))),
				data.NewPosting("Assets:Brokerage", data.MustAmount("60 USD")),
				data.NewPosting("Income:Gains", data.MustAmount("-10 USD")),
			)),
		data.NewPrice(data.MustDate("2023-02-10"), "X", data.MustAmount("12 USD")),
		data.NewBalance(data.MustDate("2023-03-01"), "Assets:Bank", data.MustAmount("-30 USD")),
		&data.Balance{
			Header:     date("2023-03-01"),
			Account:    "Assets:Savings",
			Amount:     data.MustAmount("10 USD"),
			DiffAmount: &data.Amount{Number: d("-10"), Currency: "USD"},
		},
		data.NewClose(data.MustDate("2023-03-02"), "Assets:Empty"),
		data.NewTransaction(data.MustDate("2023-03-05"), "Unrealized gain",
			data.WithFlag(data.FlagUnrealized),
			data.WithPostings(
				data.NewPosting("Assets:Savings", data.MustAmount("1 USD")),
				data.NewPosting("Income:Unrealized", data.MustAmount("-1 USD")),
			)),
	}
	data.Sort(entries)
	return entries
}

func brokerageResult(entries ...data.Entry) *loader.Result {
	opts := data.DefaultOptions()
	opts.Title = "Brokerage"
	opts.OperatingCurrencies = []string{"USD"}
	opts.Filename = ledgerPath
	all := append(brokerage(), entries...)
	data.Sort(all)
	return &loader.Result{Entries: all, Options: opts, Files: []string{ledgerPath}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReport(t *testing.T, opts ...Option) (*Report, *fakeStore) {
	t.Helper()
	store := &fakeStore{result: brokerageResult()}
	opts = append([]Option{WithStore(store), WithLogger(quietLogger()), WithClock(func() time.Time {
		return data.MustDate("2023-06-15")
	})}, opts...)
	r, err := New(context.Background(), ledgerPath, opts...)
	assert.NoError(t, err)
	return r, store
}

func TestNew(t *testing.T) {
	r, store := newReport(t)
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, uint64(1), r.Version())
	assert.Equal(t, "Brokerage", r.Title())
	assert.Equal(t, ledgerPath, r.Path())
	assert.Equal(t, []int{2023}, r.ActiveYears())
	assert.Equal(t, []string{"Market"}, r.ActivePayees())
	assert.Equal(t, 0, len(r.Errors()))
	assert.Equal(t, len(r.AllEntries()), len(r.Entries()))

	first, last, ok := r.DateRange()
	assert.True(t, ok)
	assert.Equal(t, data.MustDate("2023-01-05"), first)
	assert.Equal(t, data.MustDate("2023-03-05"), last)
}

func TestNewFailsWhenStoreFails(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	_, err := New(context.Background(), ledgerPath, WithStore(store), WithLogger(quietLogger()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoadKeepsStateOnFailure(t *testing.T) {
	r, store := newReport(t)
	store.err = errors.New("disk on fire")
	assert.Error(t, r.Load(context.Background()))
	assert.Equal(t, uint64(1), r.Version())
	assert.Equal(t, "Brokerage", r.Title())
}

func TestFilter(t *testing.T) {
	r, _ := newReport(t)

	changed, err := r.Filter(filters.Values{Time: "2023-02"})
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint64(2), r.Version())

	first, last, ok := r.DateRange()
	assert.True(t, ok)
	assert.Equal(t, data.MustDate("2023-02-01"), first)
	assert.Equal(t, data.MustDate("2023-02-28"), last)

	t.Run("SameValueIsNoChange", func(t *testing.T) {
		changed, err := r.Filter(filters.Values{Time: "2023-02"})
		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, uint64(2), r.Version())
	})

	t.Run("ParseErrorKeepsFilters", func(t *testing.T) {
		changed, err := r.Filter(filters.Values{Time: "2023-02", Account: "("})
		assert.False(t, changed)
		var perr *filters.FilterParseError
		assert.True(t, errors.As(err, &perr))
		assert.Equal(t, filters.Account, perr.Filter)
		assert.Equal(t, uint64(2), r.Version())
		assert.Equal(t, filters.Values{Time: "2023-02"}, r.FilterValues())
	})

	t.Run("FiltersSurviveReload", func(t *testing.T) {
		assert.NoError(t, r.Load(context.Background()))
		assert.Equal(t, uint64(3), r.Version())
		assert.Equal(t, filters.Values{Time: "2023-02"}, r.FilterValues())
	})

	t.Run("Reset", func(t *testing.T) {
		changed, err := r.Filter(filters.Values{})
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, len(r.AllEntries()), len(r.Entries()))
	})
}

func TestIntervalBalancesBrokerage(t *testing.T) {
	r, _ := newReport(t)
	ctx := context.Background()

	tree, buckets, err := r.IntervalBalances(ctx, dateutil.Month, "Assets:Brokerage", true)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(buckets))
	assert.Equal(t, data.MustDate("2023-01-01"), buckets[0].Begin)
	assert.Equal(t, "Assets:Brokerage", tree.Account)

	jan := tree.Balances[0].Balance
	assert.True(t, jan.Get("X").Equal(d("10")))
	assert.True(t, jan.Get("USD").Equal(d("-100")))

	feb := tree.Balances[1].Balance
	assert.True(t, feb.Get("X").Equal(d("5")))
	assert.True(t, feb.Get("USD").Equal(d("-40")))

	t.Run("PerInterval", func(t *testing.T) {
		tree, _, err := r.IntervalBalances(ctx, dateutil.Month, "Assets:Brokerage", false)
		assert.NoError(t, err)
		feb := tree.Balances[1].Balance
		assert.True(t, feb.Get("X").Equal(d("-5")))
		assert.True(t, feb.Get("USD").Equal(d("60")))
		assert.True(t, tree.Balances[2].Balance.IsZero())
	})
}

func sameBalance(a, b *inventory.Balance) bool {
	for _, c := range append(a.Currencies(), b.Currencies()...) {
		if !a.Get(c).Equal(b.Get(c)) {
			return false
		}
	}
	return true
}

func TestIntervalBalancesAccumulateIsPrefixSum(t *testing.T) {
	r, _ := newReport(t)
	ctx := context.Background()

	cumulative, buckets, err := r.IntervalBalances(ctx, dateutil.Month, "", true)
	assert.NoError(t, err)
	perBucket, _, err := r.IntervalBalances(ctx, dateutil.Month, "", false)
	assert.NoError(t, err)

	perBucket.Walk(func(node *realization.ZippedNode) {
		acc := cumulative.Find(node.Account)
		assert.NotZero(t, acc)
		sum, sumChildren := inventory.NewBalance(), inventory.NewBalance()
		for i := range buckets {
			sum.Merge(node.Balances[i].Balance)
			sumChildren.Merge(node.Balances[i].BalanceChildren)
			assert.True(t, sameBalance(sum, acc.Balances[i].Balance), "%s bucket %d", node.Account, i)
			assert.True(t, sameBalance(sumChildren, acc.Balances[i].BalanceChildren), "%s bucket %d", node.Account, i)
		}
	})
}

func TestIntervalBalancesKeepsAccountUniverse(t *testing.T) {
	r, _ := newReport(t)

	tree, buckets, err := r.IntervalBalances(context.Background(), dateutil.Month, "Assets", false)
	assert.NoError(t, err)

	var names []string
	for _, child := range tree.Children {
		names = append(names, child.Account)
	}
	assert.Equal(t, []string{"Assets:Bank", "Assets:Brokerage", "Assets:Empty", "Assets:Savings"}, names)

	empty := tree.Find("Assets:Empty")
	assert.Equal(t, len(buckets), len(empty.Balances))
	for _, b := range empty.Balances {
		assert.True(t, b.Balance.IsZero())
	}
}

func TestIntervalBalancesEmptyReport(t *testing.T) {
	r, _ := newReport(t)
	_, err := r.Filter(filters.Values{Payee: "Nobody"})
	assert.NoError(t, err)

	tree, buckets, err := r.IntervalBalances(context.Background(), dateutil.Month, "Assets", false)
	assert.NoError(t, err)
	assert.Zero(t, tree)
	assert.Equal(t, 0, len(buckets))
	assert.Equal(t, 0, len(r.NetWorthAtIntervals(context.Background(), dateutil.Month)))
}

func TestIntervalBalancesBudgets(t *testing.T) {
	r, _ := newReport(t)

	tree, _, err := r.IntervalBalances(context.Background(), dateutil.Month, "Expenses", false)
	assert.NoError(t, err)

	food := tree.Find("Expenses:Food")
	assert.True(t, food.Balances[0].Balance.Get("USD").Equal(d("30")))
	assert.True(t, food.Balances[0].Budget.Get("USD").Equal(d("70")))
	assert.True(t, food.Balances[1].Budget.Get("USD").Equal(d("100")))
	// Expenses has no budget of its own.
	assert.True(t, tree.Balances[0].BudgetChildren.Get("USD").Equal(d("-30")))
	assert.True(t, tree.Balances[0].Budget.Get("USD").IsZero())
}

func TestNetWorthAtIntervals(t *testing.T) {
	r, _ := newReport(t)

	points := r.NetWorthAtIntervals(context.Background(), dateutil.Month)
	assert.Equal(t, 4, len(points))

	want := []struct {
		date string
		usd  string
	}{
		{"2023-01-01", "0"},
		// 10 X have no price yet and count at cost.
		{"2023-02-01", "-30"},
		{"2023-03-01", "-10"},
		// Unrealized gains are left out of holdings.
		{"2023-04-01", "-10"},
	}
	for i, w := range want {
		assert.Equal(t, data.MustDate(w.date), points[i].Date)
		assert.True(t, points[i].Balance.Get("USD").Equal(d(w.usd)), "%s: %s", w.date, points[i].Balance)
	}
}

func TestAccountUptodateStatus(t *testing.T) {
	r, _ := newReport(t)

	tests := []struct {
		account string
		want    Status
	}{
		{"Assets:Bank", StatusGreen},
		{"Assets:Savings", StatusRed},
		{"Assets:Brokerage", StatusYellow},
		{"Assets:Empty", StatusNone},
		{"Assets:Unknown", StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			assert.Equal(t, tt.want, r.AccountUptodateStatus(tt.account))
		})
	}

	t.Run("IgnoresFilters", func(t *testing.T) {
		_, err := r.Filter(filters.Values{Account: "Expenses"})
		assert.NoError(t, err)
		assert.Equal(t, StatusRed, r.AccountUptodateStatus("Assets:Savings"))
		assert.Equal(t, StatusGreen, r.AccountUptodateStatus("Assets:Bank"))
	})
}

func TestContext(t *testing.T) {
	r, _ := newReport(t)

	var sell data.Entry
	for _, e := range r.AllEntries() {
		if txn, ok := e.(*data.Transaction); ok && txn.Narration == "Sell X" {
			sell = txn
		}
	}
	hash := data.Hash(sell)

	// Context ignores filters.
	_, err := r.Filter(filters.Values{Account: "Expenses"})
	assert.NoError(t, err)

	ctx, ok := r.Context(hash)
	assert.True(t, ok)
	assert.Equal(t, hash, ctx.Hash)
	assert.Equal(t, sell, ctx.Entry)
	assert.Equal(t, 1, len(ctx.Journal))
	assert.True(t, ctx.BalancesBefore["Assets:Brokerage"].Get("X").Equal(d("10")))
	assert.True(t, ctx.BalancesAfter["Assets:Brokerage"].Get("X").Equal(d("5")))
	assert.True(t, ctx.BalancesAfter["Income:Gains"].Get("USD").Equal(d("-10")))
	assert.Contains(t, ctx.Rendered, "------------ Balances before transaction")
	assert.Contains(t, ctx.Rendered, `"Sell X"`)
	assert.Contains(t, ctx.Rendered, "------------ Balances after transaction")

	_, ok = r.Context("0000")
	assert.False(t, ok)
}

func TestAccountViews(t *testing.T) {
	r, _ := newReport(t)

	t.Run("Journal", func(t *testing.T) {
		rows := r.AccountJournal("Assets:Brokerage", false)
		assert.Equal(t, 3, len(rows))
		assert.True(t, rows[2].Balance.Get("X").Equal(d("5")))
		assert.Equal(t, 0, len(r.AccountJournal("Assets:Unknown", false)))
	})

	t.Run("JournalFrom", func(t *testing.T) {
		rows, err := r.AccountJournalFrom("Assets:Brokerage", false, data.MustDate("2023-02-01"))
		assert.NoError(t, err)
		// The open directive is kept, carrying the January purchase.
		assert.Equal(t, 2, len(rows))
		assert.Equal(t, data.KindOpen, rows[0].Entry.Kind())
		assert.True(t, rows[0].Balance.Get("X").Equal(d("10")))
		assert.True(t, rows[0].Balance.Get("USD").Equal(d("-100")))
		assert.True(t, rows[1].Balance.Get("X").Equal(d("5")))
		assert.True(t, rows[1].Balance.Get("USD").Equal(d("-40")))

		rows, err = r.AccountJournalFrom("Assets", true, data.MustDate("2023-02-01"))
		assert.NoError(t, err)
		last := rows[len(rows)-1]
		assert.True(t, last.Balance.Get("X").Equal(d("5")))
		assert.True(t, last.Balance.Get("USD").Equal(d("-69")))
		for _, row := range rows {
			if txn, ok := row.Entry.(*data.Transaction); ok {
				assert.NotEqual(t, "Buy X", txn.Narration)
				assert.NotEqual(t, "Groceries", txn.Narration)
			}
		}

		_, err = r.AccountJournalFrom("Assets::Bad", false, data.MustDate("2023-02-01"))
		assert.Error(t, err)
	})

	t.Run("Linechart", func(t *testing.T) {
		points := r.LinechartData("Assets:Brokerage")
		assert.Equal(t, 2, len(points))
		assert.Equal(t, data.MustDate("2023-02-10"), points[1].Date)
		assert.True(t, points[1].Balance.Get("USD").Equal(d("-40")))
	})

	t.Run("LastEntry", func(t *testing.T) {
		last, ok := r.LastEntry("Assets:Bank")
		assert.True(t, ok)
		assert.Equal(t, data.KindBalance, last.Kind())
		_, ok = r.LastEntry("Assets:Empty")
		assert.False(t, ok)
	})

	t.Run("Metadata", func(t *testing.T) {
		assert.Equal(t, map[string]string{"institution": "Example Bank"}, r.AccountMetadata("Assets:Bank"))
		assert.Equal(t, map[string]string{}, r.AccountMetadata("Assets:Brokerage"))
	})

	t.Run("Inventory", func(t *testing.T) {
		inv := r.Inventory("Assets")
		assert.True(t, inv.Get("X").Equal(d("5")))
		assert.True(t, inv.Get("USD").Equal(d("-69")))
	})

	t.Run("PostingsByAccount", func(t *testing.T) {
		counts := r.PostingsByAccount()
		assert.Equal(t, 4, counts["Assets:Brokerage"])
		assert.Equal(t, 1, counts["Expenses:Food"])
	})

	t.Run("Accounts", func(t *testing.T) {
		accounts := r.Accounts(false)
		assert.True(t, containsString(accounts, "Assets:Bank"))
		assert.False(t, containsString(accounts, "Assets:Empty"))
		assert.True(t, containsString(accounts, "Liabilities"))
		assert.False(t, containsString(r.Accounts(true), "Liabilities"))
	})

	t.Run("Sign", func(t *testing.T) {
		assert.Equal(t, 1, r.AccountSign("Assets:Bank"))
		assert.Equal(t, -1, r.AccountSign("Income:Gains"))
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestBalanceTrees(t *testing.T) {
	r, _ := newReport(t)

	t.Run("TrialBalance", func(t *testing.T) {
		var roots []string
		for _, node := range r.TrialBalance() {
			roots = append(roots, node.Account)
		}
		assert.Equal(t, []string{"Assets", "Equity", "Expenses", "Income", "Liabilities"}, roots)
	})

	t.Run("Balances", func(t *testing.T) {
		tree, err := r.Balances("Assets:Brokerage", data.MustDate("2023-02-01"), data.MustDate("2023-03-01"))
		assert.NoError(t, err)
		assert.True(t, tree.BalanceChildren.Get("USD").Equal(d("10")))
	})

	t.Run("ClosingBalances", func(t *testing.T) {
		tree, err := r.ClosingBalances("Equity")
		assert.NoError(t, err)
		assert.True(t, tree.BalanceChildren.Get("USD").Equal(d("19")))
	})

	t.Run("IntervalTotals", func(t *testing.T) {
		totals, err := r.IntervalTotals(context.Background(), dateutil.Month, "Expenses", "Income")
		assert.NoError(t, err)
		assert.Equal(t, 3, len(totals))
		assert.True(t, totals[0].Totals.Get("USD").Equal(d("30")))
		assert.True(t, totals[1].Totals.Get("USD").Equal(d("-10")))
		assert.True(t, totals[2].Totals.Get("USD").Equal(d("-1")))
	})
}

func TestHoldings(t *testing.T) {
	r, _ := newReport(t)
	ctx := context.Background()

	list, err := r.Holdings(ctx, "")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(list))

	byCost, err := r.Holdings(ctx, "cost_currency")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(byCost))
	assert.True(t, byCost[0].MarketValue.Equal(d("-10")))

	_, err = r.Holdings(ctx, "colour")
	assert.Error(t, err)
}

func TestEntryLookups(t *testing.T) {
	r, _ := newReport(t)

	q, ok := r.GetQuery("cash")
	assert.True(t, ok)
	assert.Equal(t, "SELECT account, sum(position)", q.QueryString)
	_, ok = r.GetQuery("missing")
	assert.False(t, ok)

	assert.Equal(t, 1, len(r.Events("")))
	assert.Equal(t, 1, len(r.Events("location")))
	assert.Equal(t, 0, len(r.Events("weather")))

	assert.True(t, r.IsValidDocument("/docs/statement.pdf"))
	assert.False(t, r.IsValidDocument("/docs/other.pdf"))

	pairs := r.CommodityPairs()
	assert.Equal(t, 1, len(pairs))
	assert.Equal(t, "X/USD", pairs[0].String())

	assert.Equal(t, 1, len(r.Prices("X", "USD")))
	_, err := r.Filter(filters.Values{Time: "2023-01"})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(r.Prices("X", "USD")))
}

func TestQuery(t *testing.T) {
	r, _ := newReport(t)

	res, err := r.Query("$[*].type", false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"value"}, res.Columns)
	assert.Equal(t, len(r.AllEntries()), len(res.Rows))

	r, _ = newReport(t, WithQueryEngine(nil))
	_, err = r.Query("$[*].type", false)
	assert.True(t, errors.Is(err, ErrNoQueryEngine))
}

func TestSourceFiles(t *testing.T) {
	fs := &memFS{files: map[string]string{ledgerPath: "entries: []\n"}}
	r, store := newReport(t, WithSourceFS(fs))
	assert.Equal(t, []string{ledgerPath}, r.SourceFiles())

	content, err := r.Source(ledgerPath)
	assert.NoError(t, err)
	assert.Equal(t, "entries: []\n", content)

	t.Run("RejectsOtherFiles", func(t *testing.T) {
		_, err := r.Source("/etc/passwd")
		var serr *SourceFileError
		assert.True(t, errors.As(err, &serr))
		assert.Equal(t, "read", serr.Op)

		err = r.SetSource(context.Background(), "/etc/passwd", "oops")
		assert.True(t, errors.As(err, &serr))
		assert.Equal(t, "write", serr.Op)

		assert.Equal(t, []string{ledgerPath}, fs.reads)
		assert.Equal(t, 0, len(fs.writes))
	})

	t.Run("SetSourceReloads", func(t *testing.T) {
		version := r.Version()
		assert.NoError(t, r.SetSource(context.Background(), ledgerPath, "entries: [{}]\n"))
		assert.Equal(t, "entries: [{}]\n", fs.files[ledgerPath])
		assert.Equal(t, 2, store.loads)
		assert.True(t, r.Version() > version)
	})
}

func TestChanged(t *testing.T) {
	w := &fakeWatcher{}
	r, store := newReport(t, WithWatcher(w))
	assert.Equal(t, []string{ledgerPath}, w.files)

	changed, err := r.Changed(context.Background())
	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, store.loads)

	w.changed = true
	changed, err = r.Changed(context.Background())
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, store.loads)
	assert.Equal(t, uint64(2), r.Version())
}

func TestFavaOptions(t *testing.T) {
	store := &fakeStore{result: brokerageResult(
		data.NewCustom(data.MustDate("2023-01-01"), "fava-option", data.StringValue("interval"), data.StringValue("quarter")),
		data.NewCustom(data.MustDate("2023-01-01"), "fava-option", data.StringValue("show-closed-accounts"), data.StringValue("true")),
		data.NewCustom(data.MustDate("2023-01-01"), "fava-option", data.StringValue("colour"), data.StringValue("blue")),
		data.NewCustom(data.MustDate("2023-01-01"), "fava-sidebar-link", data.StringValue("2023"), data.StringValue("/income_statement/?time=2023")),
		data.NewCustom(data.MustDate("2023-01-01"), "fava-sidebar-link", data.StringValue("broken")),
	)}
	r, err := New(context.Background(), ledgerPath, WithStore(store), WithLogger(quietLogger()))
	assert.NoError(t, err)

	assert.Equal(t, dateutil.Quarter, r.FavaOptions().Interval)
	assert.True(t, r.FavaOptions().ShowClosedAccounts)
	assert.True(t, containsString(r.Accounts(false), "Assets:Empty"))
	assert.Equal(t, []SidebarLink{{Label: "2023", URL: "/income_statement/?time=2023"}}, r.SidebarLinks())

	assert.Equal(t, 2, len(r.Errors()))
	var oerr *OptionError
	assert.True(t, errors.As(r.Errors()[0], &oerr))
	assert.Contains(t, oerr.Message, `unknown fava-option "colour"`)
}

func TestZeroPriceIsReported(t *testing.T) {
	zero := data.NewPrice(data.MustDate("2023-02-20"), "X", data.MustAmount("0 USD"))
	zero.Meta = data.Meta{Filename: ledgerPath, Lineno: 42}
	store := &fakeStore{result: brokerageResult(zero)}
	r, err := New(context.Background(), ledgerPath, WithStore(store), WithLogger(quietLogger()))
	assert.NoError(t, err)

	assert.Equal(t, 1, len(r.Errors()))
	var perr *prices.PriceError
	assert.True(t, errors.As(r.Errors()[0], &perr))
	assert.Equal(t, data.Entry(zero), perr.Entry)
	assert.Contains(t, r.Errors()[0].Error(), ledgerPath+":42:")
	assert.Equal(t, 1, len(r.Prices("X", "USD")))
}

func TestQuantize(t *testing.T) {
	store := &fakeStore{result: brokerageResult()}
	store.result.Options.RenderCommas = true
	store.result.Options.DisplayPrecision = map[string]int32{"X": 3}
	r, err := New(context.Background(), ledgerPath, WithStore(store), WithLogger(quietLogger()))
	assert.NoError(t, err)

	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"1234.5", "USD", "1,234.50"},
		{"1234.5", "JPY", "1,235"},
		{"-1234.5678", "X", "-1,234.568"},
		{"1", "", "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Quantize(d(tt.value), tt.currency))
		})
	}

	store.result.Options.RenderCommas = false
	assert.NoError(t, r.Load(context.Background()))
	assert.Equal(t, "1234.50", r.Quantize(d("1234.5"), "USD"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := newReport(t, WithRegisterer(reg))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.reloads))
	// The unfiltered and the filtered tree.
	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.realizations))

	_, err := r.Filter(filters.Values{Tag: "food"})
	assert.NoError(t, err)
	_, err = r.Filter(filters.Values{Tag: "food"})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.filterApplications))

	_, _, err = r.IntervalBalances(context.Background(), dateutil.Month, "", false)
	assert.NoError(t, err)
	count, err := testutil.GatherAndCount(reg, "beanreport_interval_balances_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConcurrentReadersDuringFilterChanges(t *testing.T) {
	r, _ := newReport(t)
	ctx := context.Background()

	errs := make(chan error, 40)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _, err := r.IntervalBalances(ctx, dateutil.Month, "Assets", j%2 == 0)
				errs <- err
				r.NetWorthAtIntervals(ctx, dateutil.Month)
			}
		}()
	}
	for _, tf := range []string{"2023-01", "2023-02", "", "2023"} {
		_, err := r.Filter(filters.Values{Time: tf})
		assert.NoError(t, err)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, uint64(5), r.Version())
}

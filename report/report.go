// Package report provides the data behind ledger reports.
//
// A Report is a reloadable handle on a loaded ledger. Every reload or filter
// change builds a complete new snapshot and swaps it in atomically, so readers
// never observe a half-applied update. Each swap increments Version; callers
// that cache derived data can compare versions to detect that they need to
// re-fetch.
//
//	r, err := report.New(ctx, "ledger.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := r.Filter(filters.Values{Time: "2024"}); err != nil {
//	    log.Fatal(err)
//	}
//	tree, buckets, err := r.IntervalBalances(ctx, dateutil.Month, "Expenses", false)
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robinvdvleuten/beanreport/budget"
	"github.com/robinvdvleuten/beanreport/data"
	"github.com/robinvdvleuten/beanreport/filters"
	"github.com/robinvdvleuten/beanreport/loader"
	"github.com/robinvdvleuten/beanreport/prices"
	"github.com/robinvdvleuten/beanreport/query"
	"github.com/robinvdvleuten/beanreport/realization"
	"github.com/robinvdvleuten/beanreport/telemetry"
)

// Store loads a ledger. *loader.Loader implements it.
type Store interface {
	Load(ctx context.Context, filename string) (*loader.Result, error)
}

// QueryEngine runs queries against the ledger. *query.Engine implements it.
type QueryEngine interface {
	Run(entries []data.Entry, opts data.Options, query string, numberify bool) (*query.Result, error)
}

// ChangeWatcher reports changes to the ledger files. *watcher.Watcher
// implements it.
type ChangeWatcher interface {
	Update(files, dirs []string)
	Check() bool
}

// SourceFS reads and writes ledger source files.
type SourceFS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Option configures a Report.
type Option func(*Report)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Report) { r.logger = logger }
}

// WithRegisterer registers the report metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Report) { r.registerer = reg }
}

// WithStore replaces the loader used to read the ledger.
func WithStore(store Store) Option {
	return func(r *Report) { r.store = store }
}

// WithWatcher enables reloading from Changed.
func WithWatcher(w ChangeWatcher) Option {
	return func(r *Report) { r.watcher = w }
}

// WithQueryEngine replaces the query engine. A nil engine disables Query.
func WithQueryEngine(engine QueryEngine) Option {
	return func(r *Report) { r.engine = engine }
}

// WithSourceFS replaces the file system used by Source and SetSource.
func WithSourceFS(fs SourceFS) Option {
	return func(r *Report) { r.fs = fs }
}

// WithClock sets the clock relative time filters are resolved against.
func WithClock(now func() time.Time) Option {
	return func(r *Report) { r.now = now }
}

// Report is a reloadable, filterable view of a ledger. It is safe for
// concurrent use.
type Report struct {
	path       string
	store      Store
	engine     QueryEngine
	watcher    ChangeWatcher
	fs         SourceFS
	now        func() time.Time
	logger     *slog.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	// mu serializes writers; readers only load current.
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	version atomic.Uint64
}

// New creates a report for the ledger at path and loads it.
func New(ctx context.Context, path string, opts ...Option) (*Report, error) {
	r := &Report{
		path:   path,
		store:  loader.New(loader.WithFollowIncludes()),
		engine: query.New(),
		fs:     osFS{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if abs, err := filepath.Abs(path); err == nil {
		r.path = abs
	}
	r.metrics = newMetrics(r.registerer)

	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// snapshot is an immutable view of the loaded ledger with filters applied.
type snapshot struct {
	version uint64

	allEntries   []data.Entry
	errors       []error
	options      data.Options
	priceMap     *prices.Map
	budgets      budget.Budgets
	favaOptions  FavaOptions
	sidebarLinks []SidebarLink
	queries      []*data.Query
	allRoot      *realization.Account
	allAccounts  []string
	closed       map[string]bool
	activeYears  []int
	activeTags   []string
	activePayees []string

	filters   filters.State
	entries   []data.Entry
	root      *realization.Account
	dateFirst time.Time
	dateLast  time.Time
}

func (r *Report) snapshot() *snapshot {
	return r.current.Load()
}

// Load (re)reads the ledger and applies the current filters. On failure the
// previous state is kept.
func (r *Report) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer := telemetry.StartTimer(ctx, "report.load "+filepath.Base(r.path))
	defer timer.End()

	res, err := r.store.Load(ctx, r.path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", r.path, err)
	}

	s := &snapshot{
		allEntries:   res.Entries,
		errors:       append([]error(nil), res.Errors...),
		options:      res.Options,
		queries:      data.FilterKind[*data.Query](res.Entries),
		closed:       map[string]bool{},
		activeYears:  data.ActiveYears(res.Entries),
		activeTags:   data.AllTags(res.Entries),
		activePayees: data.AllPayees(res.Entries),
	}
	var priceErrs []error
	s.priceMap, priceErrs = prices.Build(res.Entries)
	s.errors = append(s.errors, priceErrs...)
	for _, c := range data.FilterKind[*data.Close](res.Entries) {
		s.closed[c.Account] = true
	}

	realizeTimer := timer.Child("realization.realize (unfiltered)")
	s.allRoot, err = realization.Realize(res.Entries, s.options.AccountTypes.Roots())
	realizeTimer.End()
	if err != nil {
		return fmt.Errorf("failed to realize %s: %w", r.path, err)
	}
	r.metrics.realizations.Inc()
	s.allAccounts = s.allRoot.Names()

	customs := data.FilterKind[*data.Custom](res.Entries)
	var errs []error
	s.favaOptions, errs = parseFavaOptions(customs)
	s.errors = append(s.errors, errs...)
	s.sidebarLinks, errs = parseSidebarLinks(customs)
	s.errors = append(s.errors, errs...)
	s.budgets, errs = budget.Parse(customs)
	s.errors = append(s.errors, errs...)

	if prev := r.snapshot(); prev != nil {
		s.filters = prev.filters
	}
	if err := r.applyFilters(s); err != nil {
		return err
	}

	if r.watcher != nil {
		r.watcher.Update(res.Files, r.documentDirs(s.options))
	}

	r.swap(s)
	r.metrics.reloads.Inc()
	r.logger.Info("ledger loaded",
		"path", r.path,
		"entries", len(s.allEntries),
		"errors", len(s.errors),
		"version", s.version)
	return nil
}

func (r *Report) documentDirs(opts data.Options) []string {
	dirs := make([]string, 0, len(opts.Documents))
	for _, dir := range opts.Documents {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(r.path), dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// applyFilters fills the filtered part of s from its filter state.
func (r *Report) applyFilters(s *snapshot) error {
	s.entries = s.filters.Apply(s.allEntries, s.options)

	root, err := realization.Realize(s.entries, s.options.AccountTypes.Roots())
	if err != nil {
		return fmt.Errorf("failed to realize filtered entries: %w", err)
	}
	r.metrics.realizations.Inc()
	s.root = root

	s.dateFirst, s.dateLast = time.Time{}, time.Time{}
	if first, last, ok := data.MinMaxDates(s.entries, data.KindTransaction); ok {
		s.dateFirst, s.dateLast = first, last
	}
	if begin, end, ok := s.filters.TimeRange(); ok {
		s.dateFirst, s.dateLast = begin, end.AddDate(0, 0, -1)
	}
	return nil
}

// swap publishes s as the current snapshot. Callers hold mu.
func (r *Report) swap(s *snapshot) {
	s.version = r.version.Add(1)
	r.current.Store(s)
}

// Filter sets all filters at once and reports whether anything changed.
// Derived data is only recomputed on change. A malformed filter returns a
// *filters.FilterParseError and leaves every filter as it was.
func (r *Report) Filter(values filters.Values) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	next, changed, err := cur.filters.SetAll(values, r.now())
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	s := *cur
	s.filters = next
	if err := r.applyFilters(&s); err != nil {
		return false, err
	}
	r.swap(&s)
	r.metrics.filterApplications.Inc()
	r.logger.Debug("filters applied", "entries", len(s.entries), "version", s.version)
	return true, nil
}

// Changed reloads the ledger when the watcher saw a change, and reports
// whether it did.
func (r *Report) Changed(ctx context.Context) (bool, error) {
	if r.watcher == nil || !r.watcher.Check() {
		return false, nil
	}
	r.logger.Debug("ledger changed on disk", "path", r.path)
	return true, r.Load(ctx)
}

// Version identifies the current snapshot. It increases on every reload and
// every filter change.
func (r *Report) Version() uint64 { return r.snapshot().version }

// Path returns the absolute path of the main ledger file.
func (r *Report) Path() string { return r.path }

// Title returns the ledger title.
func (r *Report) Title() string { return r.snapshot().options.Title }

// Options returns the ledger options.
func (r *Report) Options() data.Options { return r.snapshot().options }

// FavaOptions returns the report settings read from the ledger.
func (r *Report) FavaOptions() FavaOptions { return r.snapshot().favaOptions }

// Errors returns the load, budget and option errors of the ledger.
func (r *Report) Errors() []error { return r.snapshot().errors }

// AllEntries returns every entry, ignoring filters.
func (r *Report) AllEntries() []data.Entry { return r.snapshot().allEntries }

// Entries returns the filtered entries.
func (r *Report) Entries() []data.Entry { return r.snapshot().entries }

// FilterValues returns the raw values of the active filters.
func (r *Report) FilterValues() filters.Values { return r.snapshot().filters.Values() }

// DateRange returns the first and last date of the filtered report. With a
// time filter it is the filter's range, otherwise the dates of the first
// and last transaction. ok is false for an empty report.
func (r *Report) DateRange() (first, last time.Time, ok bool) {
	s := r.snapshot()
	return s.dateFirst, s.dateLast, !s.dateFirst.IsZero()
}

// ActiveYears returns the years with entries, ignoring filters.
func (r *Report) ActiveYears() []int { return r.snapshot().activeYears }

// ActiveTags returns every tag in the ledger.
func (r *Report) ActiveTags() []string { return r.snapshot().activeTags }

// ActivePayees returns every payee in the ledger.
func (r *Report) ActivePayees() []string { return r.snapshot().activePayees }

// SidebarLinks returns the links defined with fava-sidebar-link entries.
func (r *Report) SidebarLinks() []SidebarLink { return r.snapshot().sidebarLinks }

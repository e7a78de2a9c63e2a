// Package cli implements the beanreport command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/robinvdvleuten/beanreport/dateutil"
	"github.com/robinvdvleuten/beanreport/filters"
	"github.com/robinvdvleuten/beanreport/output"
	"github.com/robinvdvleuten/beanreport/report"
	"github.com/robinvdvleuten/beanreport/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

func printSuccess(w io.Writer, styles *output.Styles, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Success(successSymbol), message)
}

func printError(w io.Writer, styles *output.Styles, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error(errorSymbol), styles.Error(message))
}

func printInfof(w io.Writer, styles *output.Styles, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Keyword(infoSymbol), fmt.Sprintf(format, args...))
}

// Filters are the report filters shared by all commands.
type Filters struct {
	Account string `help:"Only entries touching this account, its descendants or accounts matching the pattern." group:"Filters"`
	From    string `help:"Only entries matching this expression, e.g. 'payee == \"Bakery\"'." group:"Filters"`
	Payee   string `help:"Only transactions with one of these comma-separated payees." group:"Filters"`
	Tag     string `help:"Only entries with these comma-separated tags; prefix a tag with - to exclude it." group:"Filters"`
	Time    string `help:"Only entries in this period, e.g. 2024, 2024-Q1, month-1 or '2024-01 to 2024-03'." group:"Filters"`
}

// Values converts the flags into filter values.
func (f Filters) Values() filters.Values {
	return filters.Values{Account: f.Account, From: f.From, Payee: f.Payee, Tag: f.Tag, Time: f.Time}
}

// Globals defines global flags available to all commands.
type Globals struct {
	File      string `help:"Ledger export to report on." short:"f" type:"path" env:"BEANREPORT_FILE" required:""`
	Interval  string `help:"Interval of period reports (day, week, month, quarter, year). Defaults to the ledger's fava-option." env:"BEANREPORT_INTERVAL"`
	LogLevel  string `help:"Log level." enum:"debug,info,warn,error" default:"warn" env:"BEANREPORT_LOG_LEVEL"`
	Telemetry bool   `help:"Show timing telemetry for operations."`

	Filters `embed:""`
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// session is a loaded, filtered report plus the output plumbing of one
// command run.
type session struct {
	ctx    context.Context
	report *report.Report
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	styles *output.Styles

	collector telemetry.Collector
	timer     telemetry.Timer
}

type sessionOption func(*sessionConfig)

type sessionConfig struct {
	reportOptions []report.Option
}

func withReportOptions(opts ...report.Option) sessionOption {
	return func(c *sessionConfig) { c.reportOptions = append(c.reportOptions, opts...) }
}

// open loads the ledger and applies the filter flags. The caller must call
// close when done.
func (g *Globals) open(kctx *kong.Context, command string, opts ...sessionOption) (*session, error) {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &session{
		ctx:    context.Background(),
		logger: newLogger(kctx.Stderr, g.LogLevel),
		stdout: kctx.Stdout,
		stderr: kctx.Stderr,
		styles: output.NewStyles(kctx.Stdout),
	}
	if g.Telemetry {
		collector := telemetry.NewTimingCollector()
		s.collector = collector
		s.timer = collector.Start(fmt.Sprintf("%s %s", command, filepath.Base(g.File)))
		s.ctx = telemetry.WithRootTimer(telemetry.WithCollector(s.ctx, collector), s.timer)
	}

	reportOpts := append([]report.Option{report.WithLogger(s.logger)}, cfg.reportOptions...)
	r, err := report.New(s.ctx, g.File, reportOpts...)
	if err != nil {
		s.close()
		return nil, err
	}
	s.report = r

	if _, err := r.Filter(g.Filters.Values()); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// close prints the telemetry tree when enabled.
func (s *session) close() {
	if s.collector == nil {
		return
	}
	s.timer.End()
	_, _ = fmt.Fprintln(s.stderr)
	s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	s.collector = nil
}

// interval resolves the --interval flag, falling back to the ledger's
// fava-option.
func (g *Globals) interval(r *report.Report) (dateutil.Interval, error) {
	if g.Interval == "" {
		return r.FavaOptions().Interval, nil
	}
	return dateutil.ParseInterval(strings.ToLower(g.Interval))
}

// pickAccount prompts for one of accounts. It returns "" without prompting
// when stdin is not a terminal.
func pickAccount(title string, accounts []string) (string, error) {
	if !isTerminal() || len(accounts) == 0 {
		return "", nil
	}

	var account string
	options := []huh.Option[string]{huh.NewOption("All accounts", "")}
	for _, a := range accounts {
		options = append(options, huh.NewOption(a, a))
	}
	err := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&account).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to read account: %w", err)
	}
	return account, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

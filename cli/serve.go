package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/robinvdvleuten/beanreport/report"
	"github.com/robinvdvleuten/beanreport/server"
	"github.com/robinvdvleuten/beanreport/watcher"
)

type ServeCmd struct {
	Port     int           `help:"Port to listen on." default:"8080"`
	Host     string        `help:"Host to bind to." default:"127.0.0.1"`
	ReadOnly bool          `help:"Enable read-only mode (no write operations allowed)." short:"r"`
	Poll     time.Duration `help:"How often to check the ledger files for changes." default:"1s"`
}

// registry collects the report metrics next to the Go runtime and process
// metrics.
func registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger := newLogger(ctx.Stderr, globals.LogLevel)
	w, err := watcher.New(watcher.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	reg := registry()
	s, err := globals.open(ctx, "serve", withReportOptions(
		report.WithRegisterer(reg),
		report.WithWatcher(w),
	))
	if err != nil {
		return err
	}
	defer s.close()

	opts := []server.Option{
		server.WithLogger(s.logger),
		server.WithGatherer(reg),
		server.WithPollInterval(cmd.Poll),
	}
	if cmd.ReadOnly {
		opts = append(opts, server.WithReadOnly())
	}
	srv := server.New(s.report, cmd.Port, opts...)
	srv.Host = cmd.Host

	printInfof(s.stdout, s.styles, "Starting server on %s:%d", srv.Host, srv.Port)
	printInfof(s.stdout, s.styles, "Serving ledger: %s", s.styles.FilePath(s.report.Path()))
	if cmd.ReadOnly {
		printInfof(s.stdout, s.styles, "Server running in READ-ONLY mode")
	}

	runCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(runCtx)
}

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/metrics"
	"github.com/tartampluch/go-natal/internal/server"
	"github.com/tartampluch/go-natal/internal/worker"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: config.CmdServeShort,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}

	cmd.Flags().String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().String(config.FlagBind, config.DefaultBindAddr, config.FlagDescBind)
	cmd.Flags().String(config.FlagConvention, config.DefaultConvention, config.FlagDescConvention)
	addSourceFlags(cmd)

	return cmd
}

// serve runs the HTTP server and the sync worker until ctx is done or either fails.
func (c *cli) serve(ctx context.Context) error {
	s := c.settings

	cfg, err := worker.SyncConfigFrom(s)
	if err != nil {
		return err
	}
	gen, err := newGenerator()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(reg)

	limiter := server.NewRateLimiter(s.RateLimitPerMin, s.RateLimitBurst, rec)
	defer limiter.Stop()

	var w *worker.Worker
	srv := server.NewCalendarServer(server.Options{
		BindAddr:   s.BindAddr,
		Port:       s.ServerPort,
		Convention: cfg.Convention,
		Metrics:    rec,
		Gatherer:   reg,
		Limiter:    limiter,
		Syncer:     server.SyncerFunc(func() { w.Trigger() }),
	})

	w = worker.New(worker.Options{
		Runner:    gen,
		Publisher: srv,
		Metrics:   rec,
		Config:    cfg,
		Interval:  time.Duration(s.RefreshMin) * time.Minute,
		WatchPath: worker.WatchPathFor(s),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return w.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

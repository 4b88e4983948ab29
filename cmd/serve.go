package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
	"github.com/mirrorfeed/mirrorfeed/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs crawls on a schedule and serves the snapshot over HTTP",
		Long: `Runs the crawl on the configured cron schedule and exposes /feed.json,
/healthz and /metrics on the configured listen address. An initial crawl
starts immediately on launch.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := func() {
		// Reload followers each run so edits apply without a restart.
		followers, err := feed.LoadFollowers(rt.cfg.Crawler.FollowersPath)
		if err != nil {
			rt.logger.Error("Skipping scheduled run", zap.Error(err))
			return
		}
		if _, err := rt.runner.RunOnce(ctx, followers); err != nil {
			rt.logger.Error("Scheduled run failed", zap.Error(err))
		}
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(rt.cfg.Server.Schedule, job); err != nil {
		return fmt.Errorf("bad schedule %q: %w", rt.cfg.Server.Schedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go job()

	srv := server.New(rt.cfg.Store.SnapshotPath, rt.logger)
	return srv.ListenAndServe(ctx, rt.cfg.Server.ListenAddr)
}

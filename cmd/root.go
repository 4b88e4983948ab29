// Package cmd defines and implements the CLI commands for the
// mirrorfeed executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/config"
	"github.com/mirrorfeed/mirrorfeed/internal/crawl"
	"github.com/mirrorfeed/mirrorfeed/internal/fetch"
	"github.com/mirrorfeed/mirrorfeed/internal/logging"
	"github.com/mirrorfeed/mirrorfeed/internal/metrics"
	"github.com/mirrorfeed/mirrorfeed/internal/store"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrorfeed",
		Short: "Aggregates account timelines from Nitter mirror instances into a JSON feed",
		Long: `mirrorfeed crawls a configured list of accounts through public Nitter
mirror instances, extracts structured tweet records from the rendered
markup, and merges them into a bounded, deduplicated snapshot that a
static frontend can serve directly.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus MIRRORFEED_* env)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime bundles the services a command needs, built from configuration.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	runner *crawl.Runner
}

func buildRuntime() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	client := fetch.NewClient(fetch.Config{
		UserAgent:   cfg.HTTP.UserAgent,
		Timeout:     cfg.HTTP.Timeout,
		MinInterval: cfg.HTTP.MinRequestInterval,
	}, logger)

	orch := crawl.NewOrchestrator(client, crawl.Config{
		Instances:    cfg.Crawler.Instances,
		MaxPages:     cfg.Crawler.MaxPagesPerUser,
		PageDelay:    cfg.Crawler.PageDelay,
		AccountDelay: cfg.Crawler.AccountDelay,
	}, logger)

	snapshots := store.New(cfg.Store.SnapshotPath, logger)
	runner := crawl.NewRunner(orch, snapshots, cfg.Crawler.RetentionLimit, logger)

	return &runtime{cfg: cfg, logger: logger, runner: runner}, nil
}

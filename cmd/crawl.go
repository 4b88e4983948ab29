package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl and writes the merged snapshot",
		Long: `Crawls every configured follower once, in order, merges the fresh
tweets with the previous snapshot and writes the result. Exits non-zero
when no account succeeds or when no followers are configured.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	followers, err := feed.LoadFollowers(rt.cfg.Crawler.FollowersPath)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}

	if _, err := rt.runner.RunOnce(cmd.Context(), followers); err != nil {
		rt.logger.Error("Crawl run failed", zap.Error(err))
		return err
	}
	return nil
}

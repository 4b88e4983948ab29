package crawl

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
	"github.com/mirrorfeed/mirrorfeed/internal/metrics"
)

// Report aggregates one run's crawl results before merging.
type Report struct {
	Tweets       []feed.Tweet
	SuccessUsers int
	FailedUsers  int
}

// Orchestrator iterates the configured account list strictly in order,
// one account at a time, with a fixed delay between accounts. The
// sequential pacing is deliberate: parallel requests trip the mirrors'
// abuse defenses.
type Orchestrator struct {
	accounts *AccountCrawler
	cfg      Config
	pause    sleeper
	logger   *zap.Logger
}

// NewOrchestrator constructs an orchestrator over the given fetcher.
func NewOrchestrator(fetcher PageFetcher, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		accounts: NewAccountCrawler(fetcher, cfg, logger),
		cfg:      cfg,
		pause:    timerSleeper{},
		logger:   logger,
	}
}

// Run crawls every follower in configured order and aggregates the fresh
// tweets. An account succeeds when it yields at least one tweet.
func (o *Orchestrator) Run(ctx context.Context, followers []feed.Follower) Report {
	log := o.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("Starting crawl run",
		zap.Int("accounts", len(followers)),
		zap.Strings("instances", o.cfg.Instances),
	)

	var report Report
	for _, follower := range followers {
		tweets := o.accounts.Crawl(ctx, follower.Username)
		if len(tweets) > 0 {
			report.Tweets = append(report.Tweets, tweets...)
			report.SuccessUsers++
		} else {
			report.FailedUsers++
		}
		metrics.RecordAccount(len(tweets) > 0)

		o.pause.Pause(ctx, o.cfg.AccountDelay)
	}

	log.Info("Crawl run finished",
		zap.Int("success_users", report.SuccessUsers),
		zap.Int("failed_users", report.FailedUsers),
		zap.Int("fresh_tweets", len(report.Tweets)),
	)
	return report
}

// Package crawl drives the per-account crawl loop (instance failover
// plus bounded pagination) and the run-level orchestration across the
// configured account list. Requests are strictly sequential and paced;
// the mirrors throttle anything that looks like a burst.
package crawl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
	"github.com/mirrorfeed/mirrorfeed/internal/fetch"
	"github.com/mirrorfeed/mirrorfeed/internal/metrics"
	"github.com/mirrorfeed/mirrorfeed/internal/scrape"
)

// PageFetcher fetches one mirror page and classifies the result.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) fetch.Result
}

// Config holds the knobs for the crawl loop.
type Config struct {
	// Instances is the ordered candidate mirror host list.
	Instances []string
	// MaxPages bounds pagination per account.
	MaxPages int
	// PageDelay is the fixed wait before fetching each page after the first.
	PageDelay time.Duration
	// AccountDelay is the fixed wait applied between accounts.
	AccountDelay time.Duration
}

// AccountCrawler fetches one account's recent tweets from the first
// mirror instance that responds with content.
type AccountCrawler struct {
	fetcher PageFetcher
	cfg     Config
	pause   sleeper
	logger  *zap.Logger
}

// NewAccountCrawler constructs a crawler over the given fetcher.
func NewAccountCrawler(fetcher PageFetcher, cfg Config, logger *zap.Logger) *AccountCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountCrawler{
		fetcher: fetcher,
		cfg:     cfg,
		pause:   timerSleeper{},
		logger:  logger,
	}
}

// Crawl walks the candidate instance list until one serves the account's
// first page, then paginates on that instance alone. The first Ok fixes
// the working instance for the rest of the account's run; a later page
// failure ends pagination without re-selecting. Returns the deduplicated
// tweets collected for the account, possibly none.
func (c *AccountCrawler) Crawl(ctx context.Context, username string) []feed.Tweet {
	log := c.logger.With(zap.String("account", username))

	for _, instance := range c.cfg.Instances {
		log.Info("Fetching first page", zap.String("instance", instance))
		res := c.fetcher.FetchPage(ctx, "https://"+instance+"/"+username)
		if !res.OK() {
			log.Warn("Instance failed",
				zap.String("instance", instance),
				zap.String("outcome", string(res.Outcome)),
				zap.Error(res.Err),
			)
			continue
		}
		return c.paginate(ctx, instance, username, res.HTML, log)
	}

	log.Warn("All instances exhausted", zap.Int("instances", len(c.cfg.Instances)))
	return nil
}

// paginate reads successive pages from the working instance, collecting
// tweets whose identity has not been seen this crawl. Pagination stops
// when the page budget runs out, a fetch fails, a non-empty page yields
// nothing new (previously-seen history reached), or no continuation link
// resolves.
func (c *AccountCrawler) paginate(ctx context.Context, instance, username, firstPage string, log *zap.Logger) []feed.Tweet {
	log = log.With(zap.String("instance", instance))

	var collected []feed.Tweet
	seen := make(map[string]struct{})

	markup := firstPage
	for page := 1; ; page++ {
		tweets := scrape.Parse(markup, instance, username, log)
		metrics.RecordTweetsParsed(len(tweets))

		fresh := 0
		for _, t := range tweets {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			collected = append(collected, t)
			fresh++
		}
		log.Info("Parsed page",
			zap.Int("page", page),
			zap.Int("tweets", len(tweets)),
			zap.Int("new", fresh),
			zap.Int("total", len(collected)),
		)

		if page > 1 && fresh == 0 && len(tweets) > 0 {
			log.Info("No new tweets, reached known history", zap.Int("page", page))
			break
		}
		if page >= c.cfg.MaxPages {
			log.Info("Page budget exhausted", zap.Int("pages", page))
			break
		}

		next, ok := scrape.NextPageURL(markup, username, instance)
		if !ok {
			log.Info("No continuation link", zap.Int("page", page))
			break
		}

		c.pause.Pause(ctx, c.cfg.PageDelay)
		res := c.fetcher.FetchPage(ctx, next)
		if !res.OK() {
			log.Warn("Page fetch failed, ending pagination",
				zap.Int("page", page+1),
				zap.String("outcome", string(res.Outcome)),
				zap.Error(res.Err),
			)
			break
		}
		markup = res.HTML
	}

	return collected
}

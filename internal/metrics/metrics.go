// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal         *prometheus.CounterVec
	tweetsParsedTotal  prometheus.Counter
	accountsTotal      *prometheus.CounterVec
	runDurationSeconds prometheus.Histogram
	snapshotTweets     prometheus.Gauge

	once sync.Once
)

// Init registers the collectors on the default registry. It is safe to
// call multiple times; recording functions are no-ops before Init.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorfeed_pages_total",
				Help: "Total mirror pages fetched, labeled by classified outcome.",
			},
			[]string{"outcome"},
		)

		tweetsParsedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mirrorfeed_tweets_parsed_total",
				Help: "Total tweet records extracted from fetched pages.",
			},
		)

		accountsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorfeed_accounts_total",
				Help: "Crawled accounts, labeled by result (success or failed).",
			},
			[]string{"result"},
		)

		runDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mirrorfeed_run_duration_seconds",
				Help:    "Histogram of full crawl run durations.",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		)

		snapshotTweets = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mirrorfeed_snapshot_tweets",
				Help: "Number of tweets retained in the current snapshot.",
			},
		)
	})
}

// RecordPage counts one fetched page by outcome.
func RecordPage(outcome string) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(outcome).Inc()
}

// RecordTweetsParsed counts tweet records extracted from a page.
func RecordTweetsParsed(n int) {
	if tweetsParsedTotal == nil || n <= 0 {
		return
	}
	tweetsParsedTotal.Add(float64(n))
}

// RecordAccount counts one crawled account by result.
func RecordAccount(success bool) {
	if accountsTotal == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	accountsTotal.WithLabelValues(result).Inc()
}

// ObserveRun records the duration of a full crawl run.
func ObserveRun(d time.Duration) {
	if runDurationSeconds == nil {
		return
	}
	runDurationSeconds.Observe(d.Seconds())
}

// SetSnapshotSize records the retained tweet count after a merge.
func SetSnapshotSize(n int) {
	if snapshotTweets == nil {
		return
	}
	snapshotTweets.Set(float64(n))
}

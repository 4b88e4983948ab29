package crawl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
	"github.com/mirrorfeed/mirrorfeed/internal/metrics"
	"github.com/mirrorfeed/mirrorfeed/internal/store"
)

// ErrAllAccountsFailed signals that the run completed but no account
// yielded any tweets. The snapshot is still written; only the exit
// status reflects the failure.
var ErrAllAccountsFailed = errors.New("every configured account failed")

// Runner executes one complete run: crawl, merge with the previous
// snapshot, persist.
type Runner struct {
	orch      *Orchestrator
	snapshots *store.Store
	limit     int
	logger    *zap.Logger
	now       func() time.Time
}

// NewRunner wires an orchestrator to the snapshot store. limit caps
// retention; zero means the default.
func NewRunner(orch *Orchestrator, snapshots *store.Store, limit int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		orch:      orch,
		snapshots: snapshots,
		limit:     limit,
		logger:    logger,
		now:       time.Now,
	}
}

// RunOnce performs a full crawl over followers and writes the merged
// snapshot. An empty follower list aborts before any network activity.
func (r *Runner) RunOnce(ctx context.Context, followers []feed.Follower) (feed.Snapshot, error) {
	if len(followers) == 0 {
		return feed.Snapshot{}, feed.ErrNoFollowers
	}

	start := r.now()
	previous := r.snapshots.Load()
	report := r.orch.Run(ctx, followers)

	snap := store.Merge(store.MergeInput{
		Previous:     previous,
		Fresh:        report.Tweets,
		Followers:    followers,
		SuccessUsers: report.SuccessUsers,
		FailedUsers:  report.FailedUsers,
		Now:          r.now(),
		Limit:        r.limit,
	})
	if err := r.snapshots.Save(snap); err != nil {
		return snap, err
	}

	metrics.ObserveRun(r.now().Sub(start))
	metrics.SetSnapshotSize(len(snap.Tweets))
	r.logger.Info("Snapshot written",
		zap.String("path", r.snapshots.Path()),
		zap.Int("total", snap.Stats.Total),
		zap.Int("new_fetched", snap.Stats.NewFetched),
		zap.Int("success_users", snap.Stats.SuccessUsers),
		zap.Int("failed_users", snap.Stats.FailedUsers),
	)

	if report.SuccessUsers == 0 {
		return snap, ErrAllAccountsFailed
	}
	return snap, nil
}

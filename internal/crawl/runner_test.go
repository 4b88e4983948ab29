package crawl

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
	"github.com/mirrorfeed/mirrorfeed/internal/fetch"
	"github.com/mirrorfeed/mirrorfeed/internal/store"
)

func TestRunOnceRequiresFollowers(t *testing.T) {
	runner := NewRunner(nil, nil, 0, nil)

	_, err := runner.RunOnce(context.Background(), nil)
	require.ErrorIs(t, err, feed.ErrNoFollowers, "an empty account list must abort before any network activity")
}

func TestRunOnceWritesSnapshotAndReportsTotalFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Result{
		"https://a.test/alice": {Outcome: fetch.OutcomeNetwork, Err: errors.New("refused")},
	}}
	orch, _ := newTestOrchestrator(fetcher, Config{Instances: []string{"a.test"}, MaxPages: 5})
	snapshots := store.New(filepath.Join(t.TempDir(), "tweets.json"), nil)
	runner := NewRunner(orch, snapshots, 0, nil)

	snap, err := runner.RunOnce(context.Background(), []feed.Follower{{Username: "alice"}})

	require.ErrorIs(t, err, ErrAllAccountsFailed)
	require.Equal(t, 0, snap.Stats.SuccessUsers)
	require.Equal(t, 1, snap.Stats.FailedUsers)

	// The snapshot is written even when every account failed; only the
	// exit status reflects the failure.
	reloaded := snapshots.Load()
	require.Equal(t, snap.Stats, reloaded.Stats)
}

func TestRunOnceMergesIntoPreviousSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Result{
		"https://a.test/alice": okPage("alice", []string{"10", "11"}, ""),
	}}
	orch, _ := newTestOrchestrator(fetcher, Config{Instances: []string{"a.test"}, MaxPages: 5})
	snapshots := store.New(filepath.Join(t.TempDir(), "tweets.json"), nil)
	runner := NewRunner(orch, snapshots, 0, nil)

	followers := []feed.Follower{{Username: "alice"}}

	first, err := runner.RunOnce(context.Background(), followers)
	require.NoError(t, err)
	require.Equal(t, 2, first.Stats.Total)

	second, err := runner.RunOnce(context.Background(), followers)
	require.NoError(t, err)
	require.Equal(t, 2, second.Stats.Total, "re-fetched tweets dedup by identity across runs")
	require.Equal(t, 1, second.Stats.SuccessUsers)
}

// Package store persists the feed snapshot and implements the
// merge/dedup/retention policy applied across runs.
package store

import (
	"sort"
	"strings"
	"time"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
)

// DefaultRetentionLimit caps the retained tweet sequence.
const DefaultRetentionLimit = 500

// MergeInput carries everything the merge step consumes.
type MergeInput struct {
	Previous     feed.Snapshot
	Fresh        []feed.Tweet
	Followers    []feed.Follower
	SuccessUsers int
	FailedUsers  int
	Now          time.Time
	// Limit overrides DefaultRetentionLimit when positive.
	Limit int
}

// Merge combines freshly fetched tweets with the previous snapshot.
// Previously stored tweets survive only while their author is still
// configured; fresh tweets overwrite stored ones on identity collision.
// The result is ordered by publish time descending and truncated to the
// retention limit.
func Merge(in MergeInput) feed.Snapshot {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultRetentionLimit
	}

	allowed := feed.UsernameSet(in.Followers)
	byID := make(map[string]feed.Tweet, len(in.Previous.Tweets)+len(in.Fresh))

	for _, t := range in.Previous.Tweets {
		if _, ok := allowed[strings.ToLower(t.Username)]; !ok {
			continue
		}
		byID[t.ID] = t
	}
	for _, t := range in.Fresh {
		byID[t.ID] = t
	}

	tweets := make([]feed.Tweet, 0, len(byID))
	for _, t := range byID {
		tweets = append(tweets, t)
	}
	sort.Slice(tweets, func(i, j int) bool {
		if !tweets[i].PublishedAt.Equal(tweets[j].PublishedAt) {
			return tweets[i].PublishedAt.After(tweets[j].PublishedAt)
		}
		// Deterministic order for identical timestamps.
		return tweets[i].ID > tweets[j].ID
	})
	if len(tweets) > limit {
		tweets = tweets[:limit]
	}

	return feed.Snapshot{
		LastUpdated: in.Now.UTC(),
		Followers:   in.Followers,
		Stats: feed.RunStats{
			Total:        len(tweets),
			NewFetched:   len(in.Fresh),
			SuccessUsers: in.SuccessUsers,
			FailedUsers:  in.FailedUsers,
		},
		Tweets: tweets,
	}
}

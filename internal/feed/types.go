// Package feed defines the data model shared across the crawl pipeline:
// the tweet records extracted from mirror pages, the configured follower
// list, and the persisted snapshot they are merged into.
package feed

import (
	"strings"
	"time"
)

// MediaType tags an attachment as an image, a video, or an animated GIF.
type MediaType string

// Supported media types.
const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaGIF   MediaType = "gif"
)

// Media is a single attachment on a tweet. URL may be empty for videos,
// where the mirror only exposes a poster thumbnail.
type Media struct {
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Alt       string    `json:"alt,omitempty"`
}

// Retweet marks that the crawled account resurfaced someone else's tweet.
// Username is always the crawled account; DisplayName is whatever name the
// mirror printed in the "X retweeted" header.
type Retweet struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Quote is a tweet embedded inside another tweet. Quotes do not nest.
type Quote struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Content     string  `json:"content"`
	Link        string  `json:"link"`
	Media       []Media `json:"media,omitempty"`
}

// Stats carries the engagement counters shown under a tweet.
type Stats struct {
	Replies  int `json:"replies"`
	Retweets int `json:"retweets"`
	Likes    int `json:"likes"`
}

// Tweet is the unit of content. ID is unique across the snapshot; when two
// tweets share an ID the later-observed one wins.
type Tweet struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	PublishedAt time.Time `json:"publishedAt"`
	Link        string    `json:"link"`
	Media       []Media   `json:"media,omitempty"`
	Retweet     *Retweet  `json:"retweet,omitempty"`
	Quote       *Quote    `json:"quote,omitempty"`
	Stats       Stats     `json:"stats"`
}

// Follower is one configured account. Usernames compare case-insensitively.
type Follower struct {
	Username string `json:"username"`
	Group    string `json:"group,omitempty"`
}

// RunStats summarizes one crawl run.
type RunStats struct {
	Total        int `json:"total"`
	NewFetched   int `json:"newFetched"`
	SuccessUsers int `json:"successUsers"`
	FailedUsers  int `json:"failedUsers"`
}

// Snapshot is the persisted aggregate written at the end of each run.
// Tweets are ordered by PublishedAt descending and capped by the
// retention limit.
type Snapshot struct {
	LastUpdated time.Time  `json:"lastUpdated"`
	Followers   []Follower `json:"followers"`
	Stats       RunStats   `json:"stats"`
	Tweets      []Tweet    `json:"tweets"`
}

// UsernameSet returns the lowercased usernames of followers as a set.
func UsernameSet(followers []Follower) map[string]struct{} {
	set := make(map[string]struct{}, len(followers))
	for _, f := range followers {
		name := strings.ToLower(strings.TrimSpace(f.Username))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

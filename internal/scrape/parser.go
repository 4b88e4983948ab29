// Package scrape extracts structured tweet records from mirror page
// markup. Parsing is pure: no I/O, no retries, and a malformed timeline
// item never aborts extraction of its neighbors.
package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mirrorfeed/mirrorfeed/internal/feed"
)

// Timestamp layouts tried in order. The mirror renders dates like
// "Dec 7, 2025 · 5:13 AM UTC"; the fallbacks cover older instance
// versions, and an unparsable date degrades to time.Now rather than
// failing the whole item.
var timeLayouts = []string{
	"Jan 2, 2006 · 3:04 PM MST",
	time.RFC3339,
	"Jan 2, 2006",
}

var statusIDPattern = regexp.MustCompile(`/status/(\d+)`)

var retweetedByPattern = regexp.MustCompile(`(?i)^(.+?)\s+retweeted`)

var (
	errNoStatusLink = errors.New("no status permalink")
	errNoUsername   = errors.New("no author username")
)

// Parse extracts the ordered tweet records contained in one page of
// mirror markup. instanceHost anchors relative proxy URLs; account is
// the username being crawled, used for retweet attribution. Items that
// fail extraction are skipped and logged, never propagated.
func Parse(markup, instanceHost, account string, logger *zap.Logger) []feed.Tweet {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Warn("Failed to parse page markup", zap.Error(err))
		return nil
	}

	var tweets []feed.Tweet
	doc.Find("div.timeline-item").Each(func(i int, item *goquery.Selection) {
		tweet, err := extractTweet(item, instanceHost, account)
		if err != nil {
			logger.Debug("Skipping timeline item",
				zap.Int("index", i),
				zap.String("account", account),
				zap.Error(err),
			)
			return
		}
		tweets = append(tweets, tweet)
	})
	return tweets
}

func extractTweet(item *goquery.Selection, instanceHost, account string) (feed.Tweet, error) {
	id := statusID(item)
	if id == "" {
		return feed.Tweet{}, errNoStatusLink
	}

	username := handleText(item.Find("a.username").First())
	if username == "" {
		return feed.Tweet{}, errNoUsername
	}

	displayName := fullName(item.Find("a.fullname").First(), username)
	avatar := proxyURL(instanceHost, item.Find("img.avatar").First().AttrOr("src", ""))
	publishedAt := parseTweetTime(item.Find("span.tweet-date a").First().AttrOr("title", ""))

	content := item.Find("div.tweet-content").First()
	contentHTML, err := content.Html()
	if err != nil {
		return feed.Tweet{}, fmt.Errorf("render content: %w", err)
	}

	tweet := feed.Tweet{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		Avatar:      avatar,
		Content:     renderText(content),
		ContentHTML: contentHTML,
		PublishedAt: publishedAt,
		Link:        fmt.Sprintf("https://x.com/%s/status/%s", username, id),
		Media:       extractMedia(item, instanceHost, true),
		Retweet:     extractRetweet(item, account),
		Stats:       extractStats(item),
	}

	if quoteBlock := item.Find("div.quote").First(); quoteBlock.Length() > 0 {
		quote, err := extractQuote(quoteBlock, instanceHost)
		if err != nil {
			return feed.Tweet{}, fmt.Errorf("extract quote: %w", err)
		}
		tweet.Quote = quote
	}

	return tweet, nil
}

// statusID pulls the numeric tweet identity out of the item's permalink.
// The outer permalink precedes any quote link in document order, so the
// first match belongs to the item itself.
func statusID(scope *goquery.Selection) string {
	id := ""
	scope.Find("a[href*='/status/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if m := statusIDPattern.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id
}

func handleText(sel *goquery.Selection) string {
	return strings.TrimPrefix(strings.TrimSpace(sel.Text()), "@")
}

func fullName(sel *goquery.Selection, fallback string) string {
	if title := strings.TrimSpace(sel.AttrOr("title", "")); title != "" {
		return title
	}
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}
	return fallback
}

func parseTweetTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// renderText flattens a content block into plain text: line breaks become
// newlines, remaining tags are dropped, and entities decode via the HTML
// parser. The selection is mutated, so capture its raw HTML first.
func renderText(sel *goquery.Selection) string {
	sel.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(sel.Text())
}

// extractMedia collects the attachments in scope. With excludeQuoted set,
// anything inside a nested quote block is ignored so a quoted tweet's
// media is never attributed to the outer tweet.
func extractMedia(scope *goquery.Selection, instanceHost string, excludeQuoted bool) []feed.Media {
	quoted := func(s *goquery.Selection) bool {
		return excludeQuoted && s.Closest("div.quote").Length() > 0
	}

	var media []feed.Media

	scope.Find("a.still-image").Each(func(_ int, a *goquery.Selection) {
		if quoted(a) {
			return
		}
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}
		media = append(media, feed.Media{
			Type: feed.MediaImage,
			URL:  proxyURL(instanceHost, href),
			Alt:  a.Find("img").First().AttrOr("alt", ""),
		})
	})

	// The mirror exposes no direct video URL, only a poster frame.
	scope.Find("div.gallery-video, div.video-container").EachWithBreak(func(_ int, v *goquery.Selection) bool {
		if quoted(v) {
			return true
		}
		poster := v.Find("[poster]").First().AttrOr("poster", v.AttrOr("poster", ""))
		if poster == "" {
			return true
		}
		media = append(media, feed.Media{
			Type:      feed.MediaVideo,
			URL:       "",
			Thumbnail: proxyURL(instanceHost, poster),
		})
		return false
	})

	scope.Find("div.gallery-gif").Each(func(_ int, g *goquery.Selection) {
		if quoted(g) {
			return
		}
		src := g.Find("source[src]").First().AttrOr("src", "")
		if src == "" {
			return
		}
		media = append(media, feed.Media{
			Type:      feed.MediaGIF,
			URL:       proxyURL(instanceHost, src),
			Thumbnail: proxyURL(instanceHost, g.Find("video").First().AttrOr("poster", "")),
		})
	})

	return media
}

func extractStats(item *goquery.Selection) feed.Stats {
	var stats feed.Stats
	item.Find(".tweet-stats .tweet-stat").Each(func(_ int, stat *goquery.Selection) {
		markup, err := stat.Html()
		if err != nil {
			return
		}
		count := ParseCount(stat.Text())
		switch {
		case strings.Contains(markup, "comment"):
			stats.Replies = count
		case strings.Contains(markup, "retweet"):
			stats.Retweets = count
		case strings.Contains(markup, "heart"):
			stats.Likes = count
		}
	})
	return stats
}

// extractRetweet reads the "X retweeted" header. The mirror never exposes
// the resurfacing account's handle there, only a display name, so the
// annotation's username is always the crawled account.
func extractRetweet(item *goquery.Selection, account string) *feed.Retweet {
	header := item.Find("div.retweet-header").First()
	if header.Length() == 0 {
		return nil
	}
	m := retweetedByPattern.FindStringSubmatch(strings.TrimSpace(header.Text()))
	if m == nil {
		return nil
	}
	return &feed.Retweet{
		Username:    account,
		DisplayName: strings.TrimSpace(m[1]),
	}
}

func extractQuote(quoteBlock *goquery.Selection, instanceHost string) (*feed.Quote, error) {
	username := handleText(quoteBlock.Find("a.username").First())
	if username == "" {
		return nil, errNoUsername
	}
	displayName := fullName(quoteBlock.Find("a.fullname").First(), username)

	id := ""
	if m := statusIDPattern.FindStringSubmatch(quoteBlock.Find("a.quote-link").First().AttrOr("href", "")); m != nil {
		id = m[1]
	}
	link := "https://x.com/" + username
	if id != "" {
		link = fmt.Sprintf("https://x.com/%s/status/%s", username, id)
	}

	return &feed.Quote{
		Username:    username,
		DisplayName: displayName,
		Content:     renderText(quoteBlock.Find("div.quote-text").First()),
		Link:        link,
		Media:       extractMedia(quoteBlock.Find("div.quote-media-container"), instanceHost, false),
	}, nil
}

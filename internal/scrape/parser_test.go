package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testInstance = "nitter.test"

const tweetPage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/1001#m"></a>
  <div class="tweet-body">
    <div class="tweet-header">
      <a class="tweet-avatar" href="/alice"><img class="avatar round" src="/pic/pbs.twimg.com%2Fprofile.jpg"></a>
      <div class="fullname-and-username">
        <a class="fullname" href="/alice" title="Alice Doe">Alice Doe</a>
        <a class="username" href="/alice" title="@alice">@alice</a>
      </div>
      <span class="tweet-date"><a href="/alice/status/1001#m" title="Dec 7, 2025 · 5:13 AM UTC">Dec 7</a></span>
    </div>
    <div class="tweet-content media-body" dir="auto">Hello &amp; welcome<br>second line <a href="https://t.co/x">link</a></div>
    <div class="attachments">
      <div class="attachment image">
        <a class="still-image" href="/pic/media%2Fimg1.jpg" target="_blank"><img alt="a photo" src="/pic/media%2Fimg1.jpg"></a>
      </div>
    </div>
    <div class="tweet-stats">
      <span class="tweet-stat"><div class="icon-container"><span class="icon-comment"></span> 12</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-retweet"></span> 1.2K</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-heart"></span> 3,456</div></span>
    </div>
  </div>
</div>
</div></body></html>`

func TestParseExtractsTweetFields(t *testing.T) {
	tweets := Parse(tweetPage, testInstance, "alice", nil)
	require.Len(t, tweets, 1)

	tw := tweets[0]
	require.Equal(t, "1001", tw.ID)
	require.Equal(t, "alice", tw.Username)
	require.Equal(t, "Alice Doe", tw.DisplayName)
	require.Equal(t, "https://nitter.test/pic/pbs.twimg.com%2Fprofile.jpg", tw.Avatar)
	require.Equal(t, "https://x.com/alice/status/1001", tw.Link)
	require.Equal(t, time.Date(2025, time.December, 7, 5, 13, 0, 0, time.UTC), tw.PublishedAt)
	require.Equal(t, "Hello & welcome\nsecond line link", tw.Content)
	require.Contains(t, tw.ContentHTML, "Hello")
	require.Contains(t, tw.ContentHTML, "<a href=")

	require.Len(t, tw.Media, 1)
	require.Equal(t, "image", string(tw.Media[0].Type))
	require.Equal(t, "https://nitter.test/pic/media%2Fimg1.jpg", tw.Media[0].URL)
	require.Equal(t, "a photo", tw.Media[0].Alt)

	require.Equal(t, 12, tw.Stats.Replies)
	require.Equal(t, 1200, tw.Stats.Retweets)
	require.Equal(t, 3456, tw.Stats.Likes)

	require.Nil(t, tw.Retweet)
	require.Nil(t, tw.Quote)
}

const mixedPage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item unavailable">
  <div class="tweet-content">this tweet is unavailable</div>
</div>
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/2001#m"></a>
  <a class="username" href="/alice">@alice</a>
  <span class="tweet-date"><a title="Dec 6, 2025 · 1:00 PM UTC">Dec 6</a></span>
  <div class="tweet-content">first</div>
</div>
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/2002#m"></a>
  <a class="username" href="/alice">@alice</a>
  <span class="tweet-date"><a title="Dec 5, 2025 · 1:00 PM UTC">Dec 5</a></span>
  <div class="tweet-content">second</div>
</div>
</div></body></html>`

func TestParseSkipsMalformedItemsInIsolation(t *testing.T) {
	tweets := Parse(mixedPage, testInstance, "alice", nil)
	require.Len(t, tweets, 2, "the malformed item must be skipped without dropping its neighbors")
	require.Equal(t, "2001", tweets[0].ID)
	require.Equal(t, "2002", tweets[1].ID)
}

const retweetPage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item ">
  <div class="retweet-header"><span><div class="icon-container"><span class="icon-retweet"></span></div> Alice Doe retweeted</span></div>
  <a class="tweet-link" href="/bob/status/3001#m"></a>
  <div class="fullname-and-username">
    <a class="fullname" href="/bob" title="Bob">Bob</a>
    <a class="username" href="/bob">@bob</a>
  </div>
  <span class="tweet-date"><a title="Dec 4, 2025 · 9:00 AM UTC">Dec 4</a></span>
  <div class="tweet-content">resurfaced content</div>
</div>
</div></body></html>`

func TestParseRetweetAttributesCrawledAccount(t *testing.T) {
	tweets := Parse(retweetPage, testInstance, "alice", nil)
	require.Len(t, tweets, 1)

	tw := tweets[0]
	require.Equal(t, "bob", tw.Username, "the item itself belongs to the original author")
	require.NotNil(t, tw.Retweet)
	require.Equal(t, "alice", tw.Retweet.Username, "annotation username is always the crawled account")
	require.Equal(t, "Alice Doe", tw.Retweet.DisplayName)
}

const quotePage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/4001#m"></a>
  <div class="fullname-and-username">
    <a class="fullname" href="/alice" title="Alice Doe">Alice Doe</a>
    <a class="username" href="/alice">@alice</a>
  </div>
  <span class="tweet-date"><a title="Dec 3, 2025 · 8:30 PM UTC">Dec 3</a></span>
  <div class="tweet-content">my take on this</div>
  <div class="attachments">
    <div class="attachment image">
      <a class="still-image" href="/pic/media%2Fouter.jpg"><img src="/pic/media%2Fouter.jpg"></a>
    </div>
  </div>
  <div class="quote quote-big">
    <a class="quote-link" href="/carol/status/4999#m"></a>
    <div class="tweet-name-row">
      <div class="fullname-and-username">
        <a class="fullname" href="/carol" title="Carol">Carol</a>
        <a class="username" href="/carol">@carol</a>
      </div>
    </div>
    <div class="quote-text" dir="auto">Quoted words<br>here</div>
    <div class="quote-media-container">
      <div class="attachments">
        <div class="attachment image">
          <a class="still-image" href="/pic/media%2Fquoted.jpg"><img src="/pic/media%2Fquoted.jpg"></a>
        </div>
      </div>
    </div>
  </div>
</div>
</div></body></html>`

func TestParseQuoteMediaNeverLeaksIntoOuterTweet(t *testing.T) {
	tweets := Parse(quotePage, testInstance, "alice", nil)
	require.Len(t, tweets, 1)

	tw := tweets[0]
	require.Equal(t, "4001", tw.ID)
	require.Len(t, tw.Media, 1)
	require.Equal(t, "https://nitter.test/pic/media%2Fouter.jpg", tw.Media[0].URL)

	require.NotNil(t, tw.Quote)
	require.Equal(t, "carol", tw.Quote.Username)
	require.Equal(t, "Carol", tw.Quote.DisplayName)
	require.Equal(t, "Quoted words\nhere", tw.Quote.Content)
	require.Equal(t, "https://x.com/carol/status/4999", tw.Quote.Link)
	require.Len(t, tw.Quote.Media, 1)
	require.Equal(t, "https://nitter.test/pic/media%2Fquoted.jpg", tw.Quote.Media[0].URL)
}

const videoPage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/5001#m"></a>
  <a class="username" href="/alice">@alice</a>
  <span class="tweet-date"><a title="Dec 2, 2025 · 7:00 AM UTC">Dec 2</a></span>
  <div class="tweet-content">watch this</div>
  <div class="attachments">
    <div class="gallery-video">
      <div class="attachment video-container">
        <video poster="/pic/tweet_video_thumb%2Fv1.jpg" data-url="/video/enc/v1.mp4"></video>
      </div>
    </div>
  </div>
</div>
</div></body></html>`

func TestParseVideoYieldsThumbnailOnly(t *testing.T) {
	tweets := Parse(videoPage, testInstance, "alice", nil)
	require.Len(t, tweets, 1)

	require.Len(t, tweets[0].Media, 1)
	m := tweets[0].Media[0]
	require.Equal(t, "video", string(m.Type))
	require.Empty(t, m.URL, "no direct video URL is known at this layer")
	require.Equal(t, "https://nitter.test/pic/tweet_video_thumb%2Fv1.jpg", m.Thumbnail)
}

const gifPage = `<!DOCTYPE html>
<html><body><div class="timeline">
<div class="timeline-item ">
  <a class="tweet-link" href="/alice/status/6001#m"></a>
  <a class="username" href="/alice">@alice</a>
  <span class="tweet-date"><a title="Dec 1, 2025 · 6:00 AM UTC">Dec 1</a></span>
  <div class="tweet-content">gif reply</div>
  <div class="attachments">
    <div class="gallery-gif">
      <div class="attachment">
        <video class="gif" poster="/pic/tweet_video_thumb%2Fg1.jpg"><source src="/video/g1.mp4" type="video/mp4"/></video>
      </div>
    </div>
  </div>
</div>
</div></body></html>`

func TestParseGIFMedia(t *testing.T) {
	tweets := Parse(gifPage, testInstance, "alice", nil)
	require.Len(t, tweets, 1)

	require.Len(t, tweets[0].Media, 1)
	m := tweets[0].Media[0]
	require.Equal(t, "gif", string(m.Type))
	require.Equal(t, "https://nitter.test/video/g1.mp4", m.URL)
	require.Equal(t, "https://nitter.test/pic/tweet_video_thumb%2Fg1.jpg", m.Thumbnail)
}

func TestParseTweetTimeFallbacks(t *testing.T) {
	primary := parseTweetTime("Dec 7, 2025 · 5:13 AM UTC")
	require.Equal(t, time.Date(2025, time.December, 7, 5, 13, 0, 0, time.UTC), primary)

	rfc := parseTweetTime("2025-12-07T05:13:00Z")
	require.Equal(t, time.Date(2025, time.December, 7, 5, 13, 0, 0, time.UTC), rfc)

	dateOnly := parseTweetTime("Dec 7, 2025")
	require.Equal(t, time.Date(2025, time.December, 7, 0, 0, 0, 0, time.UTC), dateOnly)

	garbage := parseTweetTime("not a date")
	require.WithinDuration(t, time.Now().UTC(), garbage, time.Minute,
		"unparsable dates degrade to now instead of failing the item")
}

func TestParseDisplayNameFallsBackToUsername(t *testing.T) {
	page := `<div class="timeline-item ">
  <a class="tweet-link" href="/dave/status/7001#m"></a>
  <a class="username" href="/dave">@dave</a>
  <span class="tweet-date"><a title="Dec 1, 2025 · 6:00 AM UTC">Dec 1</a></span>
  <div class="tweet-content">plain</div>
</div>`
	tweets := Parse(page, testInstance, "dave", nil)
	require.Len(t, tweets, 1)
	require.Equal(t, "dave", tweets[0].DisplayName)
}

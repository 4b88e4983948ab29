package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NextPageURL locates the continuation link for reading older content
// from the same account. Candidates are tried in priority order: a link
// inside the show-more region, a link carrying literal "show more" text,
// then any link with a cursor query parameter. A candidate must reference
// the account or carry a cursor token to be accepted. The resolved URL is
// absolute, anchored at the instance host.
func NextPageURL(markup, account, instanceHost string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	href := showMoreRegionLink(doc, account)
	if href == "" {
		href = showMoreTextLink(doc, account)
	}
	if href == "" {
		href = cursorLink(doc, account)
	}
	if href == "" {
		return "", false
	}
	return AbsoluteURL(instanceHost, href), true
}

func showMoreRegionLink(doc *goquery.Document, account string) string {
	found := ""
	doc.Find("div.show-more a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if href := a.AttrOr("href", ""); isContinuation(href, account) {
			found = href
			return false
		}
		return true
	})
	return found
}

func showMoreTextLink(doc *goquery.Document, account string) string {
	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(a.Text()), "show more") {
			return true
		}
		if href := a.AttrOr("href", ""); isContinuation(href, account) {
			found = href
			return false
		}
		return true
	})
	return found
}

// cursorLink is the last resort: any link whose query string carries a
// cursor token, as long as it belongs to the crawled account.
func cursorLink(doc *goquery.Document, account string) string {
	found := ""
	lowerAccount := strings.ToLower(account)
	doc.Find("a[href*='cursor=']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		lower := strings.ToLower(href)
		if strings.Contains(lower, lowerAccount) || strings.HasPrefix(lower, "/"+lowerAccount) {
			found = href
			return false
		}
		return true
	})
	return found
}

func isContinuation(href, account string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	return strings.Contains(lower, strings.ToLower(account)) || strings.Contains(lower, "cursor=")
}

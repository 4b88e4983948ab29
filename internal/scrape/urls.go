package scrape

import (
	"net/url"
	"strings"
)

// AbsoluteURL resolves a link found in mirror markup against the current
// instance host. Absolute links pass through untouched.
func AbsoluteURL(instanceHost, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base, err := url.Parse("https://" + instanceHost + "/")
	if err != nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// proxyURL rewrites the mirror's relative media proxy paths (/pic/...,
// /gif/...) into absolute URLs anchored at the instance host. The
// upstream images are only reachable through the mirror's proxy, so the
// instance prefix must be kept.
func proxyURL(instanceHost, ref string) string {
	if ref == "" || !strings.HasPrefix(ref, "/") {
		return ref
	}
	return "https://" + instanceHost + ref
}

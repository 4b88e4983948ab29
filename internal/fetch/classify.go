package fetch

import "strings"

// Outcome classifies the result of fetching one mirror page.
type Outcome string

// Fetch outcomes. Only OutcomeOK carries usable markup; every error
// outcome is recoverable by instance failover in the caller.
const (
	// OutcomeOK means the page contains recognizable timeline content.
	OutcomeOK Outcome = "ok"
	// OutcomeNetwork covers connection failures and timeouts.
	OutcomeNetwork Outcome = "network"
	// OutcomeNotFound means the page explicitly reports a missing account.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeBotDetected means a challenge page was served instead of content.
	OutcomeBotDetected Outcome = "bot_detected"
	// OutcomeUnexpected means the page loaded but matches no known marker.
	OutcomeUnexpected Outcome = "unexpected"
)

// Result is the outcome of a single page fetch. HTML is set only when
// Outcome is OutcomeOK; Err is set only for network failures.
type Result struct {
	Outcome Outcome
	HTML    string
	Err     error
}

// OK reports whether the fetch yielded usable content.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Substrings the mirror service is known to emit for each page kind.
// This is a heuristic over rendered markup, not a protocol signal, and is
// expected to evolve with the mirror software.
var (
	contentMarkers = []string{"timeline-item", "tweet-content"}

	notFoundMarkers = []string{"error-panel", "User not found"}

	botMarkers = []string{"Checking your browser", "challenge-platform", "not a bot"}
)

// Classify inspects fetched markup and tags it with an Outcome. A page
// matching no marker at all is OutcomeUnexpected, which callers must
// treat as a recoverable failure rather than a fatal one.
func Classify(markup string) Outcome {
	if containsAll(markup, contentMarkers) {
		return OutcomeOK
	}
	if containsAny(markup, notFoundMarkers) {
		return OutcomeNotFound
	}
	if containsAny(markup, botMarkers) {
		return OutcomeBotDetected
	}
	return OutcomeUnexpected
}

func containsAll(haystack string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

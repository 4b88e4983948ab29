package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`(?i)([\d.]+)\s*([KMB])?`)

// ParseCount converts abbreviated counter text into an integer.
// Comma separators are stripped and K/M/B suffixes apply their decimal
// multipliers case-insensitively: "1.2K" is 1200, "3M" is 3000000.
// Unparsable input yields zero.
func ParseCount(raw string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	m := countPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n *= 1e3
	case "M":
		n *= 1e6
	case "B":
		n *= 1e9
	}
	return int(math.Round(n))
}

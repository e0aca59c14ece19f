// Package source implements the four independent scam-report fetchers.
// Each fetcher queries one external source with its own timeout and parses
// the response as untrusted, best-effort text. A fetcher that fails returns
// an explicit error; the aggregator treats failure as zero items so one
// outage degrades coverage, never correctness.
package source

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/satark-labs/scamintel/internal/model"
)

// Fetcher retrieves candidate scam reports from one external source.
type Fetcher interface {
	Name() string
	Source() model.Source
	Fetch(ctx context.Context) ([]model.RawReport, error)
}

const titleMaxLen = 200

var tagRe = regexp.MustCompile(`<[^>]*>`)

// cleanText strips markup from a scraped fragment and bounds its length.
func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > titleMaxLen {
		s = s[:titleMaxLen]
	}
	return s
}

// containsAny reports whether the lowercased text contains any keyword.
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

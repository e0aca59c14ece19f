// Package normalize canonicalizes phone numbers and UPI handles into the
// keys used by the scam-report mappings, and extracts phone-number-shaped
// substrings from free text.
package normalize

import (
	"regexp"
	"strings"
)

// phonePatterns match Indian phone numbers as they appear in scraped text:
// +91-prefixed, leading-zero 11-digit, and bare 10-digit starting 6-9.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[\s-]?\d{10}`),
	regexp.MustCompile(`\b0\d{10}\b`),
	regexp.MustCompile(`\b[6-9]\d{9}\b`),
}

var phoneStrip = strings.NewReplacer(" ", "", "-", "", "+", "")

// Phone canonicalizes a raw phone string to its last-10-digit key.
// Normalization is lossy and fails closed: inputs with fewer than ten
// digits yield a short key rather than an error, so distinct malformed
// inputs can collide. Callers tolerate malformed keys; a lookup miss is
// always a valid answer.
func Phone(raw string) string {
	s := phoneStrip.Replace(strings.TrimSpace(raw))
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}

// UPI canonicalizes a UPI handle by lowercasing. Handles with and without
// a domain suffix stay distinct keys.
func UPI(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ExtractPhones returns all phone-number-shaped substrings in text.
// Matches are deduplicated by exact string only: two formattings of the
// same physical number both survive here and collapse later when each is
// normalized into the keyed mapping.
func ExtractPhones(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, pat := range phonePatterns {
		for _, m := range pat.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	slugForbidden  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slugify converts a title into a filename-safe slug: special characters are
// stripped, runs of whitespace become single hyphens, and the result is lowercased
func Slugify(title string) string {
	// Normalize the string by decomposing all Unicode sequences
	s := norm.NFKD.String(title)
	s = strings.ToLower(s)
	// Remove all forbidden characters
	s = slugForbidden.ReplaceAllString(s, "")
	// Replace whitespace with hyphens
	s = slugWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	return s
}

// Truncate returns s cut to at most max characters
// The cut is rune-aware so a multi-byte character is never split
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// EscapeHTMLEntities returns a string in which the HTML entities <>& are escaped
func EscapeHTMLEntities(s string) string {
	r := strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")
	return r.Replace(s)
}

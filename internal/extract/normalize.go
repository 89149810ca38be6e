package extract

import (
	"regexp"
	"strings"
)

var (
	reLineBreaks = regexp.MustCompile(`\r\n|\r|\n|\t`)
	reRunSpace   = regexp.MustCompile(`\s+`)
)

// normalizeForMatch collapses whitespace and newlines so patterns match across
// line breaks. Invoice layouts routinely split a label and its value onto
// separate lines ("Total" / "$500.00"); matching against the flattened form is
// what lets a single regex see both.
func normalizeForMatch(text string) string {
	s := reLineBreaks.ReplaceAllString(text, " ")
	s = reRunSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

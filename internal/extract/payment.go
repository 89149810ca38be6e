package extract

import (
	"sort"
	"strings"
)

// PaymentType returns the first payment channel whose any marker appears in
// the text as a case-insensitive substring, or "" when nothing matches.
// Channels are evaluated in sorted label order so the lookup is deterministic
// regardless of map iteration. The marker table is caller-supplied
// configuration, not engine state.
func PaymentType(text string, markers map[string][]string) string {
	if text == "" || len(markers) == 0 {
		return ""
	}
	lower := strings.ToLower(text)

	channels := make([]string, 0, len(markers))
	for ch := range markers {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		for _, kw := range markers[ch] {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return ch
			}
		}
	}
	return ""
}

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// candidate pairs the original matched string with its parsed value. The
// string form is what gets stored; parsing is only for ranking.
type candidate struct {
	str string
	num float64
}

// parseAmount parses a matched amount string to a number. Returns false for
// anything that is not a finite non-negative number.
func parseAmount(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, false
	}
	return n, true
}

// isReasonableAmount rejects values that are not plausible invoice totals:
// years, zip codes, fragments, bare reference-sized integers, non-currency
// decimals. The later fallback stages deliberately use a looser inline range
// check instead of this filter.
func isReasonableAmount(str string, num float64) bool {
	if num < 0 {
		return false
	}
	if len(str) <= 1 {
		return false
	}
	hasDecimal := strings.Contains(str, ".")
	if num < 1 && !hasDecimal {
		return false
	}
	if num >= 2020 && num <= 2035 {
		return false
	}
	if !hasDecimal && num < 1000 {
		return false
	}
	if !hasDecimal && num >= 10000 && num < 100000 {
		return false
	}
	if hasDecimal {
		if parts := strings.Split(str, "."); len(parts) > 1 && len(parts[1]) > 2 {
			return false
		}
	}
	return true
}

var reTwoDecimal = regexp.MustCompile(`^\d+\.\d{2}$`)

// scoreAmount prefers amounts that look like currency (two decimal places,
// e.g. 8650.00) over bare numbers of any size.
func scoreAmount(str string, num float64) float64 {
	if str == "" {
		return -1
	}
	clean := strings.ReplaceAll(str, ",", "")
	if reTwoDecimal.MatchString(clean) {
		return 1e10 + num
	}
	return num
}

// --- direct total phrases (Latin "Total $X.XX" and Hebrew "סך הכל ₪X.XX") ---

type textSource int

const (
	srcFull textSource = iota
	srcNormalized
)

var facturaTotalRules = []struct {
	re  *regexp.Regexp
	src textSource
}{
	{regexp.MustCompile(`(?i)Total\s*[\t ]+\$\s*([\d,]+\.\d{2})`), srcFull},
	{regexp.MustCompile(`(?i)Total\s+\$\s*([\d,]+\.\d{2})`), srcNormalized},
	{regexp.MustCompile(`(?i)(?:סך הכל|סה״כ|סיכום)\s*[:\s]*₪?\s*([\d,]+\.\d{1,2})`), srcFull},
	{regexp.MustCompile(`(?i)(?:סך הכל|סה״כ|סיכום)\s*[:\s]*₪?\s*([\d,]+\.\d{1,2})`), srcNormalized},
	{regexp.MustCompile(`(?m)₪\s*([\d,]+\.\d{1,2})\s*$`), srcFull},
	{regexp.MustCompile(`(?i)סכום\s+לתשלום\s*[:\s]*₪?\s*([\d,]+\.\d{1,2})`), srcNormalized},
}

func matchFacturaTotal(fullText, normalized string) (string, bool) {
	for _, r := range facturaTotalRules {
		text := fullText
		if r.src == srcNormalized {
			text = normalized
		}
		if m := r.re.FindStringSubmatch(text); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// --- total keyword then number within 120 characters ---

var reTotalThenAmount = regexp.MustCompile(`(?is)(?:total|סך הכל|סה״כ|סיכום|סכום לתשלום).{0,120}?([\d,]+\.\d{1,2})`)

// scanTotalThenAmount finds every total/sum keyword followed within 120
// characters by a two-decimal number and keeps the largest value. Line-item
// subtotals tend to be smaller than the grand total that follows them, so
// larger wins; ties go to the first occurrence.
func scanTotalThenAmount(normalized string) (candidate, bool) {
	best := candidate{num: -1}
	found := false
	for _, m := range reTotalThenAmount.FindAllStringSubmatch(normalized, -1) {
		num, ok := parseAmount(m[1])
		if !ok || num < 1 || num >= 1e8 || (num >= 2020 && num <= 2035) {
			continue
		}
		if num > best.num {
			best = candidate{str: m[1], num: num}
			found = true
		}
	}
	return best, found
}

// --- line-by-line total detection ---

var (
	reTotalLine       = regexp.MustCompile(`(?is)(?:Total|סך הכל|סה״כ|סיכום|סכום לתשלום)\s+.*?(?:\$|₪)\s*([\d,]+\.?\d*)`)
	reTotalKeyword    = regexp.MustCompile(`(?i)Total|סך הכל|סה״כ|סיכום|סכום לתשלום`)
	reDollarLineEnd   = regexp.MustCompile(`\$\s*([\d,]+\.\d{1,2})\s*$`)
	reBareDollarOnly  = regexp.MustCompile(`^\$?\s*([\d,]+\.\d{1,2})\s*$`)
	reBareShekelOnly  = regexp.MustCompile(`^₪?\s*([\d,]+\.\d{1,2})\s*$`)
	reSymbolledAmount = regexp.MustCompile(`(?:\$|₪)\s*([\d,]+\.\d{1,2})`)
)

// scanLines walks the reconstructed lines looking for a total keyword with a
// currency-symbol amount on the same line, a keyword line followed by a bare
// amount line, or a 3-line window combining the two. The largest plausible
// value wins.
func scanLines(lines []string) (candidate, bool) {
	best := candidate{num: -1}
	found := false

	consider := func(str string) {
		num, ok := parseAmount(str)
		if ok && isReasonableAmount(str, num) && num > best.num && num < 1e8 {
			best = candidate{str: str, num: num}
			found = true
		}
	}

	for i, chunk := range lines {
		if m := reTotalLine.FindStringSubmatch(chunk); m != nil && m[1] != "" {
			consider(m[1])
		}
		if !found && reTotalKeyword.MatchString(strings.TrimSpace(chunk)) && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			dm := reDollarLineEnd.FindStringSubmatch(next)
			if dm == nil {
				dm = reBareDollarOnly.FindStringSubmatch(next)
			}
			if dm == nil {
				dm = reBareShekelOnly.FindStringSubmatch(next)
			}
			if dm != nil && dm[1] != "" {
				consider(dm[1])
			}
		}
		if !found && reTotalKeyword.MatchString(chunk) {
			combined := chunk
			if i+1 < len(lines) {
				combined += " " + lines[i+1]
			} else {
				combined += " "
			}
			if i+2 < len(lines) {
				combined += " " + lines[i+2]
			} else {
				combined += " "
			}
			if m := reTotalLine.FindStringSubmatch(combined); m != nil && m[1] != "" {
				consider(m[1])
			}
			if !found {
				if m := reSymbolledAmount.FindStringSubmatch(combined); m != nil && m[1] != "" {
					consider(m[1])
				}
			}
		}
	}
	return best, found
}

// --- keyword-window fallback ---

var (
	reWindowKeywords = regexp.MustCompile(`(?i)\b(?:total|balance|due|amount|sum|grand|invoice total|payable)\b|סך הכל|סה״כ|סיכום|סכום לתשלום`)
	reWindowAmount   = regexp.MustCompile(`(?:USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d+)`)
)

// keywordWindowFallback slides an 80-character window across the normalized
// text and, wherever a total/balance/due/amount keyword appears, keeps the
// largest plausible value inside the window.
func keywordWindowFallback(normalized string) (string, bool) {
	const windowSize = 80
	runes := []rune(normalized)
	best := candidate{num: -1}
	found := false
	for i := 0; i < len(runes)-20; i++ {
		end := i + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[i:end])
		if !reWindowKeywords.MatchString(window) {
			continue
		}
		for _, m := range reWindowAmount.FindAllStringSubmatch(window, -1) {
			num, ok := parseAmount(m[1])
			if ok && isReasonableAmount(m[1], num) && num > best.num && num < 1e8 {
				best = candidate{str: m[1], num: num}
				found = true
			}
		}
	}
	return best.str, found
}

// --- post-"total" and document-wide dollar fallbacks ---

var (
	reDollarAmount    = regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`)
	reTwoDecimalLoose = regexp.MustCompile(`([\d,]+\.\d{1,2})`)
)

func bestByScore(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if scoreAmount(c.str, c.num) > scoreAmount(best.str, best.num) {
			best = c
		}
	}
	return best
}

// afterLastTotalDollar considers only $-prefixed amounts after the textually
// last "total" occurrence, preferring exact two-decimal formatting.
func afterLastTotalDollar(normalized string) (string, bool) {
	idx := strings.LastIndex(strings.ToLower(normalized), "total")
	if idx < 0 {
		return "", false
	}
	var valid []candidate
	for _, m := range reDollarAmount.FindAllStringSubmatch(normalized[idx:], -1) {
		if num, ok := parseAmount(m[1]); ok && isReasonableAmount(m[1], num) && num < 1e8 {
			valid = append(valid, candidate{str: m[1], num: num})
		}
	}
	if len(valid) == 0 {
		return "", false
	}
	return bestByScore(valid).str, true
}

// bestDollarAnywhere takes the best $ amount in the whole document, ignoring
// keyword proximity.
func bestDollarAnywhere(normalized string) (string, bool) {
	var valid []candidate
	for _, m := range reDollarAmount.FindAllStringSubmatch(normalized, -1) {
		if num, ok := parseAmount(m[1]); ok && isReasonableAmount(m[1], num) && num > 0 && num < 1e8 {
			valid = append(valid, candidate{str: m[1], num: num})
		}
	}
	if len(valid) == 0 {
		return "", false
	}
	return bestByScore(valid).str, true
}

// afterLastTotalTwoDecimals takes the largest two-decimal number after the
// last "total", regardless of currency symbol.
func afterLastTotalTwoDecimals(normalized string) (string, bool) {
	idx := strings.LastIndex(strings.ToLower(normalized), "total")
	if idx < 0 {
		return "", false
	}
	best := candidate{num: -1}
	found := false
	for _, m := range reTwoDecimalLoose.FindAllStringSubmatch(normalized[idx:], -1) {
		if num, ok := parseAmount(m[1]); ok && num >= 1 && num < 1e8 && num > best.num {
			best = candidate{str: m[1], num: num}
			found = true
		}
	}
	return best.str, found
}

// largestTwoDecimalsAnywhere is the absolute last resort: the largest
// money-like number in the entire text, excluding year-shaped values.
func largestTwoDecimalsAnywhere(normalized string) (string, bool) {
	best := candidate{num: -1}
	found := false
	for _, m := range reTwoDecimalLoose.FindAllStringSubmatch(normalized, -1) {
		num, ok := parseAmount(m[1])
		if !ok || num < 1 || num >= 1e7 || (num >= 2020 && num <= 2035) {
			continue
		}
		if num > best.num {
			best = candidate{str: m[1], num: num}
			found = true
		}
	}
	return best.str, found
}

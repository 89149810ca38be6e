package extract

import (
	"regexp"
	"strings"
)

// Field extractors share one shape: an ordered pattern list where the first
// match with a non-trivial captured group wins, tried against the normalized
// text first and the full text as a secondary source.

// --- vendor (issuer) ---

// Hebrew issuer phrasing: municipality/company/"issued by". The addressee
// marker לכבוד is the recipient, not the issuer, and is deliberately excluded.
var vendorHebrewRules = []*regexp.Regexp{
	regexp.MustCompile(`(עיריית\s+[\x{0590}-\x{05FF}\s\-]+?)(?:\n|לכבוד|תאריך|סך|₪|$)`),
	regexp.MustCompile(`(מנהל\s+[\x{0590}-\x{05FF}\s\-]+?)(?:\n|לכבוד|תאריך|סך|₪|$)`),
	regexp.MustCompile(`(חברת\s+[\x{0590}-\x{05FF}\s\-]+?)(?:\n|לכבוד|תאריך|סך|₪|$)`),
	regexp.MustCompile(`(?i)(?:מנפיק|ניתן על ידי|רשות)\s*[:\s]*([^\n]+?)(?:\n|לכבוד|תאריך|סך|₪|$)`),
}

var (
	reTrailingLabelJunk = regexp.MustCompile(`[:\s]+$`)
	reAddresseeOnly     = regexp.MustCompile(`^לכבוד\s*$`)
)

func matchHebrewVendor(fullText string) (string, bool) {
	for _, re := range vendorHebrewRules {
		m := re.FindStringSubmatch(fullText)
		if m == nil || m[1] == "" {
			continue
		}
		v := reRunSpace.ReplaceAllString(strings.TrimSpace(m[1]), " ")
		v = reTrailingLabelJunk.ReplaceAllString(v, "")
		v = truncateRunes(v, 120)
		if len([]rune(v)) >= 3 && !reAddresseeOnly.MatchString(v) {
			return v, true
		}
	}
	return "", false
}

// Deny-list of header words in either language: a line starting with one of
// these is a label, not a company name.
var (
	reVendorSkip    = regexp.MustCompile(`(?i)^(invoice|חשבונית|date|תאריך|total|סך הכל|סה״כ|amount|סכום|number|מספר|item|תיאור|description|bill to|from|to|ship to|לכתובת|נמען|לכבוד|\d|₪|$|scanmarker|topscan)`)
	reBareNumber    = regexp.MustCompile(`^\d+[,.]?\d*$`)
	reBareDate      = regexp.MustCompile(`^\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}$`)
	reCurrencyStart = regexp.MustCompile(`(?i)^(USD|EUR|GBP|ILS|NIS)`)
	reNumericJunk   = regexp.MustCompile(`^[\d\s,.\-/]+$`)
	reTableRow      = regexp.MustCompile(`^\d+\s+[\d.]+\s+[\d.]+$`)
	reFirstLineSkip = regexp.MustCompile(`(?i)^(Invoice|Date|Bill|Description)`)
	reInvoiceOnly   = regexp.MustCompile(`(?i)^invoice$`)
	reDigitsOnly    = regexp.MustCompile(`^\d+$`)
)

func isLikelyVendor(s string) bool {
	n := len([]rune(s))
	return n >= 2 && n <= 150 &&
		!reVendorSkip.MatchString(s) &&
		!reBareNumber.MatchString(s) &&
		!reBareDate.MatchString(s) &&
		!reCurrencyStart.MatchString(s) &&
		!reNumericJunk.MatchString(s)
}

// matchVendorLine picks the first reconstructed line that looks like a
// company name rather than a label, number, date, or table row.
func matchVendorLine(lines []string) (string, bool) {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if isLikelyVendor(t) && !reTableRow.MatchString(t) {
			return t, true
		}
	}
	return "", false
}

// --- bill-to (addressee) ---

var billToRules = []struct {
	re  *regexp.Regexp
	src textSource
}{
	{regexp.MustCompile(`(?i)Bill\s+to\s*:\s*([^\n]+?)(?:\s*,|\s*\d{5,}|$)`), srcFull},
	{regexp.MustCompile(`(?i)Bill\s+to\s*:\s*([^,]+)`), srcNormalized},
	{regexp.MustCompile(`(?i)(?:לתשלום\s+עבור|נמען)\s*[:\s]*([^\n]+?)(?:\n|$)`), srcFull},
	{regexp.MustCompile(`(?i)(?:לתשלום\s+עבור|נמען)\s*[:\s]*([^,]+)`), srcNormalized},
	{regexp.MustCompile(`(?i)לכבוד\s*[:\s]*([^\n]+?)(?:\n|תאריך|סך|₪|$)`), srcFull},
	{regexp.MustCompile(`(?i)לכבוד\s*[:\s]*([^,\n]+)`), srcNormalized},
}

func matchBillTo(fullText, normalized string) (string, bool) {
	for _, r := range billToRules {
		text := fullText
		if r.src == srcNormalized {
			text = normalized
		}
		if m := r.re.FindStringSubmatch(text); m != nil && m[1] != "" {
			v := reRunSpace.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			return truncateRunes(v, 120), true
		}
	}
	return "", false
}

// --- invoice number ---

var invoiceNumberRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:מספר|מס['׳״]?)\s*חשבונית\s*[:\s]*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)ח\.?פ\.?\s*[:\s]*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)חשבונית\s*[#:]?\s*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)INVOICE\s+NUMBER\s*:\s*(INV[\-\s]?\d+|\d+)`),
	regexp.MustCompile(`(?i)(?:N\.?\s*[º°]?\s*)?invoice\s*[#:.\s]*[:\s]*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)(?:Factura|Invoice)\s*[#:.\s]*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)INVOICE\s*#\s*:\s*(\S+)`),
	regexp.MustCompile(`(?i)Invoice\s+number\s*[:\s]+(INV[\-\d]+|[\d\-]+)`),
	regexp.MustCompile(`(?i)(?:Invoice|Inv\.?)\s*[#:.]*\s*(INV[\-\d]+|[\d\-/]+)`),
	regexp.MustCompile(`(?i)\b(INV\s*[\d\-]+)\b`),
	regexp.MustCompile(`(?i)\b(INV[\d\-]+)\b`),
	regexp.MustCompile(`(?i)Invoice\s*#\s*[:\s]*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)(?:Ref|Reference|No\.?|#)\s*[#:.]*\s*(\d[\d\-/]+)`),
	regexp.MustCompile(`(?i)(?:invoice\s+no\.?|inv\s+no\.?)\s*(\d+)`),
}

// matchInvoiceNumber accepts only captures of length >= 2 after stripping
// internal whitespace.
func matchInvoiceNumber(normalized, fullText string) (string, bool) {
	for _, re := range invoiceNumberRules {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			m = re.FindStringSubmatch(fullText)
		}
		if m == nil || m[1] == "" {
			continue
		}
		num := strings.TrimSpace(reRunSpace.ReplaceAllString(m[1], ""))
		if len(num) >= 2 {
			return num, true
		}
	}
	return "", false
}

// --- date ---

// Labeled patterns always precede unlabeled date-like tokens.
var dateRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)תאריך\s*[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)תוקף\s*[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:DUE\s+DATE|DATE\s+ISSUED|DATE\s+ISSUE)\s*:\s*([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)Due\s+date\s+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)Date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:Date|Due\s+date)\s*[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:Due\s+date|Issue\s+date|Invoice\s+date)\s*[:\s]+([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:Date|Issued|Due)\s*[:\s]+([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(\d{4}[/\-]\d{1,2}[/\-]\d{1,2})`),
}

func matchDate(normalized, fullText string) (string, bool) {
	for _, re := range dateRules {
		m := re.FindStringSubmatch(normalized)
		if m == nil {
			m = re.FindStringSubmatch(fullText)
		}
		if m != nil && m[1] != "" {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

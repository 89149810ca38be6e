// Package extract implements the heuristic field-extraction engine: layered
// pattern-matching passes over unstructured, multilingual (Latin + Hebrew)
// invoice text that produce a single best-guess amount, currency, invoice
// number, date, vendor and bill-to, with deterministic precedence when
// candidate matches conflict.
package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// Details is the structured record produced from one document's text. Amount
// is preserved as the original matched string, not parsed to a number, to
// avoid lossy reformatting; Currency is always one of the canonical codes.
// A nil field means "not found"; the engine does not distinguish that from
// any other failure.
type Details struct {
	Amount        *string `json:"amount"`
	Currency      string  `json:"currency"`
	InvoiceNumber *string `json:"invoiceNumber"`
	Date          *string `json:"date"`
	Vendor        *string `json:"vendor"`
	BillTo        *string `json:"billTo"`
}

var (
	reUSDHint = regexp.MustCompile(`(?i)\$|USD`)
	reILSHint = regexp.MustCompile(`(?i)₪|ש"ח|ILS`)
)

// DetailsFromText runs the full extraction cascade over one document's text.
// It never fails: malformed or empty input yields an all-nil record with the
// default currency. The computation is pure; identical text yields identical
// output.
func DetailsFromText(text string) Details {
	d := Details{Currency: string(constants.DefaultCurrency)}
	if strings.TrimSpace(text) == "" {
		return d
	}

	fullText := strings.ReplaceAll(text, "\r", "\n")
	normalized := normalizeForMatch(fullText)
	lines := splitLines(fullText)
	docCurrency := detectDocumentCurrency(fullText)

	var amount string
	var amountNum float64
	haveAmount := false
	currency := docCurrency // "" until something resolves it

	// Stage 1: explicit "Total $X.XX" / "סך הכל ₪X.XX" phrases.
	if str, ok := matchFacturaTotal(fullText, normalized); ok {
		if n, okNum := parseAmount(str); okNum && n >= 1 && n < 1e8 {
			amount, amountNum, haveAmount = str, n, true
			currency = docCurrency
			if currency == "" {
				currency = constants.CurrencyShekel
			}
		}
	}

	// Stage 2: total keyword then two-decimal number within 120 characters;
	// the largest value wins, even over stage 1.
	if c, ok := scanTotalThenAmount(normalized); ok && (!haveAmount || c.num > amountNum) {
		amount, amountNum, haveAmount = c.str, c.num, true
		currency = docCurrency
		if currency == "" {
			switch {
			case reUSDHint.MatchString(fullText):
				currency = constants.CurrencyUSD
			case reILSHint.MatchString(fullText):
				currency = constants.CurrencyShekel
			}
		}
	}

	// Stage 3: line-by-line detection over the reconstructed rows, where a
	// total label and its amount are often split across lines.
	if c, ok := scanLines(lines); ok && (!haveAmount || c.num > amountNum) {
		amount, amountNum, haveAmount = c.str, c.num, true
		currency = docCurrency
		if currency == "" {
			if reUSDHint.MatchString(fullText) {
				currency = constants.CurrencyUSD
			} else {
				currency = constants.CurrencyShekel
			}
		}
	}

	// Stages 4-9 run only when nothing above matched, in decreasing order of
	// confidence.
	if !haveAmount {
		if str, cur, ok := runAmountRules(normalized, docCurrency); ok {
			amount, haveAmount, currency = str, true, cur
		}
	}
	for _, fallback := range []func(string) (string, bool){
		keywordWindowFallback,
		afterLastTotalDollar,
		bestDollarAnywhere,
		afterLastTotalTwoDecimals,
		largestTwoDecimalsAnywhere,
	} {
		if haveAmount {
			break
		}
		if str, ok := fallback(normalized); ok {
			amount, haveAmount = str, true
			currency = docCurrency
			if currency == "" {
				currency = constants.DefaultCurrency
			}
		}
	}

	if haveAmount {
		d.Amount = &amount
	}
	if currency == "" {
		currency = docCurrency
		if currency == "" {
			currency = constants.DefaultCurrency
		}
	}
	d.Currency = string(currency)

	if num, ok := matchInvoiceNumber(normalized, fullText); ok {
		d.InvoiceNumber = &num
	}
	if date, ok := matchDate(normalized, fullText); ok {
		d.Date = &date
	}

	// Vendor: Hebrew issuer phrasing wins; then the first line when it is
	// not a header label or a bare number; then the first line that survives
	// the deny-list scan; then the first line unconditionally.
	if v, ok := matchHebrewVendor(fullText); ok {
		d.Vendor = &v
	} else if len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		if len([]rune(first)) >= 3 && !reFirstLineSkip.MatchString(first) && !reDigitsOnly.MatchString(first) {
			d.Vendor = &first
		}
	}
	if d.Vendor == nil {
		if v, ok := matchVendorLine(lines); ok {
			d.Vendor = &v
		} else if len(lines) > 0 {
			first := strings.TrimSpace(lines[0])
			if !reInvoiceOnly.MatchString(first) {
				d.Vendor = &first
			}
		}
	}

	if b, ok := matchBillTo(fullText, normalized); ok {
		d.BillTo = &b
	}

	return d
}

// BestDetails extracts from the line-structured text and from the raw
// flattened text, and keeps whichever result carries the larger amount. The
// raw form catches layouts where band reconstruction scrambled a total row.
func BestDetails(text, rawText string) Details {
	byLine := DetailsFromText(text)
	if rawText == "" || rawText == text {
		return byLine
	}
	byRaw := DetailsFromText(rawText)
	if byRaw.Amount == nil {
		return byLine
	}
	if byLine.Amount == nil {
		return byRaw
	}
	lineNum, _ := parseAmount(*byLine.Amount)
	rawNum, _ := parseAmount(*byRaw.Amount)
	if rawNum > lineNum {
		return byRaw
	}
	return byLine
}

func splitLines(fullText string) []string {
	var lines []string
	for _, l := range strings.Split(fullText, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

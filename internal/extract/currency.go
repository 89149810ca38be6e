package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// Currency detection is a fixed-priority cascade: dollar and shekel are the
// dominant supported markets, so they are checked before the weaker generic
// symbol matches. First family with any hit wins; there is no scoring.
var (
	reUSDSignal = regexp.MustCompile(`(?i)\$[\d,]+\.?\d*|Amount due\s*\$|Total\s*\$|\bUSD\b|Dollar`)
	reILSSignal = regexp.MustCompile(`(?i)₪|ש"ח|NIS|ILS|שקל`)
	reINRSignal = regexp.MustCompile(`(?i)₹|INR|Rupee|Rs\.?(\s|$)`)
	reEURSignal = regexp.MustCompile(`(?i)\bEUR\b|€|Euro`)
	reGBPSignal = regexp.MustCompile(`(?i)\bGBP\b|£|Pound|Sterling`)
)

// detectDocumentCurrency inspects the raw (non-normalized) text and returns a
// single document-level currency hypothesis, or "" when no confident signal
// exists.
func detectDocumentCurrency(fullText string) constants.CurrencyCode {
	switch {
	case reUSDSignal.MatchString(fullText):
		return constants.CurrencyUSD
	case reILSSignal.MatchString(fullText):
		return constants.CurrencyShekel
	case reINRSignal.MatchString(fullText):
		return constants.CurrencyINR
	case reEURSignal.MatchString(fullText):
		return constants.CurrencyEUR
	case reGBPSignal.MatchString(fullText):
		return constants.CurrencyGBP
	}
	return ""
}

var (
	reILSToken = regexp.MustCompile(`(?i)₪|ש"ח|NIS|ILS`)
	reUSDToken = regexp.MustCompile(`(?i)USD|\$`)
	reINRToken = regexp.MustCompile(`(?i)₹|INR|Rupee|Rs\.?`)
	reEURToken = regexp.MustCompile(`(?i)EUR|€`)
	reGBPToken = regexp.MustCompile(`(?i)GBP|£`)
)

// resolveCurrency maps a captured currency token or symbol to a canonical
// code, falling back to the document hypothesis, then USD.
func resolveCurrency(token string, docCurrency constants.CurrencyCode) constants.CurrencyCode {
	fallback := docCurrency
	if fallback == "" {
		fallback = constants.DefaultCurrency
	}
	t := strings.TrimSpace(token)
	if t == "" {
		return fallback
	}
	switch {
	case reILSToken.MatchString(t):
		return constants.CurrencyShekel
	case reUSDToken.MatchString(t):
		return constants.CurrencyUSD
	case reINRToken.MatchString(t):
		return constants.CurrencyINR
	case reEURToken.MatchString(t):
		return constants.CurrencyEUR
	case reGBPToken.MatchString(t):
		return constants.CurrencyGBP
	}
	return fallback
}

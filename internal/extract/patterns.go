package extract

import (
	"regexp"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// amountRule is one declarative candidate-extraction rule. Rules are
// evaluated strictly in list order: the first rule producing any plausible
// match wins, taking the largest plausible value among that rule's matches.
// Rules are never combined across families and never reordered at runtime.
type amountRule struct {
	re       *regexp.Regexp
	amtIdx   int                    // capture group holding the amount
	curIdx   int                    // capture group holding a currency token; 0 = none
	currency constants.CurrencyCode // fixed currency; "" = resolve via curIdx, then document hypothesis
}

var amountRules = []amountRule{
	// Hebrew total phrasing first: these labels are unambiguous.
	{re: regexp.MustCompile(`(?i)(?:סך הכל|סה״כ|סיכום)\s*(?:לתשלום)?\s*[:\s]*₪?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyShekel},
	{re: regexp.MustCompile(`(?i)סכום\s+לתשלום\s*[:\s]*₪?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyShekel},
	{re: regexp.MustCompile(`(?m)₪\s*([\d,]+\.?\d*)\s*$`), amtIdx: 1, currency: constants.CurrencyShekel},
	{re: regexp.MustCompile(`([\d,]+\.?\d*)\s*₪`), amtIdx: 1, currency: constants.CurrencyShekel},
	{re: regexp.MustCompile(`(?i)(?:ש"ח|ILS)\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyShekel},
	// Labeled English totals with an optional currency token.
	{re: regexp.MustCompile(`(?i)BALANCE\s+DUE\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)TOTAL\s+DUE\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)AMOUNT\s+DUE\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)(?:INVOICE\s+)?TOTAL\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)Total\s+\$\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?is)Total\s+.{0,40}?\$\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?i)GRAND\s+TOTAL\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)NET\s+TOTAL\s*:\s*(USD|EUR|GBP|₪|ILS|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`(?i)Amount\s+due\s+(?:USD|EUR|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?i)Total\s+due\s+(?:USD|EUR|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?i)Balance\s+due\s+(?:USD|EUR|\$)?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?i)Amount\s+due\s*\$?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?i)TOTAL\s+DUE\s*\$?\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	// Generic "Total: $X"; currency falls back to the document hypothesis.
	{re: regexp.MustCompile(`(?i)(?:Invoice\s+)?Total\s*[:\s]+\$?\s*([\d,]+\.?\d*)`), amtIdx: 1},
	{re: regexp.MustCompile(`(?i)(?:Total|Amount)\s*[:\s]+([\d,]+\.?\d*)\s*(USD|EUR|₪|ILS|\$)?`), amtIdx: 1, curIdx: 2},
	{re: regexp.MustCompile(`(?i)(?:total|invoice total)\s*[:\s]+([\d,]+\.?\d*)\s*(₪|ש"ח|NIS|ILS|USD|EUR|\$)?`), amtIdx: 1, curIdx: 2},
	// Bare symbol/code matches, weakest last.
	{re: regexp.MustCompile(`(?m)\$\s*([\d,]+\.?\d*)\s*$`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`(?im)(USD|EUR|GBP|₪|ILS)\s*([\d,]+\.?\d*)\s*$`), amtIdx: 2, curIdx: 1},
	{re: regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`), amtIdx: 1, currency: constants.CurrencyUSD},
	{re: regexp.MustCompile(`([\d,]+\.?\d*)\s*(USD|EUR|₪|ILS|\$)`), amtIdx: 1, curIdx: 2},
	{re: regexp.MustCompile(`(₪|USD|EUR|\$)\s*([\d,]+\.?\d*)`), amtIdx: 2, curIdx: 1},
}

// runAmountRules evaluates the declarative rule list against the normalized
// text and returns the winning amount plus its resolved currency.
func runAmountRules(normalized string, docCurrency constants.CurrencyCode) (string, constants.CurrencyCode, bool) {
	for _, rule := range amountRules {
		best := candidate{num: -1}
		bestCur := constants.CurrencyCode("")
		found := false
		for _, m := range rule.re.FindAllStringSubmatch(normalized, -1) {
			amtStr := m[rule.amtIdx]
			num, ok := parseAmount(amtStr)
			if !ok || !isReasonableAmount(amtStr, num) {
				continue
			}
			if num > best.num && num < 1e8 {
				best = candidate{str: amtStr, num: num}
				found = true
				switch {
				case rule.currency != "":
					bestCur = rule.currency
				case rule.curIdx > 0:
					bestCur = resolveCurrency(m[rule.curIdx], docCurrency)
				default:
					bestCur = ""
				}
			}
		}
		if found {
			if bestCur == "" {
				bestCur = docCurrency
				if bestCur == "" {
					bestCur = constants.DefaultCurrency
				}
			}
			return best.str, bestCur, true
		}
	}
	return "", "", false
}

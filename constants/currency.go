package constants

// CurrencyCode is one of the canonical currency labels stored on invoices.
type CurrencyCode string

// Stable values (store these exact strings in DB).
const (
	CurrencyUSD    CurrencyCode = "USD"
	CurrencyShekel CurrencyCode = "₪"
	CurrencyINR    CurrencyCode = "INR"
	CurrencyEUR    CurrencyCode = "EUR"
	CurrencyGBP    CurrencyCode = "GBP"
)

// DefaultCurrency is used when no currency signal exists in a document.
const DefaultCurrency = CurrencyUSD

var allCurrencies = []CurrencyCode{
	CurrencyUSD,
	CurrencyShekel,
	CurrencyINR,
	CurrencyEUR,
	CurrencyGBP,
}

// CurrencySymbols maps each code to its display symbol.
var CurrencySymbols = map[CurrencyCode]string{
	CurrencyUSD:    "$",
	CurrencyShekel: "₪",
	CurrencyINR:    "₹",
	CurrencyEUR:    "€",
	CurrencyGBP:    "£",
}

// Currencies returns the canonical currency set as strings.
func Currencies() []string {
	result := make([]string, len(allCurrencies))
	for i, c := range allCurrencies {
		result[i] = string(c)
	}
	return result
}

// IsCurrency reports whether s is one of the canonical codes.
func IsCurrency(s string) bool {
	for _, c := range allCurrencies {
		if string(c) == s {
			return true
		}
	}
	return false
}

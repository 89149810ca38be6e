package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.56", 1234.56, true},
		{" 500.00 ", 500, true},
		{"42", 42, true},
		{"abc", 0, false},
		{"-5", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, "input %q", tt.in)
		}
	}
}

func TestIsReasonableAmount(t *testing.T) {
	tests := []struct {
		str  string
		num  float64
		want bool
	}{
		{"150.00", 150, true},
		{"1,234.56", 1234.56, true},
		{"2024", 2024, false},
		{"2,024.00", 2024, false},
		{"5", 5, false},
		{"12345", 12345, false},
		{"1234.567", 1234.567, false},
		{"0.50", 0.5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isReasonableAmount(tt.str, tt.num), "input %q", tt.str)
	}
}

func TestScanTotalThenAmount(t *testing.T) {
	c, ok := scanTotalThenAmount("subtotal 10.00 shipping 5.00 total 250.00")
	require.True(t, ok)
	assert.Equal(t, "250.00", c.str)

	_, ok = scanTotalThenAmount("total 2024.00")
	assert.False(t, ok)

	_, ok = scanTotalThenAmount("no keyword 99.00")
	assert.False(t, ok)
}

func TestScanLinesKeywordThenBareAmount(t *testing.T) {
	c, ok := scanLines([]string{"Total due", "1,234.56"})
	require.True(t, ok)
	assert.Equal(t, "1,234.56", c.str)

	c, ok = scanLines([]string{"Grand Total $88.50 thank you"})
	require.True(t, ok)
	assert.Equal(t, "88.50", c.str)

	_, ok = scanLines([]string{"line items", "no totals here"})
	assert.False(t, ok)
}

func TestKeywordWindowFallback(t *testing.T) {
	got, ok := keywordWindowFallback("amount due 125.50 ref 77")
	require.True(t, ok)
	assert.Equal(t, "125.50", got)

	_, ok = keywordWindowFallback("nothing relevant at all")
	assert.False(t, ok)
}

func TestAfterLastTotalDollar(t *testing.T) {
	got, ok := afterLastTotalDollar("deposit $9,999.00 total $450.00")
	require.True(t, ok)
	assert.Equal(t, "450.00", got)

	_, ok = afterLastTotalDollar("no keyword $450.00")
	assert.False(t, ok)
}

func TestBestDollarAnywhere(t *testing.T) {
	got, ok := bestDollarAnywhere("fee $12.00 deposit $1,500.00")
	require.True(t, ok)
	assert.Equal(t, "1,500.00", got)
}

func TestLargestTwoDecimalsAnywhereSkipsYears(t *testing.T) {
	got, ok := largestTwoDecimalsAnywhere("2024.00 310.75 88.20")
	require.True(t, ok)
	assert.Equal(t, "310.75", got)
}

func TestRunAmountRulesHebrewTotal(t *testing.T) {
	got, cur, ok := runAmountRules("סך הכל 450.00", "")
	require.True(t, ok)
	assert.Equal(t, "450.00", got)
	assert.Equal(t, constants.CurrencyShekel, cur)
}

func TestRunAmountRulesCapturedCurrencyToken(t *testing.T) {
	got, cur, ok := runAmountRules("BALANCE DUE: USD 320.00", "")
	require.True(t, ok)
	assert.Equal(t, "320.00", got)
	assert.Equal(t, constants.CurrencyUSD, cur)
}

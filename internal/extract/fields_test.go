package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchInvoiceNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"INVOICE NUMBER: INV-1042", "INV-1042"},
		{"Invoice #: 778-12", "778-12"},
		{"Invoice # 556677", "556677"},
		{"Ref 4567", "4567"},
		{"מספר חשבונית: 2001-44", "2001-44"},
	}
	for _, tt := range tests {
		got, ok := matchInvoiceNumber(normalizeForMatch(tt.text), tt.text)
		require.True(t, ok, "input %q", tt.text)
		assert.Equal(t, tt.want, got, "input %q", tt.text)
	}
}

func TestMatchInvoiceNumberRejectsSingleDigit(t *testing.T) {
	_, ok := matchInvoiceNumber("Invoice # 7", "Invoice # 7")
	assert.False(t, ok)
}

func TestMatchDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Date: 03/04/2025", "03/04/2025"},
		{"DUE DATE: March 5, 2025", "March 5, 2025"},
		{"תאריך: 12.06.2024", "12.06.2024"},
	}
	for _, tt := range tests {
		got, ok := matchDate(normalizeForMatch(tt.text), tt.text)
		require.True(t, ok, "input %q", tt.text)
		assert.Equal(t, tt.want, got, "input %q", tt.text)
	}
}

func TestMatchDateLabeledBeatsPositional(t *testing.T) {
	text := "Created 01/01/2019 Date: 02/02/2021"
	got, ok := matchDate(text, text)
	require.True(t, ok)
	assert.Equal(t, "02/02/2021", got)
}

func TestMatchHebrewVendor(t *testing.T) {
	got, ok := matchHebrewVendor("עיריית תל אביב\nתאריך: 01.01.2024\n")
	require.True(t, ok)
	assert.Equal(t, "עיריית תל אביב", got)

	_, ok = matchHebrewVendor("plain latin text only")
	assert.False(t, ok)
}

func TestIsLikelyVendor(t *testing.T) {
	assert.True(t, isLikelyVendor("Acme Widgets Ltd"))
	assert.False(t, isLikelyVendor("Invoice"))
	assert.False(t, isLikelyVendor("123.45"))
	assert.False(t, isLikelyVendor("12/05/2024"))
	assert.False(t, isLikelyVendor("USD 500"))
}

func TestMatchVendorLineSkipsLabels(t *testing.T) {
	got, ok := matchVendorLine([]string{"Invoice", "Date: 01/01/2024", "Globex Corporation"})
	require.True(t, ok)
	assert.Equal(t, "Globex Corporation", got)

	_, ok = matchVendorLine([]string{"Invoice", "1 2.00 2.00"})
	assert.False(t, ok)
}

func TestMatchBillTo(t *testing.T) {
	got, ok := matchBillTo("Bill to: John Smith, 123 Main St", normalizeForMatch("Bill to: John Smith, 123 Main St"))
	require.True(t, ok)
	assert.Equal(t, "John Smith", got)

	got, ok = matchBillTo("לכבוד: משה לוי\nתאריך: 01.01.2024", "")
	require.True(t, ok)
	assert.Equal(t, "משה לוי", got)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "שלום", truncateRunes("שלום", 10))
}

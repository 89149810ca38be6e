package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt("Invoice.PDF"))
	assert.Equal(t, "png", NormalizeExt("/tmp/scan.png"))
	assert.Equal(t, "", NormalizeExt("README"))
}

func TestIsAllowed(t *testing.T) {
	assert.True(t, IsAllowed("a.pdf"))
	assert.True(t, IsAllowed("a.JPEG"))
	assert.False(t, IsAllowed("a.txt"))
	assert.False(t, IsAllowed("noext"))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.pdf"))
	assert.True(t, IsPDF("a.PDF"))
	assert.False(t, IsPDF("a.png"))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusPaid, NormalizeStatus("paid"))
	assert.Equal(t, StatusOpen, NormalizeStatus("open"))
	assert.Equal(t, StatusOpen, NormalizeStatus(""))
	assert.Equal(t, StatusOpen, NormalizeStatus("anything"))
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, IsCurrency("USD"))
	assert.True(t, IsCurrency("₪"))
	assert.False(t, IsCurrency("JPY"))
	assert.Contains(t, Currencies(), "EUR")
}
